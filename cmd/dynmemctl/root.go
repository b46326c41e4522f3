package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/dynmem/allocator"
)

const defaultPoolSize = 32 << 10

type globalOptions struct {
	poolSize uint32
	autoZero bool
	mapped   bool
	jsonOut  bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "dynmemctl",
		Short: "Replay allocation traces against a fixed-size pool",
		Long: `dynmemctl replays a trace of alloc/free/realloc operations against a
first-fit pool allocator with a fixed arena and reports the resulting
block chain and fragmentation statistics.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().Uint32Var(&opts.poolSize, "pool-size", defaultPoolSize, "Arena size in bytes (multiple of 4)")
	cmd.PersistentFlags().BoolVar(&opts.autoZero, "auto-zero", false, "Zero every allocation before it is returned")
	cmd.PersistentFlags().BoolVar(&opts.mapped, "mapped", false, "Place the arena in an anonymous memory mapping")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every replayed operation to stderr")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newBlocksCmd(opts))
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *globalOptions) openPool() (*allocator.Pool, error) {
	if o.poolSize < 4 || o.poolSize%allocator.Alignment != 0 || o.poolSize > allocator.MaxPoolSize {
		return nil, fmt.Errorf("invalid --pool-size %d: must be a multiple of %d between 4 and %d",
			o.poolSize, allocator.Alignment, allocator.MaxPoolSize)
	}

	conf := allocator.Config{
		PoolSize: o.poolSize,
		AutoZero: o.autoZero,
	}
	if o.mapped {
		return allocator.NewMapped(conf)
	}
	return allocator.New(conf), nil
}

func (o *globalOptions) logger(w io.Writer) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// replayFile opens a pool and replays the trace at path against it.
// The caller must close the returned pool.
func (o *globalOptions) replayFile(cmd *cobra.Command, path string) (*allocator.Pool, []stepResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	ops, err := parseTrace(f)
	if err != nil {
		return nil, nil, err
	}

	pool, err := o.openPool()
	if err != nil {
		return nil, nil, err
	}

	r := newReplayer(pool, o.logger(cmd.ErrOrStderr()))
	steps, err := r.replay(ops)
	if err != nil {
		_ = pool.Close()
		return nil, nil, err
	}
	return pool, steps, nil
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printStats(w io.Writer, s allocator.Stats) {
	fmt.Fprintf(w, "Free blocks:     %d\n", s.FreeBlockCount)
	fmt.Fprintf(w, "Used blocks:     %d\n", s.UsedBlockCount)
	fmt.Fprintf(w, "Free bytes:      %d\n", s.FreeBytes)
	fmt.Fprintf(w, "Used bytes:      %d\n", s.UsedBytes)
	fmt.Fprintf(w, "Largest free:    %d\n", s.LargestFreeBlock)
	fmt.Fprintf(w, "Fragmentation:   %d%%\n", s.FragmentationPercent)
}
