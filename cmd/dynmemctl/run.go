package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/dynmem/allocator"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <trace>",
		Short: "Replay a trace and report pool statistics",
		Long: `The run command replays every operation of a trace file, prints the
outcome of each step and finishes with the monitor statistics of the pool.

Example:
  dynmemctl run workload.trace
  dynmemctl run workload.trace --pool-size 4096 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts, args[0])
		},
	}
}

type runReport struct {
	Steps []stepResult    `json:"steps"`
	Stats allocator.Stats `json:"stats"`
}

func runRun(cmd *cobra.Command, opts *globalOptions, path string) error {
	pool, steps, err := opts.replayFile(cmd, path)
	if err != nil {
		return err
	}
	defer pool.Close()

	w := cmd.OutOrStdout()
	stats := pool.Monitor()
	if opts.jsonOut {
		return printJSON(w, runReport{Steps: steps, Stats: stats})
	}

	for _, step := range steps {
		printStep(w, step)
	}
	fmt.Fprintln(w)
	printStats(w, stats)
	return nil
}

func printStep(w io.Writer, step stepResult) {
	switch step.Op {
	case "alloc", "realloc":
		if !step.OK {
			fmt.Fprintf(w, "%4d  %-8s %s %d -> out of memory\n", step.Line, step.Op, step.Name, step.Size)
			return
		}
		fmt.Fprintf(w, "%4d  %-8s %s %d -> %#06x\n", step.Line, step.Op, step.Name, step.Size, step.Ptr)

	case "free":
		fmt.Fprintf(w, "%4d  %-8s %s (%#06x)\n", step.Line, step.Op, step.Name, step.Ptr)

	case "fill":
		fmt.Fprintf(w, "%4d  %-8s %s %d bytes\n", step.Line, step.Op, step.Name, step.Size)

	case "monitor":
		s := step.Stats
		fmt.Fprintf(w, "%4d  %-8s free=%d/%dB used=%d/%dB largest=%d frag=%d%%\n",
			step.Line, step.Op, s.FreeBlockCount, s.FreeBytes, s.UsedBlockCount, s.UsedBytes,
			s.LargestFreeBlock, s.FragmentationPercent)

	default:
		fmt.Fprintf(w, "%4d  %s\n", step.Line, step.Op)
	}
}
