package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBlocksCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks <trace>",
		Short: "Replay a trace and print the resulting block chain",
		Long: `The blocks command replays a trace file and prints every block of the
arena in address order with its header address, payload size and state.

Example:
  dynmemctl blocks workload.trace
  dynmemctl blocks workload.trace --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(cmd, opts, args[0])
		},
	}
}

func runBlocks(cmd *cobra.Command, opts *globalOptions, path string) error {
	pool, _, err := opts.replayFile(cmd, path)
	if err != nil {
		return err
	}
	defer pool.Close()

	w := cmd.OutOrStdout()
	blocks := pool.Blocks()
	if opts.jsonOut {
		return printJSON(w, blocks)
	}

	fmt.Fprintf(w, "%-8s %-8s %s\n", "ADDR", "SIZE", "STATE")
	for _, b := range blocks {
		state := "free"
		if b.Used {
			state = "used"
		}
		fmt.Fprintf(w, "%#06x   %-8d %s\n", b.Addr, b.Size, state)
	}
	return nil
}
