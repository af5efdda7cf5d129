package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSpawnCmd(global *globalFlags) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "spawn <module.wasm> [payload]",
		Short: "Call the module's spawn entry point",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload []byte
			if len(args) == 2 {
				payload = []byte(args[1])
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, global, args[0])
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			if err := s.runner.InvokeSpawn(ctx, payload); err != nil {
				return err
			}
			// Let spawns issued by the function finish before the host goes away.
			time.Sleep(wait)
			fmt.Fprintf(cmd.OutOrStdout(), "ok (%d host calls, %d further spawns)\n",
				s.runner.HostCalls(), len(s.host.Spawn.Spawned()))
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "time to wait for spawned functions before exiting")
	return cmd
}
