// Command functions-dev runs a function module against the in-memory dev host.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	config  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "functions-dev",
		Short: "Run wasm functions locally against an in-memory host",
		Long: `functions-dev loads a wasip1 function module, wires every host
capability to the in-memory dev host and calls the module's entry points.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "dev host config file (YAML)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log host activity to stderr")

	root.AddCommand(newInvokeCmd(flags))
	root.AddCommand(newSpawnCmd(flags))
	root.AddCommand(newDescribeCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
