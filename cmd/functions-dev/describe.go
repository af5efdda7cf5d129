package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-functions/contract"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [module.wasm]",
		Short: "Print the host interface, or the entry points a module exports",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				describeContract(w)
				return nil
			}
			ctx := cmd.Context()
			s, err := openSession(ctx, &globalFlags{}, args[0])
			if err != nil {
				return err
			}
			defer s.Close(ctx)
			fmt.Fprintf(w, "%s exports:\n", args[0])
			for _, e := range s.runner.Entries() {
				fmt.Fprintf(w, "  %s\n", e)
			}
			return nil
		},
	}
}

func describeContract(w io.Writer) {
	fmt.Fprintf(w, "host interface %s\n", contract.Version)
	for _, ns := range contract.Namespaces() {
		fmt.Fprintf(w, "\n%s\n", ns)
		for _, fn := range contract.Functions(ns) {
			fmt.Fprintf(w, "  %s\n", fn)
		}
	}
	fmt.Fprintln(w, "\nvariants")
	for _, d := range contract.Describe() {
		fmt.Fprintf(w, "  %s#%s: %s\n", d.Namespace, d.Name, strings.Join(d.Cases(), " | "))
	}
}
