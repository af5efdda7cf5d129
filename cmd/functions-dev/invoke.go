package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-functions/contract"
)

type invokeFlags struct {
	body        string
	bodyFile    string
	headers     []string
	query       []string
	interactive bool
}

func newInvokeCmd(global *globalFlags) *cobra.Command {
	flags := &invokeFlags{}
	cmd := &cobra.Command{
		Use:   "invoke <module.wasm>",
		Short: "Call the module's web entry point once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.interactive {
				return runInteractive(global, args[0])
			}
			req, err := flags.request(cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, global, args[0])
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			resp, err := s.runner.InvokeWeb(ctx, req)
			if err != nil {
				return err
			}
			printResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.body, "data", "d", "", "request body")
	cmd.Flags().StringVar(&flags.bodyFile, "data-file", "", "read the request body from a file (- for stdin)")
	cmd.Flags().StringArrayVarP(&flags.headers, "header", "H", nil, `request header as "Name: value" (repeatable)`)
	cmd.Flags().StringArrayVarP(&flags.query, "query", "q", nil, "query parameter as name=value (repeatable)")
	cmd.Flags().BoolVarP(&flags.interactive, "interactive", "i", false, "interactive mode with TUI")
	return cmd
}

func (f *invokeFlags) request(stdin io.Reader) (contract.WebRequest, error) {
	var req contract.WebRequest
	switch {
	case f.bodyFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return req, err
		}
		req.Body = data
	case f.bodyFile != "":
		data, err := os.ReadFile(f.bodyFile)
		if err != nil {
			return req, err
		}
		req.Body = data
	default:
		req.Body = []byte(f.body)
	}

	var err error
	if req.Headers, err = parsePairs(f.headers, ":"); err != nil {
		return req, err
	}
	if req.Query, err = parsePairs(f.query, "="); err != nil {
		return req, err
	}
	return req, nil
}

func parsePairs(values []string, sep string) ([]contract.Header, error) {
	out := make([]contract.Header, 0, len(values))
	for _, v := range values {
		name, value, ok := strings.Cut(v, sep)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid pair %q, want name%svalue", v, sep)
		}
		out = append(out, contract.Header{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return out, nil
}

func printResponse(w io.Writer, resp contract.WebResponse) {
	fmt.Fprintf(w, "status: %d\n", resp.Status)
	for _, h := range resp.Headers {
		fmt.Fprintf(w, "%s: %s\n", h.Name, h.Value)
	}
	fmt.Fprintln(w)
	w.Write(resp.Body)
	if len(resp.Body) > 0 && resp.Body[len(resp.Body)-1] != '\n' {
		fmt.Fprintln(w)
	}
}
