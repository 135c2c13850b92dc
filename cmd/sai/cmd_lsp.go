package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/saibuild/lsp"
)

func newLSPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start a language server on stdin and stdout.

The server compiles the project when the client is ready and after every
saved .java file, and publishes the javac diagnostics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version)
			return server.RunStdio()
		},
	}
}
