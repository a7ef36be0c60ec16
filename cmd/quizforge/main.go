// Command quizforge serves exam generation over HTTP and offers a few
// offline helpers.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=X.Y.Z".
var Version = "0.0.0-dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quizforge",
		Short: "Generate exam documents with a text-generation service",
		Long: `quizforge plans, generates, validates and renders exam documents.

Commands:
  serve              Run the HTTP API
  validate <file>    Validate (and repair) an exam document
  report             Fetch evaluation reports from a running server`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newValidateCmd(), newReportCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
