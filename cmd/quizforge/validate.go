package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrijr/quizforge/internal/examdoc"
)

var errInvalidDocument = errors.New("document is structurally invalid")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate (and repair) an exam document",
		Long: `Checks an exam document against the block grammar. A malformed document is
repaired once; the final document is printed when it is valid, the remaining
issues otherwise. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runValidate(cmd.OutOrStdout(), text)
		},
	}
}

func readDocument(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(b), nil
}

func runValidate(w io.Writer, text string) error {
	res := examdoc.Validate(text)
	if !res.Valid {
		for _, issue := range res.Issues {
			fmt.Fprintln(w, issue.String())
		}
		return errInvalidDocument
	}
	if res.Repaired {
		fmt.Fprintf(w, "# repaired %d issue(s)\n\n", len(res.InitialIssues))
	}
	fmt.Fprintln(w, res.Document)
	return nil
}
