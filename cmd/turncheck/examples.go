package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"

	"github.com/go-go-golems/turncheck/pkg/fixtures"
)

type createExamplesOptions struct {
	Dir   string
	Force bool
	// Ask confirms overwriting an existing file. When nil, existing files are
	// only overwritten with Force.
	Ask   func(path string) (bool, error)
}

func newCreateExamplesCommand() *cobra.Command {
	opts := &createExamplesOptions{Dir: "."}

	cmd := &cobra.Command{
		Use:   "create-examples",
		Short: "Write example datasets and a settings file",
		Long: fmt.Sprintf(`Writes %s, %s and %s.

Existing files are kept unless --force is given or the overwrite is confirmed
on the terminal.`, fixtures.ValidExampleFile, fixtures.InvalidExampleFile, fixtures.SettingsFile),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateExamples(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", opts.Dir, "Directory to write the examples to.")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing files without asking.")

	return cmd
}

func runCreateExamples(w io.Writer, opts *createExamplesOptions) error {
	ask := opts.Ask
	if ask == nil && !opts.Force && isatty.IsTerminal(os.Stdin.Fd()) {
		ask = askOverwrite
	}

	written, err := fixtures.Write(opts.Dir, fixtures.WriteOptions{
		Force:   opts.Force,
		Confirm: ask,
	})
	if err != nil {
		return err
	}

	if len(written) == 0 {
		_, _ = fmt.Fprintln(w, "No files written (use --force to overwrite existing files).")
		return nil
	}
	_, _ = fmt.Fprintln(w, "✅ Created example files:")
	for _, path := range written {
		_, _ = fmt.Fprintf(w, "  - %s\n", path)
	}
	return nil
}

func askOverwrite(path string) (bool, error) {
	ui := &input.UI{
		Writer: os.Stderr,
		Reader: os.Stdin,
	}

	answer, err := ui.Ask(fmt.Sprintf("%s exists. Overwrite? [y/n]", path), &input.Options{
		Default:  "n",
		Required: true,
		Loop:     true,
		ValidateFunc: func(answer string) error {
			switch answer {
			case "y", "Y", "n", "N":
				return nil
			default:
				return fmt.Errorf("please enter 'y' or 'n'")
			}
		},
	})
	if err != nil {
		return false, err
	}
	return answer == "y" || answer == "Y", nil
}
