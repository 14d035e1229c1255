package main

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/turncheck/pkg/settings"
	"github.com/go-go-golems/turncheck/pkg/turns"
)

type schemaOptions struct {
	Settings   bool
	ConfigPath string
}

func newSchemaCommand() *cobra.Command {
	opts := &schemaOptions{}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of a conversation or of the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Settings, "settings", false, "Print the schema of the validation settings file.")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Restrict speakers to the ones allowed by this settings file.")

	return cmd
}

func runSchema(w io.Writer, opts *schemaOptions) error {
	var schema any
	if opts.Settings {
		schema = settings.Schema()
	} else {
		s := settings.Default()
		if opts.ConfigPath != "" {
			var err error
			s, err = settings.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
		}
		schema = turns.Schema(s.AllowedSpeakers)
	}

	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not encode schema")
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
