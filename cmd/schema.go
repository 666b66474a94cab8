package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-pilot/cli"
	"github.com/mattsolo1/grove-pilot/schema"
)

func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for session files",
		Long: `Print the JSON schema that persisted session files conform to. The
schema is generated from the session types, so it always matches what
this binary writes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Generate()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.AddCommand(newSchemaValidateCmd())
	return cmd
}

func newSchemaValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate session files against the schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			validator, err := schema.NewValidator()
			if err != nil {
				return handler.Handle(err)
			}

			var failed bool
			for _, path := range args {
				if err := validator.ValidateFile(path); err != nil {
					failed = true
					fmt.Fprintf(cmd.ErrOrStderr(), "invalid: %s\n  %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", path)
			}

			if failed {
				return fmt.Errorf("one or more files failed validation")
			}
			return nil
		},
	}
}
