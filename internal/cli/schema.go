package cli

import (
	"fmt"

	"github.com/divrep/divrep/internal/report"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Output the JSON schema of the json report",
		Long:  `Output the JSON Schema describing the document written by --output-type json.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaBytes, err := report.Schema()
			if err != nil {
				return fmt.Errorf("generating schema: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(schemaBytes))
			return nil
		},
	}
}
