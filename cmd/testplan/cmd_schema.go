// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"testplan-cli/internal/config"
	"testplan-cli/pkg/testplan"

	"github.com/spf13/cobra"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [definition|config]",
		Short: "Print a CUE schema",
		Long: `Print the CUE schema test plan definitions are validated against, or with
the "config" argument, the schema of the application config file.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"definition", "config"},
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := testplan.Schema()
			if len(args) == 1 && args[0] == "config" {
				schema = string(config.Schema())
			}
			fmt.Fprint(cmd.OutOrStdout(), schema)
			return nil
		},
	}
}
