package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mappings/pkg/mappings"
)

func newSchemaCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <key>...",
		Short: "Print the slotted schema for a key set",
		Long: "Print the canonical key order and the stable ID of the slotted schema\n" +
			"for the given keys. Order and duplicates do not change the result.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mappings.MakeSchema(args...)
			if flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"id":   s.ID().String(),
					"keys": s.Keys(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id:   %s\nkeys: %s\n", s.ID(), strings.Join(s.Keys(), " "))
			return nil
		},
	}
}
