package cli

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mappings/pkg/mappings"
)

// dumpConfig prints maps in key order and without pointer addresses so the
// output is stable between runs.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

func (a *app) newDumpCmd() *cobra.Command {
	var settingsOnly bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump the resolved configuration with Go types",
		Long: "Print every effective setting with its Go type, which shows how YAML and\n" +
			"environment values were decoded. --settings restricts the dump to the\n" +
			"well-known keys.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.config()
			if err != nil {
				return err
			}
			if settingsOnly {
				settings, err := s.Settings()
				if err != nil {
					return err
				}
				all, err := mappings.ToMap[string, any](settings)
				if err != nil {
					return err
				}
				dumpConfig.Fdump(a.out(cmd), settings.Schema().ID().String(), all)
				return nil
			}
			view, err := s.View()
			if err != nil {
				return err
			}
			all, err := mappings.ToMap(view)
			if err != nil {
				return err
			}
			dumpConfig.Fdump(a.out(cmd), all)
			return nil
		},
	}
	cmd.Flags().BoolVar(&settingsOnly, "settings", false, "dump only the well-known settings")
	return cmd
}
