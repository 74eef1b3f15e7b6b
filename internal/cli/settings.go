package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mappings/internal/config"
	"github.com/mesh-intelligence/mappings/pkg/mappings"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

func (a *app) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.config()
			if err != nil {
				return err
			}
			v, err := s.Lookup(args[0])
			if errors.Is(err, types.ErrMissingKey) {
				return fmt.Errorf("setting %q is not set", args[0])
			}
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(a.out(cmd), map[string]any{args[0]: v})
			}
			fmt.Fprintln(a.out(cmd), v)
			return nil
		},
	}
}

func (a *app) newListCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every effective setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.config()
			if err != nil {
				return err
			}
			view, err := s.View()
			if err != nil {
				return err
			}
			all, err := mappings.ToMap(view)
			if err != nil {
				return err
			}
			switch {
			case a.flags.jsonMode:
				return writeJSON(a.out(cmd), all)
			case asYAML:
				return writeYAML(a.out(cmd), all)
			}
			writePairs(a.out(cmd), all)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "output in YAML format")
	return cmd
}

// layerReport describes one configuration layer.
type layerReport struct {
	Name string         `json:"name"`
	Keys []string       `json:"keys"`
	Hide []string       `json:"unset,omitempty"`
	Vals map[string]any `json:"values,omitempty"`
}

func (a *app) newLayersCmd() *cobra.Command {
	var values bool
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "Show which keys each configuration layer supplies",
		Long: "List the configuration layers from highest to lowest precedence with the\n" +
			"keys each one supplies. Keys hidden with --unset are listed under overrides.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.config()
			if err != nil {
				return err
			}
			var reports []layerReport
			for _, l := range s.Layers() {
				keys, err := mappings.SortedKeys(l.Mapping)
				if err != nil {
					return fmt.Errorf("layer %s: %w", l.Name, err)
				}
				r := layerReport{Name: l.Name, Keys: keys}
				if l.Name == config.LayerOverrides {
					r.Hide = s.Unsets()
				}
				if values {
					if r.Vals, err = mappings.ToMap(l.Mapping); err != nil {
						return fmt.Errorf("layer %s: %w", l.Name, err)
					}
				}
				reports = append(reports, r)
			}
			if a.flags.jsonMode {
				return writeJSON(a.out(cmd), reports)
			}

			out := a.out(cmd)
			for _, r := range reports {
				fmt.Fprintf(out, "%s (%d)\n", r.Name, len(r.Keys))
				for _, k := range r.Keys {
					if values {
						fmt.Fprintf(out, "  %s=%v\n", k, r.Vals[k])
					} else {
						fmt.Fprintf(out, "  %s\n", k)
					}
				}
				for _, k := range r.Hide {
					fmt.Fprintf(out, "  -%s\n", k)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&values, "values", false, "include each layer's values")
	return cmd
}
