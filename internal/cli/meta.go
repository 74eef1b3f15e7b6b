package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/mappings/internal/sqlite"
	"github.com/mesh-intelligence/mappings/pkg/mappings"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

func (a *app) newMetaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Read and write metadata entries",
	}
	cmd.AddCommand(a.newMetaPutCmd(), a.newMetaGetCmd(), a.newMetaDeleteCmd(), a.newMetaListCmd())
	return cmd
}

func (a *app) newMetaPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <namespace> <key> <value>",
		Short: "Create or replace an entry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *sqlite.Store) error {
				id, err := s.Put(args[0], args[1], args[2])
				if err != nil {
					return storeErr(err)
				}
				if a.flags.jsonMode {
					return writeJSON(a.out(cmd), map[string]string{"entry_id": id})
				}
				fmt.Fprintln(a.out(cmd), id)
				return nil
			})
		},
	}
}

func (a *app) newMetaGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <namespace> <key>",
		Short: "Print an entry's value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *sqlite.Store) error {
				e, err := s.Entry(args[0], args[1])
				if err != nil {
					return storeErr(err)
				}
				if a.flags.jsonMode {
					return writeJSON(a.out(cmd), e)
				}
				fmt.Fprintln(a.out(cmd), e.Value)
				return nil
			})
		},
	}
}

func (a *app) newMetaDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <namespace> <key>",
		Short: "Remove an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *sqlite.Store) error {
				return storeErr(s.Remove(args[0], args[1]))
			})
		},
	}
}

func (a *app) newMetaListCmd() *cobra.Command {
	var lazy bool
	cmd := &cobra.Command{
		Use:   "list [namespace]",
		Short: "List namespaces, or the entries of one namespace",
		Long: "Without an argument, list the namespaces holding entries. With a\n" +
			"namespace, print its entries. Entries are read in one query unless\n" +
			"--lazy asks for one query per value.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *sqlite.Store) error {
				if len(args) == 0 {
					nss, err := s.Namespaces()
					if err != nil {
						return storeErr(err)
					}
					if a.flags.jsonMode {
						return writeJSON(a.out(cmd), nss)
					}
					for _, ns := range nss {
						fmt.Fprintln(a.out(cmd), ns)
					}
					return nil
				}

				view := s.Snapshot
				if lazy {
					view = s.Lazy
				}
				m, err := view(args[0])
				if err != nil {
					return storeErr(err)
				}
				all, err := mappings.ToMap(m)
				if err != nil {
					return storeErr(err)
				}
				if a.flags.jsonMode {
					return writeJSON(a.out(cmd), all)
				}
				writePairs(a.out(cmd), all)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&lazy, "lazy", false, "read values one query at a time")
	return cmd
}

// storeErr keeps request errors as user errors and marks the rest as system
// failures.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrMissingKey),
		errors.Is(err, types.ErrNamespaceEmpty),
		errors.Is(err, types.ErrKeyEmpty):
		return err
	}
	return system(err)
}
