// Package cli implements the mapctl command-line interface: inspecting the
// layered configuration and reading and writing the metadata store.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/mappings/internal/config"
	"github.com/mesh-intelligence/mappings/internal/logger"
	"github.com/mesh-intelligence/mappings/internal/paths"
	"github.com/mesh-intelligence/mappings/internal/sqlite"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	set       []string
	unset     []string
	logLevel  string
	logJSON   bool
}

// app is the state shared by one command tree.
type app struct {
	flags   rootFlags
	environ []string
	cfg     *config.Store
}

// sysError marks failures of the environment rather than of the request.
type sysError struct{ err error }

func (e sysError) Error() string { return e.err.Error() }
func (e sysError) Unwrap() error { return e.err }

func system(err error) error {
	if err == nil {
		return nil
	}
	return sysError{err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se sysError
	if errors.As(err, &se) {
		return exitSysError
	}
	return exitUserError
}

// NewRootCmd creates the top-level "mapctl" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newApp(nil).rootCmd()
}

func newApp(environ []string) *app {
	return &app{environ: environ}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mapctl",
		Short: "Inspect layered configuration and the metadata store",
		Long: "mapctl shows how configuration resolves across defaults, config.yaml,\n" +
			"MAPCTL_* variables and --set overrides, and reads and writes\n" +
			"namespaced metadata entries.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initLogging,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return logger.Close()
		},
	}
	bindGlobalFlags(root.PersistentFlags(), &a.flags)

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newGetCmd())
	root.AddCommand(a.newListCmd())
	root.AddCommand(a.newLayersCmd())
	root.AddCommand(newSchemaCmd(&a.flags))
	root.AddCommand(a.newDumpCmd())
	root.AddCommand(a.newMetaCmd())
	return root
}

func bindGlobalFlags(fs *pflag.FlagSet, f *rootFlags) {
	fs.StringVar(&f.configDir, "config-dir", "", "configuration directory (default: $MAPCTL_CONFIG_DIR or the per-user config dir)")
	fs.StringVar(&f.dataDir, "data-dir", "", "data directory (default: data_dir setting or ./"+paths.DefaultDataDirName+")")
	fs.BoolVar(&f.jsonMode, "json", false, "output in JSON format")
	fs.StringArrayVar(&f.set, "set", nil, "override a setting, key=value (repeatable)")
	fs.StringArrayVar(&f.unset, "unset", nil, "hide a setting from every layer (repeatable)")
	fs.StringVar(&f.logLevel, "log-level", "", "log to stderr at this level (debug, info, warn, error)")
	fs.BoolVar(&f.logJSON, "log-json", false, "log JSON lines to stderr")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mapctl:", err)
	}
	return ExitCode(err)
}

// initLogging enables the logger when --log-level, --log-json or the
// log_level setting asks for it. The flag wins over the setting. A config
// that fails to load is reported by the command that needs it.
func (a *app) initLogging(cmd *cobra.Command, _ []string) error {
	level := a.flags.logLevel
	if level == "" {
		if s, err := a.config(); err == nil {
			if level, err = s.LookupString(config.KeyLogLevel); err != nil && !errors.Is(err, types.ErrMissingKey) {
				return err
			}
		}
	}
	if level == "" && !a.flags.logJSON {
		return nil
	}
	return logger.Init(logger.Options{
		Enabled: true,
		Level:   level,
		JSON:    a.flags.logJSON,
		Writer:  cmd.ErrOrStderr(),
	})
}

// config loads the layered configuration on first use and applies the
// --set and --unset flags.
func (a *app) config() (*config.Store, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return nil, system(fmt.Errorf("resolve config dir: %w", err))
	}
	s, err := config.Load(config.Options{ConfigDir: dir, Environ: a.environ})
	if err != nil {
		return nil, system(err)
	}
	for _, arg := range a.flags.set {
		k, v, err := config.ParseAssignment(arg)
		if err != nil {
			return nil, err
		}
		if err := s.Set(k, v); err != nil {
			return nil, err
		}
	}
	for _, k := range a.flags.unset {
		if err := s.Unset(k); err != nil {
			return nil, fmt.Errorf("--unset %s: %w", k, err)
		}
	}
	logger.Debug("config loaded", "dir", dir, "file", s.FileUsed(), "overrides", len(a.flags.set), "unsets", len(a.flags.unset))
	a.cfg = s
	return s, nil
}

// storeConfig resolves the effective types.Config for the metadata store.
func (a *app) storeConfig() (types.Config, error) {
	s, err := a.config()
	if err != nil {
		return types.Config{}, err
	}
	cfg, err := s.Config()
	if err != nil {
		return types.Config{}, err
	}
	if cfg.Backend == types.BackendSQLite {
		dir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir)
		if err != nil {
			return types.Config{}, system(fmt.Errorf("resolve data dir: %w", err))
		}
		cfg.DataDir = dir
	}
	return cfg, nil
}

// withStore attaches a metadata store for the duration of fn.
func (a *app) withStore(fn func(*sqlite.Store) error) (err error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}
	store := sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return system(fmt.Errorf("attach store: %w", err))
	}
	defer func() {
		if derr := store.Detach(); derr != nil && err == nil {
			err = system(fmt.Errorf("detach store: %w", derr))
		}
	}()
	return fn(store)
}

func (a *app) out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
