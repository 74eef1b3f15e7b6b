package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/mappings/internal/paths"
	"github.com/mesh-intelligence/mappings/internal/sqlite"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

// configFile is the structure written to a fresh config.yaml.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	FoldKeys bool   `yaml:"fold_keys"`
	LogLevel string `yaml:"log_level"`
}

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create config.yaml and the metadata database",
		Long: "Create the configuration directory with a default config.yaml, then\n" +
			"create the metadata database. An existing config.yaml is left alone.",
		Args: cobra.NoArgs,
		RunE: a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return system(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return system(fmt.Errorf("create config directory: %w", err))
	}

	configPath := paths.ConfigFile(configDir)
	created, err := writeConfigIfMissing(configPath, a.flags.dataDir)
	if err != nil {
		return system(fmt.Errorf("write config: %w", err))
	}

	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}
	store := sqlite.NewStore()
	if err := store.Attach(cfg); err != nil {
		return system(fmt.Errorf("initialize store: %w", err))
	}
	if err := store.Detach(); err != nil {
		return system(fmt.Errorf("finalize store: %w", err))
	}

	out := a.out(cmd)
	if created {
		fmt.Fprintf(out, "wrote %s\n", configPath)
	}
	if cfg.Backend == types.BackendSQLite {
		fmt.Fprintf(out, "store ready in %s\n", cfg.DataDir)
	}
	fmt.Fprintln(out, "mapctl initialized")
	return nil
}

// writeConfigIfMissing creates config.yaml with default values and reports
// whether it did.
func writeConfigIfMissing(path, dataDir string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	data, err := yaml.Marshal(&configFile{
		Backend:  types.BackendSQLite,
		DataDir:  dataDir,
		LogLevel: types.LogLevelWarn,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
