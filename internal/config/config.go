// Package config assembles mapctl's settings from layered sources and
// exposes them as mappings. From highest to lowest precedence: command-line
// overrides, MAPCTL_* environment variables, config.yaml, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/mappings/internal/logger"
	"github.com/mesh-intelligence/mappings/internal/paths"
	"github.com/mesh-intelligence/mappings/pkg/mappings"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

// Well-known keys.
const (
	KeyBackend  = "backend"
	KeyDataDir  = "data_dir"
	KeyFoldKeys = "fold_keys"
	KeyLogLevel = "log_level"
)

// EnvPrefix marks environment variables read by the env layer.
const EnvPrefix = "MAPCTL_"

// Layer names, highest precedence first.
const (
	LayerOverrides = "overrides"
	LayerEnv       = "env"
	LayerFile      = "file"
	LayerDefaults  = "defaults"
)

// Defaults holds the built-in values of the well-known keys. An empty
// log_level leaves logging off.
var Defaults = map[string]any{
	KeyBackend:  types.BackendSQLite,
	KeyDataDir:  "",
	KeyFoldKeys: false,
	KeyLogLevel: "",
}

// Options configures Load.
type Options struct {
	ConfigDir string   // directory holding config.yaml; empty skips the file
	Environ   []string // KEY=VALUE pairs; nil reads os.Environ
	Fs        afero.Fs // filesystem for config.yaml; nil is the OS
}

// Layer is one named source of settings.
type Layer struct {
	Name    string
	Mapping types.Mapping[string, any]
}

// Store is the layered configuration. Lookups see overrides first, then
// the union of env, file and defaults. Not safe for concurrent use.
type Store struct {
	defaults  *mappings.Immutable[string, any]
	file      *mappings.Lazy[string, any]
	env       *mappings.Lazy[string, any]
	overrides *mappings.Overlay[string, any]
	fileUsed  string
}

// Load builds a Store. A missing config.yaml leaves the file layer empty.
func Load(opts Options) (*Store, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}

	v := viper.New()
	v.SetFs(fs)
	fileUsed := ""
	if opts.ConfigDir != "" {
		v.SetConfigName(strings.TrimSuffix(paths.ConfigFileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(opts.ConfigDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			logger.Debug("no config file", "dir", opts.ConfigDir)
		} else {
			fileUsed = v.ConfigFileUsed()
			logger.Debug("config file read", "path", fileUsed, "keys", len(v.AllKeys()))
		}
	}

	file, err := fileLayer(v)
	if err != nil {
		return nil, err
	}
	env, err := envLayer(environ)
	if err != nil {
		return nil, err
	}

	s := &Store{
		defaults: mappings.NewImmutable(Defaults),
		file:     file,
		env:      env,
		fileUsed: fileUsed,
	}
	s.overrides = mappings.NewOverlay[string, any](mappings.NewUnion[string, any](s.env, s.file, s.defaults))
	return s, nil
}

// fileLayer reads keys and values from v on demand. Nested YAML keys appear
// dotted ("a.b").
func fileLayer(v *viper.Viper) (*mappings.Lazy[string, any], error) {
	return mappings.NewLazy(
		mappings.KeysFrom(func() ([]string, error) { return v.AllKeys(), nil }),
		func(key string) (any, error) {
			if !v.IsSet(key) {
				return nil, fmt.Errorf("%w: %s", types.ErrMissingKey, key)
			}
			return v.Get(key), nil
		},
	)
}

// envLayer exposes MAPCTL_* variables under lower-case keys with the prefix
// removed, so MAPCTL_LOG_LEVEL is log_level. The environment is scanned on
// first use.
func envLayer(environ []string) (*mappings.Lazy[string, any], error) {
	values := make(map[string]string)
	return mappings.NewLazy(
		mappings.KeysFrom(func() ([]string, error) {
			var keys []string
			for _, kv := range environ {
				name, value, ok := strings.Cut(kv, "=")
				if !ok || !strings.HasPrefix(name, EnvPrefix) || len(name) == len(EnvPrefix) {
					continue
				}
				key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
				values[key] = value
				keys = append(keys, key)
			}
			return keys, nil
		}),
		func(key string) (any, error) {
			v, ok := values[key]
			if !ok {
				return nil, fmt.Errorf("%w: %s", types.ErrMissingKey, key)
			}
			return v, nil
		},
	)
}

// Layers returns every layer, highest precedence first. The overrides layer
// is a snapshot of the current --set values.
func (s *Store) Layers() []Layer {
	return []Layer{
		{Name: LayerOverrides, Mapping: mappings.NewImmutable(s.overrides.Changes())},
		{Name: LayerEnv, Mapping: s.env},
		{Name: LayerFile, Mapping: s.file},
		{Name: LayerDefaults, Mapping: s.defaults},
	}
}

// FileUsed returns the path of the config file read by Load, or "".
func (s *Store) FileUsed() string { return s.fileUsed }

// Mapping returns the effective configuration. Writes to it are overrides.
func (s *Store) Mapping() types.Mapping[string, any] { return s.overrides }

// Set records a command-line override.
func (s *Store) Set(key string, value any) error {
	if key == "" {
		return types.ErrKeyEmpty
	}
	return s.overrides.Set(key, value)
}

// Unset hides key from every layer for the life of the Store.
// Returns ErrMissingKey if no layer has it.
func (s *Store) Unset(key string) error {
	return s.overrides.Delete(key)
}

// Unsets returns the keys hidden by Unset, sorted.
func (s *Store) Unsets() []string {
	return slices.Sorted(slices.Values(s.overrides.Deleted()))
}

// ParseAssignment splits a "key=value" override.
func ParseAssignment(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w: override %q is not key=value", types.ErrInvalidArgument, arg)
	}
	return key, value, nil
}

// FoldKeys reports whether lookups ignore key case.
func (s *Store) FoldKeys() (bool, error) {
	v, err := mappings.GetOr[string, any](s.overrides, KeyFoldKeys, false)
	if err != nil {
		return false, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", types.ErrInvalidArgument, KeyFoldKeys, err)
	}
	return b, nil
}

// View returns the effective configuration for reading. With fold_keys on it
// is a case-folded snapshot that still reports keys as spelled by their
// layer; otherwise it is Mapping itself.
func (s *Store) View() (types.Mapping[string, any], error) {
	fold, err := s.FoldKeys()
	if err != nil {
		return nil, err
	}
	if !fold {
		return s.overrides, nil
	}
	items, err := mappings.Items[string, any](s.overrides)
	if err != nil {
		return nil, err
	}
	return mappings.NewPreservingFolding[string, any](mappings.CaseFold, items), nil
}

// Lookup returns the effective value for key.
func (s *Store) Lookup(key string) (any, error) {
	view, err := s.View()
	if err != nil {
		return nil, err
	}
	return view.Get(key)
}

// LookupString returns the effective value for key as a string.
func (s *Store) LookupString(key string) (string, error) {
	v, err := s.Lookup(key)
	if err != nil {
		return "", err
	}
	str, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrInvalidArgument, key, err)
	}
	return str, nil
}

// Config decodes the well-known keys into a validated types.Config.
func (s *Store) Config() (types.Config, error) {
	settings, err := s.Settings()
	if err != nil {
		return types.Config{}, err
	}
	raw, err := mappings.ToMap[string, any](settings)
	if err != nil {
		return types.Config{}, err
	}

	var cfg types.Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return types.Config{}, fmt.Errorf("config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}
