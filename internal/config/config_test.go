package config

import (
	"slices"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mappings/pkg/mappings"
	"github.com/mesh-intelligence/mappings/pkg/types"
)

const testConfigYAML = `backend: memory
log_level: warn
theme: dark
server:
  port: 8080
`

func loadTest(t *testing.T, yaml string, environ ...string) *Store {
	t.Helper()
	fs := afero.NewMemMapFs()
	if yaml != "" {
		require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte(yaml), 0o644))
	}
	if environ == nil {
		environ = []string{}
	}
	s, err := Load(Options{ConfigDir: "/cfg", Environ: environ, Fs: fs})
	require.NoError(t, err)
	return s
}

func TestLoad_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		environ []string
		set     map[string]string
		key     string
		want    any
	}{
		{name: "default only", key: KeyBackend, want: types.BackendSQLite},
		{name: "file over default", yaml: testConfigYAML, key: KeyBackend, want: types.BackendMemory},
		{
			name:    "env over file",
			yaml:    testConfigYAML,
			environ: []string{"MAPCTL_LOG_LEVEL=debug", "HOME=/root"},
			key:     KeyLogLevel,
			want:    "debug",
		},
		{
			name:    "override over env",
			yaml:    testConfigYAML,
			environ: []string{"MAPCTL_THEME=light"},
			set:     map[string]string{"theme": "solarized"},
			key:     "theme",
			want:    "solarized",
		},
		{name: "nested file key", yaml: testConfigYAML, key: "server.port", want: 8080},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadTest(t, tt.yaml, tt.environ...)
			for k, v := range tt.set {
				require.NoError(t, s.Set(k, v))
			}
			got, err := s.Lookup(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_MissingFileIsEmptyLayer(t *testing.T) {
	s := loadTest(t, "")
	assert.Empty(t, s.FileUsed())

	for _, l := range s.Layers() {
		if l.Name != LayerFile {
			continue
		}
		n, err := mappings.Len(l.Mapping)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte("backend: [unclosed"), 0o644))
	_, err := Load(Options{ConfigDir: "/cfg", Environ: []string{}, Fs: fs})
	assert.Error(t, err)
}

func TestStore_UnsetHidesEveryLayer(t *testing.T) {
	s := loadTest(t, testConfigYAML, "MAPCTL_THEME=light")

	require.NoError(t, s.Unset("theme"))
	_, err := s.Lookup("theme")
	assert.ErrorIs(t, err, types.ErrMissingKey)
	assert.Equal(t, []string{"theme"}, s.Unsets())

	assert.ErrorIs(t, s.Unset("nope"), types.ErrMissingKey)

	// A later override brings it back.
	require.NoError(t, s.Set("theme", "mono"))
	got, err := s.Lookup("theme")
	require.NoError(t, err)
	assert.Equal(t, "mono", got)
}

func TestStore_KeysDeduplicatedAcrossLayers(t *testing.T) {
	s := loadTest(t, testConfigYAML, "MAPCTL_BACKEND=memory")
	require.NoError(t, s.Set("extra", "1"))

	keys, err := s.Mapping().Keys()
	require.NoError(t, err)
	got := slices.Collect(keys)
	assert.Equal(t, "extra", got[0])
	assert.ElementsMatch(t, []string{"extra", "backend", "log_level", "theme", "server.port", "data_dir", "fold_keys"}, got)
}

func TestStore_FoldKeys(t *testing.T) {
	s := loadTest(t, testConfigYAML, "MAPCTL_FOLD_KEYS=true")
	require.NoError(t, s.Set("Color", "Blue"))

	fold, err := s.FoldKeys()
	require.NoError(t, err)
	assert.True(t, fold)

	got, err := s.Lookup("COLOR")
	require.NoError(t, err)
	assert.Equal(t, "Blue", got)

	view, err := s.View()
	require.NoError(t, err)
	keys, err := view.Keys()
	require.NoError(t, err)
	assert.Contains(t, slices.Collect(keys), "Color")
}

func TestStore_FoldKeysOffIsCaseSensitive(t *testing.T) {
	s := loadTest(t, "")
	require.NoError(t, s.Set("Color", "Blue"))

	_, err := s.Lookup("color")
	assert.ErrorIs(t, err, types.ErrMissingKey)
}

func TestStore_FoldKeysInvalid(t *testing.T) {
	s := loadTest(t, "", "MAPCTL_FOLD_KEYS=maybe")
	_, err := s.FoldKeys()
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestStore_Config(t *testing.T) {
	s := loadTest(t, testConfigYAML, "MAPCTL_FOLD_KEYS=1", "MAPCTL_DATA_DIR=/data")

	cfg, err := s.Config()
	require.NoError(t, err)
	assert.Equal(t, types.Config{
		Backend:  types.BackendMemory,
		DataDir:  "/data",
		FoldKeys: true,
		LogLevel: types.LogLevelWarn,
	}, cfg)

	require.NoError(t, s.Set(KeyBackend, "etcd"))
	_, err = s.Config()
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestStore_Settings(t *testing.T) {
	s := loadTest(t, testConfigYAML)
	require.NoError(t, s.Unset(KeyDataDir))

	settings, err := s.Settings()
	require.NoError(t, err)
	assert.Same(t, SettingsSchema, settings.Schema())

	keys, err := settings.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{KeyBackend, KeyFoldKeys, KeyLogLevel}, slices.Collect(keys))
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		arg       string
		key, val  string
		wantError bool
	}{
		{arg: "a=b", key: "a", val: "b"},
		{arg: "a=b=c", key: "a", val: "b=c"},
		{arg: " a =", key: "a", val: ""},
		{arg: "novalue", wantError: true},
		{arg: "=x", wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			k, v, err := ParseAssignment(tt.arg)
			if tt.wantError {
				assert.ErrorIs(t, err, types.ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, k)
			assert.Equal(t, tt.val, v)
		})
	}
}
