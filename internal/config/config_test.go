package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/dragsync/internal/tracing"
)

func TestValidateContainers_Empty(t *testing.T) {
	require.NoError(t, ValidateContainers(nil), "empty containers should be valid (uses defaults)")
}

func TestValidateContainers_Defaults(t *testing.T) {
	require.NoError(t, ValidateContainers(DefaultContainers()))
}

func TestValidateContainers_Errors(t *testing.T) {
	tests := []struct {
		name       string
		containers []ContainerConfig
		want       string
	}{
		{
			name:       "missing id",
			containers: []ContainerConfig{{Group: "g"}},
			want:       "container 0: id is required",
		},
		{
			name:       "missing group",
			containers: []ContainerConfig{{ID: "a"}},
			want:       "container 0 (a): group is required",
		},
		{
			name:       "slash in id",
			containers: []ContainerConfig{{ID: "a/b", Group: "g"}},
			want:       "must not contain '/'",
		},
		{
			name:       "duplicate",
			containers: []ContainerConfig{{ID: "a", Group: "g"}, {ID: "b", Group: "g"}, {ID: "a", Group: "g"}},
			want:       "container 2 (a): duplicates container 0",
		},
		{
			name:       "unknown handler event",
			containers: []ContainerConfig{{ID: "a", Group: "g", Handlers: map[string]string{"hover": "status"}}},
			want:       `unknown handler event "hover"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContainers(tt.containers)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateContainers_SameIDAcrossGroups(t *testing.T) {
	err := ValidateContainers([]ContainerConfig{
		{ID: "a", Group: "g1"},
		{ID: "a", Group: "g2", Handlers: map[string]string{"DragEnd": "log"}},
	})
	require.NoError(t, err)
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name string
		cfg  tracing.Config
		want string
	}{
		{name: "defaults", cfg: tracing.DefaultConfig()},
		{name: "disabled file without path", cfg: tracing.Config{Exporter: "file"}},
		{name: "sample rate high", cfg: tracing.Config{SampleRate: 1.5}, want: "sample_rate"},
		{name: "sample rate negative", cfg: tracing.Config{SampleRate: -0.1}, want: "sample_rate"},
		{name: "bad exporter", cfg: tracing.Config{Exporter: "zipkin"}, want: `got "zipkin"`},
		{name: "file without path", cfg: tracing.Config{Enabled: true, Exporter: "file"}, want: "file_path is required"},
		{name: "otlp without endpoint", cfg: tracing.Config{Enabled: true, Exporter: "otlp"}, want: "otlp_endpoint is required"},
		{name: "stdout", cfg: tracing.Config{Enabled: true, Exporter: "stdout", SampleRate: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "INFO", "warn", "error"} {
		require.NoError(t, ValidateLogLevel(level), level)
	}
	require.Error(t, ValidateLogLevel("verbose"))
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.NoError(t, cfg.Validate())
	require.False(t, cfg.Debug)
	require.False(t, cfg.HideWarnings)
	require.True(t, cfg.Verify)
	require.True(t, cfg.UI.ShowStatusBar)
	require.Equal(t, "id", cfg.UI.LabelField)
	require.Len(t, cfg.Containers, 4)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, tracing.ExporterFile, cfg.Tracing.Exporter)
	require.Equal(t, DefaultTracesFilePath(), cfg.Tracing.FilePath)
}

func TestDefaultContainers_Leaders(t *testing.T) {
	containers := DefaultContainers()
	leaders := map[string]ContainerConfig{}
	for _, c := range containers {
		if _, ok := leaders[c.Group]; !ok {
			leaders[c.Group] = c
		}
	}
	require.Len(t, leaders, 2)
	require.Equal(t, "container0", leaders["containerGroup0"].ID)
	require.Equal(t, "false", leaders["containerGroup0"].Options["copy"])
	require.Equal(t, "true", leaders["alphaOmega"].Options["copy"])
	require.Equal(t, "containerGroup0/container1", containers[1].Key())
}

func TestGetContainers(t *testing.T) {
	require.Equal(t, DefaultContainers(), Config{}.GetContainers())

	custom := []ContainerConfig{{ID: "a", Group: "g"}}
	require.Equal(t, custom, Config{Containers: custom}.GetContainers())
}

func TestConfig_Items(t *testing.T) {
	cfg := Config{Containers: []ContainerConfig{
		{ID: "a", Group: "g", Items: []any{map[any]any{"id": "1"}, 2}},
		{ID: "b", Group: "g"},
	}}

	items := cfg.Items()
	require.Len(t, items, 1, "containers without items are skipped")
	require.Equal(t, "g", items[0].Group)
	require.Equal(t, "a", items[0].Container)
	require.Equal(t, []any{map[string]any{"id": "1"}, 2}, items[0].Items)
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.NoError(t, cfg.Validate())

	defaults := Defaults()
	require.Equal(t, defaults.LogLevel, cfg.LogLevel)
	require.Equal(t, defaults.Verify, cfg.Verify)
	require.Equal(t, defaults.UI, cfg.UI)
	require.Len(t, cfg.Containers, len(defaults.Containers))
	for i, c := range cfg.Containers {
		require.Equal(t, defaults.Containers[i].Key(), c.Key())
		require.Len(t, c.Items, len(defaults.Containers[i].Items), c.Key())
	}
	// viper may lowercase map keys; option resolution ignores case.
	require.Equal(t, "true", valueFold(cfg.Containers[0].Options, "revertOnSpill"))
	require.Equal(t, "status", valueFold(cfg.Containers[0].Handlers, "drop"))
}

func valueFold(m map[string]string, key string) string {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file should be renamed away")
}
