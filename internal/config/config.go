// Package config provides configuration types and defaults for dragsync.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/dragsync/internal/dnd"
	"github.com/zjrosen/dragsync/internal/log"
	"github.com/zjrosen/dragsync/internal/tracing"
)

// ContainerConfig declares one board container.
type ContainerConfig struct {
	ID    string `mapstructure:"id" yaml:"id"`
	Group string `mapstructure:"group" yaml:"group"`
	Title string `mapstructure:"title" yaml:"title,omitempty"`
	Color string `mapstructure:"color" yaml:"color,omitempty"` // hex color e.g. "#10B981"

	// Options are the behavior options of the group. Only the first
	// container of a group is consulted; later ones inherit.
	Options map[string]string `mapstructure:"options" yaml:"options,omitempty"`

	// Handlers binds lifecycle events to built-in board handlers by name,
	// e.g. drop: status. Like Options, only the group leader's are used.
	Handlers map[string]string `mapstructure:"handlers" yaml:"handlers,omitempty"`

	// Items is the initial collection. Overridden by the items file.
	Items []any `mapstructure:"items" yaml:"items,omitempty"`
}

// Key identifies the container as group/id.
func (c ContainerConfig) Key() string { return c.Group + "/" + c.ID }

// UIConfig holds board display options.
type UIConfig struct {
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	ShowSnapshots bool   `mapstructure:"show_snapshots"` // render raw snapshots instead of labels
	LabelField    string `mapstructure:"label_field"`    // object field used as the item label
}

// Config holds all configuration options for dragsync.
type Config struct {
	Debug        bool   `mapstructure:"debug"`
	LogPath      string `mapstructure:"log_path"`
	LogLevel     string `mapstructure:"log_level"` // debug, info (default), warn, error
	HideWarnings bool   `mapstructure:"hide_warnings"`

	// ItemsFile, when set, supplies container items and is watched for
	// external edits.
	ItemsFile string `mapstructure:"items_file"`

	// Verify compares rendered and model order after every gesture.
	Verify bool `mapstructure:"verify"`

	UI         UIConfig          `mapstructure:"ui"`
	Containers []ContainerConfig `mapstructure:"containers"`
	Tracing    tracing.Config    `mapstructure:"tracing"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/dragsync/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "dragsync", "traces", "traces.jsonl")
}

// DefaultContainers returns the demo board: one copying group of records
// spread over three containers and a second group of scalars.
func DefaultContainers() []ContainerConfig {
	return []ContainerConfig{
		{
			ID:    "container0",
			Group: "containerGroup0",
			Title: "Container 0",
			Color: "#73F59F",
			Options: map[string]string{
				"copy":          "false",
				"revertOnSpill": "true",
			},
			Handlers: map[string]string{
				"drop":   "status",
				"remove": "status",
				"cancel": "status",
			},
			Items: []any{
				map[string]any{"id": "1", "propertyY": "item1 propY (origin: container0)", "propertyZ": 1},
				map[string]any{"id": "2", "propertyY": "item2 propY (origin: container0)", "propertyZ": 2},
				map[string]any{"id": "3", "propertyY": "item3 propY (origin: container0)", "propertyZ": 3},
			},
		},
		{
			ID:    "container1",
			Group: "containerGroup0",
			Title: "Container 1",
			Color: "#54A0FF",
			Items: []any{
				map[string]any{"id": "4", "propertyY": "item4 propY (origin: container1)", "propertyZ": 4},
				map[string]any{"id": "5", "propertyY": "item5 propY (origin: container1)", "propertyZ": 5},
			},
		},
		{
			ID:    "container2",
			Group: "containerGroup0",
			Title: "Container 2",
			Color: "#FF8787",
			Items: []any{
				map[string]any{"id": "6", "propertyY": "item6 propY (origin: container2)", "propertyZ": 6},
			},
		},
		{
			ID:    "container3",
			Group: "alphaOmega",
			Title: "Alpha Omega",
			Color: "#BBBBBB",
			Options: map[string]string{
				"copy":          "true",
				"removeOnSpill": "true",
			},
			Handlers: map[string]string{
				"drop": "status",
			},
			Items: []any{123456, "987654"},
		},
	}
}

// ValidateContainers checks container configuration for errors.
// Returns nil if containers are valid or empty (will use defaults).
func ValidateContainers(containers []ContainerConfig) error {
	seen := make(map[string]int, len(containers))
	for i, c := range containers {
		if c.ID == "" {
			return fmt.Errorf("container %d: id is required", i)
		}
		if c.Group == "" {
			return fmt.Errorf("container %d (%s): group is required", i, c.ID)
		}
		if strings.Contains(c.Group, "/") || strings.Contains(c.ID, "/") {
			return fmt.Errorf("container %d (%s): group and id must not contain '/'", i, c.ID)
		}
		if j, dup := seen[c.Key()]; dup {
			return fmt.Errorf("container %d (%s): duplicates container %d in group %q", i, c.ID, j, c.Group)
		}
		seen[c.Key()] = i
		for event := range c.Handlers {
			if !knownEvent(event) {
				return fmt.Errorf("container %d (%s): unknown handler event %q", i, c.ID, event)
			}
		}
	}
	return nil
}

func knownEvent(name string) bool {
	for _, e := range dnd.Events {
		if string(e) == strings.ToLower(name) {
			return true
		}
	}
	return false
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" {
		switch t.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}

	if t.Enabled {
		if t.Exporter == tracing.ExporterFile && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// ValidateLogLevel checks the log level name.
func ValidateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("log_level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", level)
}

// Validate runs every section validator.
func (c Config) Validate() error {
	if err := ValidateLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := ValidateContainers(c.Containers); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// GetContainers returns the configured containers, or DefaultContainers() if
// none are configured.
func (c Config) GetContainers() []ContainerConfig {
	if len(c.Containers) > 0 {
		return c.Containers
	}
	return DefaultContainers()
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		LogPath:  "debug.log",
		LogLevel: "info",
		Verify:   true,
		UI: UIConfig{
			ShowStatusBar: true,
			LabelField:    "id",
		},
		Containers: DefaultContainers(),
		Tracing:    tc,
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# dragsync configuration

# Write a debug log (also enabled by --debug or DRAGSYNC_DEBUG)
debug: false
log_path: debug.log
log_level: info        # debug, info, warn, or error

# Log known option conflicts at debug level instead of warning about them.
# Only hide warnings once you know the problems they describe.
hide_warnings: false

# Compare rendered and model order after every gesture and report drift
verify: true

# Optional YAML file with container items. Edits to it reload the board.
# items_file: items.yaml

ui:
  show_status_bar: true
  show_snapshots: false  # show the serialized item instead of its label
  label_field: id        # object field used as the item label

# Containers in board order. The first container of a group is its leader:
# its options and handlers apply to the whole group, later containers only
# join it.
containers:
  - id: container0
    group: containerGroup0
    title: Container 0
    color: "#73F59F"
    options:
      copy: "false"
      revertOnSpill: "true"
      # accepts, invalid, moves and isContainer name built-in predicates:
      # always, never, notLast, sameContainer, hasModel
      # direction: vertical
      # copySortSource: "false"
      # removeOnSpill: "false"
    handlers:             # cancel, cloned, drag, dragend, drop, out, over, remove, shadow
      drop: status        # built-in handlers: status, log
      remove: status
      cancel: status
    items:
      - {id: "1", propertyY: "item1 propY (origin: container0)", propertyZ: 1}
      - {id: "2", propertyY: "item2 propY (origin: container0)", propertyZ: 2}
      - {id: "3", propertyY: "item3 propY (origin: container0)", propertyZ: 3}

  - id: container1
    group: containerGroup0
    title: Container 1
    color: "#54A0FF"
    items:
      - {id: "4", propertyY: "item4 propY (origin: container1)", propertyZ: 4}
      - {id: "5", propertyY: "item5 propY (origin: container1)", propertyZ: 5}

  - id: container2
    group: containerGroup0
    title: Container 2
    color: "#FF8787"
    items:
      - {id: "6", propertyY: "item6 propY (origin: container2)", propertyZ: 6}

  - id: container3
    group: alphaOmega
    title: Alpha Omega
    color: "#BBBBBB"
    options:
      copy: "true"
      removeOnSpill: "true"
    handlers:
      drop: status
    items: [123456, "987654"]

# Tracing: one trace per drag gesture, one span per reconciliation
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/dragsync/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	if err := writeAtomic(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return err
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
