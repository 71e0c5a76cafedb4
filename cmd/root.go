package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/dragsync/internal/config"
	"github.com/zjrosen/dragsync/internal/log"
	"github.com/zjrosen/dragsync/internal/tracing"
	"github.com/zjrosen/dragsync/internal/ui/board"
	"github.com/zjrosen/dragsync/internal/watcher"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the board.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".dragsync/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dragsync",
	Short: "A drag-and-drop board that keeps item models in sync",
	Long: `A terminal board of drag-and-drop containers. Every gesture is reconciled
into the ordered item collections behind the containers, and the rendered
order can be verified against the model after each drop.`,
	Version:      version,
	SilenceUsage: true,
	PreRunE:      setupLogging,
	RunE:         runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/dragsync/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log")
	rootCmd.PersistentFlags().Bool("hide-warnings", false,
		"log known option conflicts at debug level")
	rootCmd.Flags().StringP("items", "i", "",
		"YAML items file, reloaded when it changes")

	// Bind flags to viper
	_ = viper.BindPFlag("hide_warnings", rootCmd.PersistentFlags().Lookup("hide-warnings"))
	_ = viper.BindPFlag("items_file", rootCmd.Flags().Lookup("items"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("log_path", defaults.LogPath)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("verify", defaults.Verify)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.label_field", defaults.UI.LabelField)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	viper.SetEnvPrefix("DRAGSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .dragsync/config.yaml (current directory)
		// 2. ~/.config/dragsync/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "dragsync"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "dragsync: reading config: %v\n", err)
		}
		// Without a config file the demo board is used.
	}

	_ = viper.Unmarshal(&cfg)
}

// setupLogging initializes the debug log when enabled by flag, env var or
// config.
func setupLogging(_ *cobra.Command, _ []string) error {
	if !debugFlag && !cfg.Debug {
		return nil
	}
	cleanup, err := initLogging()
	if err != nil {
		return err
	}
	cobra.OnFinalize(cleanup)
	return nil
}

// initLogging opens the debug log through bubbletea so the program's own
// debug output shares the file.
func initLogging() (func(), error) {
	cleanup, err := log.InitWithTeaLog(cfg.LogPath, "dragsync")
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.SetMinLevel(log.ParseLevel(cfg.LogLevel))
	log.Info(log.CatConfig, "dragsync starting", "config", viper.ConfigFileUsed(), "version", version)
	return cleanup, nil
}

func runApp(_ *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}()

	host, err := board.NewHost(cfg, board.WithTracer(provider.Tracer()))
	if err != nil {
		return fmt.Errorf("loading board: %w", err)
	}

	opts := board.Options{ShowStatusBar: cfg.UI.ShowStatusBar}
	if cfg.ItemsFile != "" {
		w, err := watcher.New(watcher.DefaultConfig(cfg.ItemsFile))
		if err != nil {
			return fmt.Errorf("watching items file: %w", err)
		}
		changes, err := w.Start()
		if err != nil {
			return fmt.Errorf("watching items file: %w", err)
		}
		defer func() { _ = w.Stop() }()
		opts.Watch = changes
	}

	zone.NewGlobal()
	p := tea.NewProgram(
		newApp(board.New(ctx, host, opts)),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
