// Package cli provides the command-line interface for the analysis tool.
package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stocklens/internal/analysis"
	"stocklens/internal/config"
	"stocklens/internal/logging"
	"stocklens/internal/marketdata"
	"stocklens/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-30"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.SeriesStore
	Service *marketdata.Service
	Builder *analysis.Builder
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Candle cache; fetches still work without it
	if cfg.Cache.Enabled {
		seriesStore, err := store.NewSQLiteStore(config.DefaultDBPath())
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open candle cache, continuing without it")
		} else {
			app.Store = seriesStore
			logger.Debug().Str("path", config.DefaultDBPath()).Msg("Candle cache opened")
		}
	}

	yahoo := marketdata.NewYahooClient(marketdata.YahooConfig{
		BaseURL:       cfg.Data.BaseURL,
		Timeout:       time.Duration(cfg.Data.TimeoutSeconds) * time.Second,
		UserAgent:     cfg.Data.UserAgent,
		RetryAttempts: cfg.Data.RetryAttempts,
	}, logger)

	app.Service = marketdata.NewService(yahoo, app.Store, cfg, logger)
	app.Builder = analysis.NewBuilder(logger)

	rootCmd := &cobra.Command{
		Use:   "stocklens",
		Short: "stocklens - Indian stock analysis CLI",
		Long: `stocklens analyzes a single Indian equity (NSE/BSE) over a lookback window.

It fetches daily price history from Yahoo Finance, computes price and volume
statistics with 50/200-day moving-average positioning, and renders the report
and terminal charts. Fetched candles are cached locally for faster reruns.

Use 'stocklens help <command>' for more information about a command.
Use 'stocklens examples' to see common workflows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/stocklens)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newChartCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newExamplesCmd(app))
	rootCmd.AddCommand(newQuickstartCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("stocklens v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Market")
	output.Printf("  Default Exchange:  %s\n", cfg.Market.DefaultExchange)
	output.Printf("  Fallback Exchange: %s\n", cfg.Market.FallbackExchange)
	output.Printf("  Lookback Months:   %d\n", cfg.Market.LookbackMonths)
	output.Println()

	output.Bold("Data Source")
	output.Printf("  Base URL:       %s\n", cfg.Data.BaseURL)
	output.Printf("  Timeout:        %ds\n", cfg.Data.TimeoutSeconds)
	output.Printf("  Retry Attempts: %d\n", cfg.Data.RetryAttempts)
	output.Println()

	output.Bold("Cache")
	output.Printf("  Enabled: %v\n", cfg.Cache.Enabled)
	output.Printf("  TTL:     %dh\n", cfg.Cache.TTLHours)
	output.Printf("  Path:    %s\n", config.DefaultDBPath())
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level: %s\n", cfg.Logging.Level)
	output.Printf("  File:  %v\n", cfg.Logging.File)
	output.Println()

	output.Bold("UI")
	output.Printf("  Color: %v\n", cfg.UI.ColorEnabled)
	output.Printf("  Chart: %dx%d\n", cfg.UI.ChartWidth, cfg.UI.ChartHeight)

	return nil
}
