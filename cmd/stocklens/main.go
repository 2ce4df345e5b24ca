package main

import (
	"context"
	"fmt"
	"os"

	"stocklens/internal/cli"
	"stocklens/internal/config"
	"stocklens/internal/logging"
)

func main() {
	cfg, err := config.Load(configDirFromArgs(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "stocklens: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.File
	logCfg.FilePath = config.DefaultLogPath()
	logCfg.MaxSize = cfg.Logging.MaxSizeMB
	logCfg.MaxBackups = cfg.Logging.MaxBackups
	logCfg.MaxAge = cfg.Logging.MaxAgeDays
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger)
	ctx := logging.WithLogger(context.Background(), logger)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// The root command silences cobra's own reporting, so parse
		// failures would otherwise exit with no output at all.
		fmt.Fprintln(os.Stderr, err)
		logger.Debug().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// configDirFromArgs pre-scans for the --config flag, which must be known
// before cobra parses flags because the config drives command wiring.
func configDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):]
		}
	}
	return ""
}
