package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"swimtrack/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "swimtrack",
		Short:         "Lap counting server for 24 hour swim competitions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultFile+")")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		setupLogging(cfg)
		return cfg, nil
	}
	root.AddCommand(newServeCmd(load), newMigrateCmd(load), newReportCmd(load))
	return root
}

// setupLogging installs the default slog handler. Config.Validate has
// already checked the level and format.
func setupLogging(cfg *config.Config) {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Logging.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
