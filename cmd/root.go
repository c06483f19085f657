// Package cmd holds the tenor command line.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tenor/config"
	"tenor/logging"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tenor",
	Short: "Tenor project management API",
	Long: `Tenor serves the agile project management API backed by Firestore,
plus the Muse headband OSC bridge and the standalone AI requirement proxy.`,
	SilenceUsage: true,
}

var logLevel string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	rootCmd.AddCommand(serveCmd, oscBridgeCmd, aiProxyCmd)
}

// setup loads the configuration and installs the process logger.
func setup() (*config.Config, *slog.Logger, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger, closeLog, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, closeLog, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
