package cmd

import (
	"tenor/connection"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		if err := cfg.ValidateServer(); err != nil {
			logger.Error("invalid configuration", "error", err)
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()
		return connection.StartServer(ctx, cfg, logger)
	},
}
