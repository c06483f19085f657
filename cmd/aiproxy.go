package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tenor/controller/ai"
	"tenor/middleware"
	"tenor/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var proxyPort string

var aiProxyCmd = &cobra.Command{
	Use:   "ai-proxy",
	Short: "Run the standalone requirement generation proxy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		gin.SetMode(cfg.GinMode)
		router := gin.New()
		router.Use(gin.Recovery(), middleware.RequestLogger(logger))
		ai.ProxyController(router, services.NewAIClient(services.NewProvider(cfg), cfg.AIRatePerMinute))

		srv := &http.Server{Addr: ":" + proxyPort, Handler: router, ReadHeaderTimeout: 10 * time.Second}
		ctx, stop := signalContext(cmd.Context())
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("ai proxy listening", "port", proxyPort, "provider", cfg.GenerativeAI)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	aiProxyCmd.Flags().StringVar(&proxyPort, "port", "4000", "port to listen on")
}
