package cmd

import (
	"net/http"
	"time"

	"tenor/oscbridge"

	"github.com/spf13/cobra"
)

var (
	oscListen string
	oscRelay  string
)

var oscBridgeCmd = &cobra.Command{
	Use:   "osc-bridge",
	Short: "Forward Muse OSC band powers to the live relay",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		if oscListen == "" {
			oscListen = cfg.OSCListenAddr
		}
		if oscRelay == "" {
			oscRelay = cfg.MuseRelayURL
		}

		bridge := &oscbridge.Bridge{
			Aggregator: oscbridge.NewAggregator(oscbridge.SendInterval),
			Forwarder:  &oscbridge.Forwarder{URL: oscRelay, Client: &http.Client{Timeout: 5 * time.Second}},
			Logger:     logger,
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()
		logger.Info("forwarding muse data", "relay", oscRelay)
		return bridge.ListenAndServe(ctx, oscListen)
	},
}

func init() {
	oscBridgeCmd.Flags().StringVar(&oscListen, "listen", "", "UDP address to listen on (default OSC_LISTEN_ADDR)")
	oscBridgeCmd.Flags().StringVar(&oscRelay, "relay", "", "relay URL to post readings to (default MUSE_RELAY_URL)")
}
