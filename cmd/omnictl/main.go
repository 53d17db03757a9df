// Command omnictl is the operator console for a running OmniTrade engine.
package main

import (
	"fmt"
	"os"
	"time"

	xhttp "OmniTrade/pkg/http"

	"github.com/spf13/cobra"
)

var (
	apiURL  string
	wsURL   string
	timeout time.Duration

	api *xhttp.Client
)

var rootCmd = &cobra.Command{
	Use:   "omnictl",
	Short: "Operator console for the OmniTrade dashboard engine",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api = xhttp.NewClient(apiURL, xhttp.WithTimeout(timeout))
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("OMNI_API", "http://localhost:8000"), "engine HTTP address")
	rootCmd.PersistentFlags().StringVar(&wsURL, "ws", envOr("OMNI_WS", "ws://localhost:8000/ws"), "telemetry stream URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
