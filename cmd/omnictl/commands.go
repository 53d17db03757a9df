package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"OmniTrade/internal/domain/models"
	"OmniTrade/internal/service/feed"
	xhttp "OmniTrade/pkg/http"
	xlogger "OmniTrade/pkg/logger"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the current dashboard snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		var snap models.Snapshot
		if err := api.Call(cmd.Context(), &xhttp.RequestOptions{Method: xhttp.MethodGet, Path: "/api/state"}, &snap); err != nil {
			return err
		}
		renderSnapshot(cmd.OutOrStdout(), &snap)
		return nil
	},
}

var botsCmd = &cobra.Command{
	Use:   "bots",
	Short: "List the bot fleet",
	RunE: func(cmd *cobra.Command, args []string) error {
		var list struct {
			Rows []models.BotConfig `json:"rows"`
		}
		if err := api.Call(cmd.Context(), &xhttp.RequestOptions{Method: xhttp.MethodGet, Path: "/api/bots"}, &list); err != nil {
			return err
		}
		renderBots(cmd.OutOrStdout(), list.Rows)
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a bot between active and idle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var bot models.BotConfig
		path := "/api/bots/" + url.PathEscape(args[0]) + "/toggle"
		if err := api.Call(cmd.Context(), &xhttp.RequestOptions{Method: xhttp.MethodPost, Path: path}, &bot); err != nil {
			return err
		}
		renderBots(cmd.OutOrStdout(), []models.BotConfig{bot})
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init <id>",
	Short: "Request initialization of an active bot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var entry models.ExecutionLog
		path := "/api/bots/" + url.PathEscape(args[0]) + "/initialize"
		if err := api.Call(cmd.Context(), &xhttp.RequestOptions{Method: xhttp.MethodPost, Path: path}, &entry); err != nil {
			return err
		}
		renderLogs(cmd.OutOrStdout(), []models.ExecutionLog{entry})
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <uncertainty> <drawdown>",
	Short: "Run the governance evaluator on arbitrary inputs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := strconv.ParseFloat(args[1], 64); err != nil {
			return fmt.Errorf("drawdown %q: %w", args[1], err)
		}
		var report models.HealthReport
		err := api.Call(cmd.Context(), &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			Path:   "/api/governance/evaluate",
			QueryParams: map[string][]string{
				"uncertainty": {args[0]},
				"drawdown":    {args[1]},
			},
		}, &report)
		if err != nil {
			return err
		}
		renderHealth(cmd.OutOrStdout(), report.HealthScore, report.Mode)
		return nil
	},
}

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the telemetry stream (Ctrl+C to stop)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		l, err := xlogger.New(&xlogger.Config{Level: "warn", Format: "console", Output: "stderr"})
		if err != nil {
			return err
		}
		reconnect, _ := cmd.Flags().GetDuration("reconnect")
		client := feed.New(wsURL, l, feed.WithReconnectDelay(reconnect))

		out := cmd.OutOrStdout()
		var lastTop string
		client.Subscribe(func(t models.Telemetry) {
			renderHealth(out, t.Health, t.Mode)
			if len(t.Logs) > 0 && t.Logs[0].ID != lastTop {
				lastTop = t.Logs[0].ID
				renderLogs(out, t.Logs[:1])
			}
		})
		return client.Run(ctx)
	},
}

func init() {
	tailCmd.Flags().Duration("reconnect", 0, "reconnect delay (default 5s)")
	rootCmd.AddCommand(stateCmd, botsCmd, toggleCmd, initCmd, evaluateCmd, tailCmd)
}
