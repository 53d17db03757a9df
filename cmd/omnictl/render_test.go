package main

import (
	"bytes"
	"testing"

	"OmniTrade/internal/domain/models"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestRenderSnapshot(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	renderSnapshot(&buf, &models.Snapshot{
		Scanners: models.DefaultScannerState(),
		Bots:     []models.BotConfig{{ID: "10", Name: "NO-TRADE GUARDIAN", Active: true, IsGuardian: true, Risk: models.RiskHigh}},
		Health:   69,
		Mode:     models.ModeStop,
		Metrics:  models.DefaultSystemMetrics(),
		Logs:     models.SeedLogs()[:1],
		Advice:   "Stand aside.",
		Time:     "09:30:15",
	})

	out := buf.String()
	assert.Contains(t, out, "Health: 69  Mode: STOP")
	assert.Contains(t, out, "Session     LONDON (MID)")
	assert.Contains(t, out, "● 10")
	assert.Contains(t, out, "VWAP REVERSION")
	assert.Contains(t, out, "Stand aside.")
}

func TestRenderLogsUppercasesBot(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	renderLogs(&buf, []models.ExecutionLog{{Timestamp: "10:00:00", Bot: "Trend Liquidity", Action: "Initialization Requested", Status: models.LogSuccess}})
	assert.Contains(t, buf.String(), "TREND LIQUIDITY")
	assert.Contains(t, buf.String(), "SUCCESS")
}
