package main

import (
	"fmt"
	"io"
	"strings"

	"OmniTrade/internal/domain/models"

	"github.com/fatih/color"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func modeColor(m models.GovernanceMode) func(a ...interface{}) string {
	switch m {
	case models.ModeFull:
		return green
	case models.ModeReduced, models.ModeDefensive:
		return yellow
	default:
		return red
	}
}

func renderHealth(w io.Writer, health int, mode models.GovernanceMode) {
	fmt.Fprintf(w, "Health: %s  Mode: %s\n", modeColor(mode)(fmt.Sprintf("%d", health)), modeColor(mode)(string(mode)))
}

func renderScanners(w io.Writer, s models.ScannerState) {
	fmt.Fprintf(w, "%s\n", yellow("Scanners:"))
	fmt.Fprintf(w, "  Volatility  %s\n", s.Volatility)
	fmt.Fprintf(w, "  Trend       %s\n", s.Trend)
	fmt.Fprintf(w, "  Phase       %s\n", s.Phase)
	fmt.Fprintf(w, "  Session     %s (%s)\n", s.Clock, s.Cycle)
	unc := string(s.Uncertainty)
	if s.Uncertainty != models.UncertaintyLow {
		unc = red(unc)
	}
	fmt.Fprintf(w, "  Uncertainty %s\n", unc)
	if s.Correlation != nil {
		fmt.Fprintf(w, "  Stress      %.2f\n", s.Correlation.StressIndex)
	}
}

func renderBots(w io.Writer, bots []models.BotConfig) {
	for _, b := range bots {
		icon, paint := "○", gray
		if b.Active {
			icon, paint = "●", green
		}
		if b.IsGuardian && b.Active {
			paint = red
		}
		fmt.Fprintf(w, "  %s %-3s %-24s %-4s %s\n", paint(icon), b.ID, b.Name, b.Risk, gray(b.Trigger))
	}
}

func renderLogs(w io.Writer, logs []models.ExecutionLog) {
	for _, l := range logs {
		status := string(l.Status)
		switch l.Status {
		case models.LogSuccess:
			status = green(status)
		case models.LogWarning:
			status = yellow(status)
		case models.LogError:
			status = red(status)
		}
		fmt.Fprintf(w, "  %s %-7s %-22s %s\n", gray(l.Timestamp), status, strings.ToUpper(l.Bot), l.Action)
	}
}

func renderSnapshot(w io.Writer, s *models.Snapshot) {
	fmt.Fprintf(w, "%s %s\n", cyan("=== OmniTrade ==="), gray(s.Time))
	renderHealth(w, s.Health, s.Mode)
	fmt.Fprintf(w, "Drawdown: %.2f%%  Exposure: %.1f%%\n\n", s.Metrics.Drawdown, s.Metrics.Exposure)
	renderScanners(w, s.Scanners)
	fmt.Fprintf(w, "\n%s\n", yellow("Fleet:"))
	renderBots(w, s.Bots)
	fmt.Fprintf(w, "\n%s\n", yellow("Execution log:"))
	renderLogs(w, s.Logs)
	advice := s.Advice
	if s.AdviceLoading {
		advice = gray("(refreshing) ") + advice
	}
	fmt.Fprintf(w, "\n%s\n  %s\n", yellow("Advice:"), advice)
}
