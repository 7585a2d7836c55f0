package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Crowley723/site-monitor/sites"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorGreen   = lipgloss.Color("#10B981")
	colorRed     = lipgloss.Color("#EF4444")
	colorYellow  = lipgloss.Color("#F59E0B")
	colorDim     = lipgloss.Color("#6B7280")
	colorWhite   = lipgloss.Color("#F9FAFB")

	styleBanner   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1)
	styleSubtitle = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	styleBold     = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleUp       = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleDown     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	stylePending  = lipgloss.NewStyle().Foreground(colorYellow)

	styleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorDim).
				PaddingRight(2)

	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#374151")).
			Padding(1, 2).
			MarginBottom(1)

	styleKey = lipgloss.NewStyle().Foreground(colorDim).Width(16)
	styleVal = lipgloss.NewStyle().Foreground(colorWhite)

	styleSuccessBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGreen).
			Foreground(colorGreen).
			Padding(0, 1)
)

func statusStyle(status sites.Status) lipgloss.Style {
	switch status {
	case sites.StatusUp:
		return styleUp
	case sites.StatusDown:
		return styleDown
	default:
		return stylePending
	}
}

func statusDot(status sites.Status) string {
	return statusStyle(status).Render("●")
}

func cardFor(status sites.Status) lipgloss.Style {
	switch status {
	case sites.StatusUp:
		return styleCard.BorderForeground(colorGreen)
	case sites.StatusDown:
		return styleCard.BorderForeground(colorRed)
	default:
		return styleCard
	}
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
