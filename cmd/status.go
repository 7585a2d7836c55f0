package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Crowley723/site-monitor/api"
	"github.com/Crowley723/site-monitor/client"
)

var statusCmd = &cobra.Command{
	Use:     "status [id]",
	Short:   "Show status of all sites or a specific site",
	Aliases: []string{"s", "ls"},
	Args:    cobra.MaximumNArgs(1),
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c := client.New(apiURL, apiToken)

	if len(args) == 1 {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		site, err := c.GetSite(id)
		if err != nil {
			return fmt.Errorf("failed to fetch site: %w", err)
		}
		fmt.Println(renderSiteCard(*site))
		return nil
	}

	list, err := c.ListSites()
	if err != nil {
		return fmt.Errorf("failed to fetch sites: %w", err)
	}

	fmt.Print(renderSiteTable(list))
	return nil
}

func renderSiteTable(list []api.SiteResponse) string {
	if len(list) == 0 {
		return styleDim.Render("No sites monitored. Add one with: sitemon add <name> <url>") + "\n"
	}

	up := 0
	for _, site := range list {
		if site.Status == "up" {
			up++
		}
	}

	var b strings.Builder
	b.WriteString(styleBanner.Render("SITE MONITOR") + styleSubtitle.Render(fmt.Sprintf("  %d/%d up", up, len(list))))
	b.WriteString("\n\n")

	header := fmt.Sprintf("  %-2s  %-4s %-20s %-32s %-8s %-9s %-8s %s",
		"", "ID", "NAME", "URL", "STATUS", "LATENCY", "UPTIME", "CHECKED")
	b.WriteString(styleTableHeader.Render(header))
	b.WriteString("\n")

	for _, site := range list {
		latency := styleDim.Render(padRight("-", 9))
		if site.Status == "up" {
			latency = padRight(fmt.Sprintf("%dms", site.ResponseTimeMs), 9)
		}

		fmt.Fprintf(&b, "  %s  %s %s %s %s %s %s %s\n",
			statusDot(site.Status),
			padRight(strconv.Itoa(site.ID), 4),
			styleBold.Render(padRight(truncate(site.Name, 20), 20)),
			padRight(truncate(site.URL, 32), 32),
			statusStyle(site.Status).Render(padRight(string(site.Status), 8)),
			latency,
			padRight(fmt.Sprintf("%.2f%%", site.UptimePercentage), 8),
			styleDim.Render(site.LastCheckedLabel),
		)
	}
	b.WriteString("\n")

	return b.String()
}

func renderSiteCard(site api.SiteResponse) string {
	var b strings.Builder

	b.WriteString(styleBold.Render(site.Name))
	b.WriteString("  ")
	b.WriteString(statusStyle(site.Status).Render("● " + string(site.Status)))
	b.WriteString("\n\n")

	kv := func(k, v string) {
		b.WriteString(styleKey.Render(k))
		b.WriteString(styleVal.Render(v))
		b.WriteString("\n")
	}

	kv("ID", strconv.Itoa(site.ID))
	kv("URL", site.URL)
	kv("Uptime", fmt.Sprintf("%.2f%%", site.UptimePercentage))
	if site.Status == "up" {
		kv("Response time", fmt.Sprintf("%dms", site.ResponseTimeMs))
	}
	kv("Failures", strconv.Itoa(site.ConsecutiveFailures))
	kv("Last checked", site.LastCheckedLabel)
	kv("Interval", fmt.Sprintf("%g min", site.CheckIntervalMinutes))

	return cardFor(site.Status).Render(strings.TrimRight(b.String(), "\n"))
}
