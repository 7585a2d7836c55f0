package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	apiURL     string
	apiToken   string
)

var rootCmd = &cobra.Command{
	Use:   "sitemon",
	Short: "Site uptime monitor",
	Long: `sitemon probes a list of websites on a schedule, tracks their status and
rolling uptime, and emails an operator when a site goes down.

Run "sitemon serve" for the monitor and API, or use the other commands to
talk to a running instance.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultURL := os.Getenv("SITEMON_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "site monitor API URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", os.Getenv("SITEMON_TOKEN"), "admin token for mutating commands")
}
