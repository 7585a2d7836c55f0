package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Crowley723/site-monitor/client"
)

var addInterval float64

var addCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Start monitoring a site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		site, err := client.New(apiURL, apiToken).AddSite(args[0], args[1], addInterval)
		if err != nil {
			return fmt.Errorf("failed to add site: %w", err)
		}
		fmt.Println(styleSuccessBox.Render(fmt.Sprintf("Added %s as site %d", site.Name, site.ID)))
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Short:   "Stop monitoring a site",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		removed, err := client.New(apiURL, apiToken).RemoveSite(id)
		if err != nil {
			return fmt.Errorf("failed to remove site: %w", err)
		}
		if !removed {
			fmt.Println(styleDim.Render(fmt.Sprintf("Site %d was not monitored", id)))
			return nil
		}
		fmt.Println(styleSuccessBox.Render(fmt.Sprintf("Removed site %d", id)))
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <id>",
	Short: "Probe a site now, outside its schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status, err := client.New(apiURL, apiToken).CheckSite(id)
		if err != nil {
			return fmt.Errorf("failed to check site: %w", err)
		}
		fmt.Println(styleDim.Render(fmt.Sprintf("Site %d: %s", id, status)))
		return nil
	},
}

var certCmd = &cobra.Command{
	Use:   "cert <id>",
	Short: "Show the TLS certificate a site presents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		info, err := client.New(apiURL, apiToken).Certificate(id)
		if err != nil {
			return fmt.Errorf("failed to fetch certificate: %w", err)
		}
		if info.Subject == "" {
			fmt.Println(styleDim.Render("No certificate (site is not served over https)"))
			return nil
		}

		valid := styleUp.Render("valid")
		if !info.Valid {
			valid = styleDown.Render("invalid: " + info.Error)
		}
		fmt.Println(styleKey.Render("Status") + valid)
		fmt.Println(styleKey.Render("Subject") + styleVal.Render(info.Subject))
		fmt.Println(styleKey.Render("Issuer") + styleVal.Render(info.Issuer))
		fmt.Println(styleKey.Render("Valid") + styleVal.Render(info.ValidFrom.Format("2006-01-02")+" to "+info.ValidTo.Format("2006-01-02")))
		fmt.Println(styleKey.Render("Protocol") + styleVal.Render(fmt.Sprintf("%s, %d bit key", info.Protocol, info.Bits)))
		fmt.Println(styleKey.Render("Fingerprint") + styleDim.Render(info.Fingerprint))
		return nil
	},
}

func init() {
	addCmd.Flags().Float64Var(&addInterval, "interval", 0, "check interval in minutes (default from server config)")
	rootCmd.AddCommand(addCmd, removeCmd, checkCmd, certCmd)
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid site id %q", raw)
	}
	return id, nil
}
