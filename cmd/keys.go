package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Crowley723/site-monitor/auth"
	"github.com/Crowley723/site-monitor/config"
)

var bootstrapKeyPath string

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Generate the admin token signing key pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := bootstrapKeyPath
		if path == "" {
			path = config.DefaultAuthConfig.SigningKeyPath
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("signing key already exists at %s", path)
		}

		if err := auth.Bootstrap(path); err != nil {
			slog.Error("bootstrap failed", "err", err)
			return err
		}

		slog.Info("Bootstrap Complete", "key", path, "public_key", auth.PublicKeyPath(path))
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for auth.password_hash",
	Long:  "Print a bcrypt hash for auth.password_hash. Reads the password from stdin when no argument is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		if password == "" {
			return fmt.Errorf("password cannot be empty")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an admin token signed with the configured key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			slog.Error("failed to load config", "err", err)
			return err
		}

		issuer, err := auth.LoadIssuer(cfg.Auth.SigningKeyPath, cfg.Auth.TokenExpiryDuration())
		if err != nil {
			slog.Error("failed to load signing key", "err", err)
			return err
		}

		token, expiresAt, err := issuer.Issue(cfg.Auth.Username)
		if err != nil {
			slog.Error("failed to generate token", "err", err)
			return err
		}

		slog.Debug("issued token", "subject", cfg.Auth.Username, "expires_at", expiresAt)
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	bootstrapCmd.Flags().StringVar(&bootstrapKeyPath, "key", "", "path for the private key (default "+config.DefaultAuthConfig.SigningKeyPath+")")
	rootCmd.AddCommand(bootstrapCmd, hashPasswordCmd, tokenCmd)
}
