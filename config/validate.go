package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
	"unicode"
)

// MaxCheckInterval bounds per-site check intervals.
const MaxCheckInterval = 7 * 24 * time.Hour

type Validator interface {
	validateMonitorConfig() error
	validateServerConfig() error
	validateAuthConfig() error
	validateAlertConfig() error
	validateSiteConfigs() error
}

func validateConfig(config Validator) error {
	checks := []func() error{
		config.validateMonitorConfig,
		config.validateServerConfig,
		config.validateAuthConfig,
		config.validateAlertConfig,
		config.validateSiteConfigs,
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateMonitorConfig() error {
	if c == nil {
		return fmt.Errorf(fmtErrEmptyConfig, "config")
	}

	if c.Monitor.DefaultCheckInterval == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "monitor.default_check_interval")
	}

	if err := validatePositiveDuration("monitor.default_check_interval", c.Monitor.DefaultCheckInterval); err != nil {
		return err
	}

	if c.Monitor.DemoInterval != "" {
		if err := validatePositiveDuration("monitor.demo_interval", c.Monitor.DemoInterval); err != nil {
			return err
		}
	}

	if c.Monitor.ProbeTimeout == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "monitor.probe_timeout")
	}

	if err := validatePositiveDuration("monitor.probe_timeout", c.Monitor.ProbeTimeout); err != nil {
		return err
	}

	if c.Monitor.DownThreshold < 1 {
		return errors.New("monitor.down_threshold must be at least 1")
	}

	if c.Monitor.SmoothingFactor <= 0 || c.Monitor.SmoothingFactor > 1 {
		return errors.New("monitor.smoothing_factor must be in the range (0, 1]")
	}

	return nil
}

func (c *Config) validateServerConfig() error {
	if c == nil {
		return fmt.Errorf(fmtErrEmptyConfig, "config")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server.port must be in the range 1-65535")
	}

	return validatePositiveDuration("server.shutdown_timeout", c.Server.ShutdownTimeout)
}

func (c *Config) validateAuthConfig() error {
	if c == nil {
		return fmt.Errorf(fmtErrEmptyConfig, "config")
	}

	if c.Auth.Username == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "auth.username")
	}

	if c.Auth.SigningKeyPath == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "auth.signing_key_path")
	}

	return validatePositiveDuration("auth.token_expiry", c.Auth.TokenExpiry)
}

func (c *Config) validateAlertConfig() error {
	if c == nil {
		return fmt.Errorf(fmtErrEmptyConfig, "config")
	}

	email := c.Alert.Email

	if err := validatePositiveDuration("alert.email.notification_delay", email.NotificationDelay); err != nil {
		return err
	}

	if err := validatePositiveDuration("alert.email.send_timeout", email.SendTimeout); err != nil {
		return err
	}

	if !email.Enabled {
		return nil
	}

	if email.Host == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "alert.email.host")
	}

	if email.From == "" {
		return fmt.Errorf(fmtErrEmptyConfigOption, "alert.email.from")
	}

	if email.Port <= 0 || email.Port > 65535 {
		return errors.New("alert.email.port must be in the range 1-65535")
	}

	return nil
}

func (c *Config) validateSiteConfigs() error {
	if c == nil {
		return fmt.Errorf(fmtErrEmptyConfig, "config")
	}

	for i, site := range c.Sites {
		if site.Name == "" {
			return fmt.Errorf(fmtErrEmptyConfigOption, fmt.Sprintf("sites[%d].name", i))
		}

		if !IsPrintableName(site.Name) {
			return fmt.Errorf("sites[%d].name must not contain control characters: %q", i, site.Name)
		}

		if site.URL == "" {
			return fmt.Errorf(fmtErrEmptyConfigOption, fmt.Sprintf("sites[%d].url", i))
		}

		if !IsAbsoluteURL(site.URL) {
			return fmt.Errorf("sites[%d].url must be an absolute URL: %q", i, site.URL)
		}

		if site.CheckInterval != "" {
			field := fmt.Sprintf("sites[%d].check_interval", i)
			if err := validatePositiveDuration(field, site.CheckInterval); err != nil {
				return err
			}
			if d, _ := time.ParseDuration(site.CheckInterval); d > MaxCheckInterval {
				return fmt.Errorf("%s must not exceed %s: %q", field, MaxCheckInterval, site.CheckInterval)
			}
		}
	}

	return nil
}

// IsAbsoluteURL reports whether raw parses as a URL with scheme and host.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// IsPrintableName reports whether name is free of control characters. Site
// names end up in email headers.
func IsPrintableName(name string) bool {
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func validatePositiveDuration(field, raw string) error {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fmt.Errorf(fmtErrInvalidDuration, field, raw)
	}
	return nil
}
