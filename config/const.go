package config

import "errors"

const (
	fmtErrEmptyConfig       = "config %s cannot be empty"
	fmtErrEmptyConfigOption = "config field '%s' cannot be empty"
	fmtErrInvalidDuration   = "config field '%s' must be a positive duration: %q"
)

const (
	envPrefix            = "SITEMON_"
	envAdminPasswordHash = envPrefix + "ADMIN_PASSWORD_HASH"
	envSMTPPassword      = envPrefix + "SMTP_PASSWORD"
	envSigningKeyPath    = envPrefix + "SIGNING_KEY_PATH"
	envEmailRecipient    = envPrefix + "EMAIL_RECIPIENT"
	envLogLevel          = envPrefix + "LOG_LEVEL"
)

var ErrNoConfigPath = errors.New("config file path is required (use --config or -c)")
