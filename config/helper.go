package config

import (
	"log/slog"
	"strings"
	"time"
)

// The accessors below are only called after validateConfig succeeded, so parse
// errors are not expected here and fall back to the zero duration.

// CheckInterval returns the cadence for a site configured with raw, falling
// back to the default.
func (m *MonitorConfig) CheckInterval(raw string) time.Duration {
	if raw != "" {
		return mustDuration(raw)
	}
	return mustDuration(m.DefaultCheckInterval)
}

// DemoIntervalDuration returns the cadence override, or zero when demo mode
// is off.
func (m *MonitorConfig) DemoIntervalDuration() time.Duration {
	if m.DemoInterval == "" {
		return 0
	}
	return mustDuration(m.DemoInterval)
}

// ProbeTimeoutDuration returns the per-probe deadline.
func (m *MonitorConfig) ProbeTimeoutDuration() time.Duration {
	return mustDuration(m.ProbeTimeout)
}

func (s *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(s.ShutdownTimeout)
}

func (a *AuthConfig) TokenExpiryDuration() time.Duration {
	return mustDuration(a.TokenExpiry)
}

// NotificationDelayDuration returns the throttle window between two delivered
// downtime emails for the same site.
func (e *EmailAlertConfig) NotificationDelayDuration() time.Duration {
	return mustDuration(e.NotificationDelay)
}

func (e *EmailAlertConfig) SendTimeoutDuration() time.Duration {
	return mustDuration(e.SendTimeout)
}

// SlogLevel maps logging.level onto a slog level, defaulting to info.
func (l *LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func mustDuration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}
