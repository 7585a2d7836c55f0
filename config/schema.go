package config

type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Alert   AlertConfig   `yaml:"alert"`
	Logging LoggingConfig `yaml:"logging"`
	Sites   []SiteConfig  `yaml:"sites"`
}

type MonitorConfig struct {
	DefaultCheckInterval string `yaml:"default_check_interval"`
	// DemoInterval replaces every site's cadence when set.
	DemoInterval    string  `yaml:"demo_interval"`
	ProbeTimeout    string  `yaml:"probe_timeout"`
	DownThreshold   int     `yaml:"down_threshold"`
	SmoothingFactor float64 `yaml:"smoothing_factor"`
}

var DefaultMonitorConfig = MonitorConfig{
	DefaultCheckInterval: "5m",
	DemoInterval:         "",
	ProbeTimeout:         "10s",
	DownThreshold:        3,
	SmoothingFactor:      0.05,
}

type ServerConfig struct {
	Port            int      `yaml:"port"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
}

var DefaultServerConfig = ServerConfig{
	Port:            8080,
	AllowedOrigins:  []string{"http://localhost:5173", "http://localhost:3000"},
	ShutdownTimeout: "30s",
}

type AuthConfig struct {
	Username       string `yaml:"username"`
	PasswordHash   string `yaml:"password_hash"`
	SigningKeyPath string `yaml:"signing_key_path"`
	TokenExpiry    string `yaml:"token_expiry"`
}

var DefaultAuthConfig = AuthConfig{
	Username:       "admin",
	SigningKeyPath: "/etc/site-monitor/jwt.key",
	TokenExpiry:    "12h",
}

type AlertConfig struct {
	Email EmailAlertConfig `yaml:"email"`
}

var DefaultAlertConfig = AlertConfig{
	Email: DefaultEmailAlertConfig,
}

type EmailAlertConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Recipient         string `yaml:"recipient"`
	NotificationDelay string `yaml:"notification_delay"`
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	From              string `yaml:"from"`
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	SendTimeout       string `yaml:"send_timeout"`
}

var DefaultEmailAlertConfig = EmailAlertConfig{
	Enabled:           false,
	NotificationDelay: "30m",
	Port:              587,
	SendTimeout:       "15s",
}

type LoggingConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

var DefaultLoggingConfig = LoggingConfig{
	Level: "info",
}

// SiteConfig seeds the registry at startup. An empty CheckInterval falls back
// to monitor.default_check_interval.
type SiteConfig struct {
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	CheckInterval string `yaml:"check_interval"`
}
