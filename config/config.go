package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the YAML file at path, applies SITEMON_* environment
// overrides (optionally sourced from a .env file next to the process) and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, ErrNoConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	cfg.applyEnv(os.LookupEnv)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of the defaults without touching the environment.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

// Default returns a config holding only default values.
func Default() *Config {
	return &Config{
		Monitor: DefaultMonitorConfig,
		Server:  DefaultServerConfig,
		Auth:    DefaultAuthConfig,
		Alert:   DefaultAlertConfig,
		Logging: DefaultLoggingConfig,
	}
}

func (c *Config) UnmarshalYAML(unmarshall func(interface{}) error) error {
	type raw Config
	r := raw(*Default())

	if err := unmarshall(&r); err != nil {
		return err
	}

	*c = Config(r)

	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(envAdminPasswordHash); ok && v != "" {
		c.Auth.PasswordHash = v
	}
	if v, ok := lookup(envSigningKeyPath); ok && v != "" {
		c.Auth.SigningKeyPath = v
	}
	if v, ok := lookup(envSMTPPassword); ok && v != "" {
		c.Alert.Email.Password = v
	}
	if v, ok := lookup(envEmailRecipient); ok && v != "" {
		c.Alert.Email.Recipient = v
	}
	if v, ok := lookup(envLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
}
