package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Autosave  AutosaveConfig  `yaml:"autosave"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AutosaveConfig controls the debounced persistence flush. Bursts of edits
// within the quiet period coalesce into one save; a crash inside the window
// loses the latest uncommitted edits.
type AutosaveConfig struct {
	QuietMS int `yaml:"quiet_ms"`
}

// Quiet returns the debounce quiet period, defaulting to 2s.
func (a AutosaveConfig) Quiet() time.Duration {
	if a.QuietMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(a.QuietMS) * time.Millisecond
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix LIFTPLAN_ and underscore-separated
// paths:
//
//	LIFTPLAN_SERVER_HOST, LIFTPLAN_SERVER_PORT,
//	LIFTPLAN_DB_HOST, LIFTPLAN_DB_PORT, LIFTPLAN_DB_NAME,
//	LIFTPLAN_DB_USER, LIFTPLAN_DB_PASSWORD, LIFTPLAN_DB_SSLMODE,
//	LIFTPLAN_AUTH_API_KEY, LIFTPLAN_TS_HOSTNAME, LIFTPLAN_TS_STATE_DIR,
//	LIFTPLAN_AUTOSAVE_QUIET_MS
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTPLAN_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTPLAN_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTPLAN_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIFTPLAN_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTPLAN_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIFTPLAN_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIFTPLAN_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIFTPLAN_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTPLAN_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTPLAN_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("LIFTPLAN_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("LIFTPLAN_AUTOSAVE_QUIET_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Autosave.QuietMS = ms
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
