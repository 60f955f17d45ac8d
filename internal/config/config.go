// Package config loads runtime settings from the environment and an
// optional config file. Settings are fixed at process startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the runtime settings for job supervision and the
// coordination server client.
type Config struct {
	JobsRoot       string `yaml:"jobs_root" mapstructure:"jobs_root"`
	IdleTimeoutSec int    `yaml:"idle_timeout_sec" mapstructure:"idle_timeout_sec"`
	CommsServer    string `yaml:"comms_server" mapstructure:"comms_server"`
	RefreshSec     int    `yaml:"refresh_sec" mapstructure:"refresh_sec"`
}

// IdleTimeout returns the idle threshold as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSec) * time.Second
}

// Refresh returns the dashboard poll interval as a duration.
func (c *Config) Refresh() time.Duration {
	return time.Duration(c.RefreshSec) * time.Second
}

// DefaultJobsRoot returns the per-user fallback jobs directory.
func DefaultJobsRoot() string {
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	return filepath.Join(os.TempDir(), "agent_jobs", user)
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agentjob")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "agentjob")
}

// Load reads configuration from defaults, an optional config.yaml, and
// the process environment. Environment values win.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("jobs_root", DefaultJobsRoot())
	v.SetDefault("idle_timeout_sec", 300)
	v.SetDefault("comms_server", "http://localhost:4000")
	v.SetDefault("refresh_sec", 2)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found; defaults and env apply.
	}

	v.BindEnv("jobs_root", "AGENT_JOBS_ROOT")
	v.BindEnv("idle_timeout_sec", "IDLE_TIMEOUT_SEC")
	v.BindEnv("comms_server", "CLAUDE_COMMS_SERVER")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.JobsRoot == "" {
		return fmt.Errorf("config: jobs_root is required")
	}
	if c.IdleTimeoutSec <= 0 {
		return fmt.Errorf("config: idle_timeout_sec must be positive, got %d", c.IdleTimeoutSec)
	}
	if c.RefreshSec <= 0 {
		return fmt.Errorf("config: refresh_sec must be positive, got %d", c.RefreshSec)
	}
	return nil
}
