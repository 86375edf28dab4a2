// Package config loads and validates the service configuration from
// an optional config file plus ACTUALBOARD_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"actualboard/internal/report"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	AMQP    AMQPConfig    `mapstructure:"amqp"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Report  ReportConfig  `mapstructure:"report"`
}

// ServerConfig holds the HTTP listener settings. TrustedProxies
// lists the CIDR ranges whose forwarding headers are believed when
// resolving client addresses.
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// BackendConfig selects where records come from.
type BackendConfig struct {
	Kind        string `mapstructure:"kind"`
	FixturesDir string `mapstructure:"fixtures_dir"`
	SnapshotDB  string `mapstructure:"snapshot_db"`
}

// AMQPConfig configures refresh event publishing. An empty URL
// disables publishing.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

// RefreshConfig drives the background refresh worker.
type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// ReportConfig mirrors the dashboard's report options. Account
// groups and payees are spelled by display name.
type ReportConfig struct {
	AccountGroups      map[string][]string `mapstructure:"account_groups"`
	AccountGroupSort   []string            `mapstructure:"acct_group_sort"`
	ExcludePayees      []string            `mapstructure:"filter_payees"`
	FilterFirstMonth   bool                `mapstructure:"filter_first_month"`
	FilterCurrentMonth bool                `mapstructure:"filter_current_month"`
}

// Load reads the configuration. The file is optional: the defaults
// plus environment overrides are enough to run the demo backend. Set
// ACTUALBOARD_CONFIG to point at a specific file, otherwise
// actualboard.yaml is searched for in ., ./config and
// $HOME/.config/actualboard.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("backend.kind", "memory")
	v.SetDefault("backend.fixtures_dir", "./data/fixtures")
	v.SetDefault("backend.snapshot_db", "./data/actualboard.db")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "actualboard")
	v.SetDefault("amqp.queue", "report_refreshes")
	v.SetDefault("refresh.interval", time.Hour)
	v.SetDefault("report.filter_first_month", false)
	v.SetDefault("report.filter_current_month", false)

	v.SetConfigName("actualboard")
	v.SetConfigType("yaml")
	if path := os.Getenv("ACTUALBOARD_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "actualboard"))
		}
	}

	v.SetEnvPrefix("ACTUALBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Only a missing file from the search paths is fine; an
		// explicitly named file must exist.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration and returns every problem found
// as one error.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Server.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Server.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	for _, cidr := range c.Server.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			problems = append(problems, fmt.Sprintf("invalid trusted proxy '%s': must be CIDR notation", cidr))
		}
	}

	validKinds := []string{"memory", "sqlite"}
	kindOK := false
	for _, kind := range validKinds {
		if c.Backend.Kind == kind {
			kindOK = true
			break
		}
	}
	if !kindOK {
		problems = append(problems, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend.Kind, validKinds))
	}
	if c.Backend.Kind == "sqlite" && c.Backend.SnapshotDB == "" {
		problems = append(problems, "snapshot database path cannot be empty when using the sqlite backend")
	}

	if c.AMQP.URL != "" {
		if parsed, err := url.Parse(c.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQP.URL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQP.Queue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.Refresh.Interval < time.Second {
		problems = append(problems, fmt.Sprintf("invalid refresh interval %v: must be at least 1 second", c.Refresh.Interval))
	} else if c.Refresh.Interval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.Refresh.Interval))
	}

	for name, members := range c.Report.AccountGroups {
		if strings.TrimSpace(name) == "" {
			problems = append(problems, "account group with an empty name")
		}
		if len(members) == 0 {
			problems = append(problems, fmt.Sprintf("account group '%s' has no member accounts", name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Options converts the report section into engine options.
func (c *Config) Options() report.Options {
	return report.Options{
		AccountGroups:   c.Report.AccountGroups,
		GroupSort:       c.Report.AccountGroupSort,
		ExcludePayees:   c.Report.ExcludePayees,
		TrimFirstPeriod: c.Report.FilterFirstMonth,
		TrimLastPeriod:  c.Report.FilterCurrentMonth,
	}
}
