// Package conf loads and validates process configuration. Values come from
// an optional YAML file plus environment overrides; credentials are read
// once at startup and treated as immutable for the process lifetime.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither the config file nor the environment
// provides a value.
const (
	DefaultGraphQLEndpoint   = "https://api.newrelic.com/graphql"
	DefaultRequestTimeout    = 12 * time.Second
	DefaultMaxPages          = 50
	DefaultEnrichConcurrency = 5
	DefaultPort              = 3000
)

// Settings holds the full process configuration.
type Settings struct {
	// APIKey authenticates against the NerdGraph API. Required.
	APIKey string `mapstructure:"api_key"`
	// AccountID selects the New Relic account to query. Required.
	AccountID string `mapstructure:"account_id"`
	// GraphQLEndpoint is the NerdGraph URL. Overridable for testing.
	GraphQLEndpoint string `mapstructure:"graphql_endpoint"`

	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// RequestTimeout bounds each individual NerdGraph call.
	RequestTimeout Duration `mapstructure:"request_timeout"`
	// MaxPages caps cursor-driven pagination per collection.
	MaxPages int `mapstructure:"max_pages"`
	// EnrichConcurrency caps simultaneous in-flight entity resolutions.
	EnrichConcurrency int `mapstructure:"enrich_concurrency"`

	LogLevel string `mapstructure:"log_level"`
	// StaticDir is the directory of dashboard assets served at /.
	StaticDir string `mapstructure:"static_dir"`
}

// Load reads configuration from the given file path (optional; empty means
// search the working directory and /etc/alertlens for alertlens.yaml) and
// the environment. ALERTLENS_* variables override file values; the legacy
// NEW_RELIC_API_KEY and ACCOUNT_ID variables are honored directly.
func Load(path string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("graphql_endpoint", DefaultGraphQLEndpoint)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("request_timeout", DefaultRequestTimeout.String())
	v.SetDefault("max_pages", DefaultMaxPages)
	v.SetDefault("enrich_concurrency", DefaultEnrichConcurrency)
	v.SetDefault("log_level", "info")
	v.SetDefault("static_dir", "public")

	v.SetEnvPrefix("ALERTLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Credential variables shared with the original dashboard deployment.
	if err := v.BindEnv("api_key", "ALERTLENS_API_KEY", "NEW_RELIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind api_key: %w", err)
	}
	if err := v.BindEnv("account_id", "ALERTLENS_ACCOUNT_ID", "ACCOUNT_ID"); err != nil {
		return nil, fmt.Errorf("bind account_id: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("alertlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/alertlens")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when the environment carries the settings;
		// an explicitly named file must exist.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks required fields and normalizes zero values to defaults.
func (s *Settings) Validate() error {
	if s.APIKey == "" {
		return fmt.Errorf("api_key is required (set NEW_RELIC_API_KEY)")
	}
	if s.AccountID == "" {
		return fmt.Errorf("account_id is required (set ACCOUNT_ID)")
	}
	if s.GraphQLEndpoint == "" {
		s.GraphQLEndpoint = DefaultGraphQLEndpoint
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if s.MaxPages <= 0 {
		s.MaxPages = DefaultMaxPages
	}
	if s.EnrichConcurrency <= 0 {
		s.EnrichConcurrency = DefaultEnrichConcurrency
	}
	if s.Port <= 0 || s.Port > 65535 {
		s.Port = DefaultPort
	}
	return nil
}

// Addr returns the host:port listen address.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
