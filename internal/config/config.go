// Package config provides configuration loading and validation for the CLI.
//
// Values are resolved with this precedence: command-line flags, ROLECALL_* environment
// variables, the config file, then defaults.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/KhushiMandaliya2/RoleCall/internal/api"
	"github.com/KhushiMandaliya2/RoleCall/internal/identity"
	"github.com/KhushiMandaliya2/RoleCall/internal/metrics"
)

// EnvPrefix prefixes every environment variable, e.g. ROLECALL_BASE_URL.
const EnvPrefix = "ROLECALL"

// DefaultBaseURL is where the job board API listens in development.
const DefaultBaseURL = "http://localhost:8000"

// Config is the CLI configuration.
type Config struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"` // Job board API root
	Token   string `mapstructure:"token"`                            // Bearer token sent with every request
	UserID  string `mapstructure:"user_id"`                          // Acting user; overrides the token's claim
	// TokenSecret verifies Token's signature when set.
	TokenSecret string `mapstructure:"token_secret"`

	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	UserAgent         string        `mapstructure:"user_agent"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`
	NoColor   bool   `mapstructure:"no_color"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   api.DefaultTimeout,
		UserAgent: api.DefaultUserAgent,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"base-url":            "base_url",
	"token":               "token",
	"user":                "user_id",
	"token-secret":        "token_secret",
	"timeout":             "timeout",
	"requests-per-second": "requests_per_second",
	"user-agent":          "user_agent",
	"log-level":           "log_level",
	"log-format":          "log_format",
	"no-color":            "no_color",
}

// RegisterFlags adds the configuration flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Defaults()
	flags.String("base-url", d.BaseURL, "Job board API base URL")
	flags.String("token", "", "Bearer token for the API")
	flags.String("user", "", "Acting user ID (defaults to the token's user_id claim)")
	flags.String("token-secret", "", "Secret used to verify the token signature")
	flags.Duration("timeout", d.Timeout, "Per-request timeout")
	flags.Float64("requests-per-second", 0, "Maximum outgoing requests per second (0 = unlimited)")
	flags.String("user-agent", d.UserAgent, "User-Agent header")
	flags.String("log-level", d.LogLevel, "Log level: debug, info, warn, error")
	flags.String("log-format", d.LogFormat, "Log format: text or json")
	flags.Bool("no-color", false, "Disable colored output")
}

// Load resolves the configuration from path (optional), the environment and flags (optional).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("token", d.Token)
	v.SetDefault("user_id", d.UserID)
	v.SetDefault("token_secret", d.TokenSecret)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("requests_per_second", d.RequestsPerSecond)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("no_color", d.NoColor)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.UserID = strings.TrimSpace(c.UserID)
	c.Token = strings.TrimSpace(c.Token)
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// Identity resolves the acting user. An explicit user ID wins, then the token's claims; with
// neither the user is logged out.
func (c *Config) Identity() (identity.Identity, error) {
	if c.UserID != "" {
		return identity.Present(c.UserID), nil
	}
	if c.Token != "" {
		return identity.FromToken(c.Token, []byte(c.TokenSecret))
	}
	return identity.None(), nil
}

// APIOptions returns client options for this configuration.
func (c *Config) APIOptions(logger *slog.Logger, recorder metrics.Recorder) *api.Options {
	return &api.Options{
		Timeout:           c.Timeout,
		UserAgent:         c.UserAgent,
		Token:             c.Token,
		RequestsPerSecond: c.RequestsPerSecond,
		Logger:            logger,
		Metrics:           recorder,
	}
}
