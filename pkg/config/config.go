// Package config loads the configuration of the experimenter CLI from a file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/smartcontractkit/experimenter-go/experimenter"
	"github.com/smartcontractkit/experimenter-go/pkg/logger"
)

// APIConfig is the configuration of the Experimenter API endpoints.
type APIConfig struct {
	V1URL   string        `mapstructure:"v1_url" yaml:"v1_url"`   // The legacy experiments endpoint
	V6URL   string        `mapstructure:"v6_url" yaml:"v6_url"`   // The nimbus experiments endpoint
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"` // Timeout of a single HTTP request
}

// RetryConfig is the configuration of the retry policy applied to each endpoint.
type RetryConfig struct {
	MaxAttempts uint          `mapstructure:"max_attempts" yaml:"max_attempts"` // Total attempts, including the first one
	Delay       time.Duration `mapstructure:"delay" yaml:"delay"`               // Pause between two attempts
}

// LogConfig is the configuration of the logger.
type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`       // debug, info, warn or error
	Encoding string `mapstructure:"encoding" yaml:"encoding"` // json or console
}

// Config wraps the entire configuration of the experimenter CLI.
type Config struct {
	API   APIConfig   `mapstructure:"api" yaml:"api"`
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
// Values that are set nowhere take their defaults.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	// If the config file exists, we continue to read it, otherwise we fallback to using
	// environment variables
	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
		}
	}

	return unmarshal(v)
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	return unmarshal(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	// Bind environment variables
	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration can be used to build a client and a logger.
func (c *Config) Validate() error {
	var errs []error
	if c.API.V1URL == "" {
		errs = append(errs, errors.New("api.v1_url is required"))
	}
	if c.API.V6URL == "" {
		errs = append(errs, errors.New("api.v6_url is required"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout))
	}
	if c.Retry.MaxAttempts == 0 {
		errs = append(errs, errors.New("retry.max_attempts must be at least 1"))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, fmt.Errorf("retry.delay must not be negative, got %s", c.Retry.Delay))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Encoding != logger.EncodingJSON && c.Log.Encoding != logger.EncodingConsole {
		errs = append(errs, fmt.Errorf("log.encoding must be %q or %q, got %q",
			logger.EncodingJSON, logger.EncodingConsole, c.Log.Encoding))
	}

	return errors.Join(errs...)
}

// Logger builds the logger described by the configuration.
func (c *Config) Logger() (logger.Logger, error) {
	lvl, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	lcfg := logger.Config{Level: lvl, Encoding: c.Log.Encoding}

	return lcfg.New()
}

// ClientOptions converts the configuration to experimenter client options.
func (c *Config) ClientOptions() []experimenter.Option {
	return []experimenter.Option{
		experimenter.WithV1URL(c.API.V1URL),
		experimenter.WithV6URL(c.API.V6URL),
		experimenter.WithHTTPClient(&http.Client{Timeout: c.API.Timeout}),
		experimenter.WithRetryPolicy(experimenter.RetryPolicy{
			MaxAttempts: c.Retry.MaxAttempts,
			Delay:       c.Retry.Delay,
		}),
	}
}

var (
	// defaults are the values used for keys that are neither in the config file nor in the
	// environment.
	defaults = map[string]any{
		"api.v1_url":         experimenter.DefaultV1URL,
		"api.v6_url":         experimenter.DefaultV6URL,
		"api.timeout":        experimenter.DefaultTimeout,
		"retry.max_attempts": experimenter.DefaultRetryPolicy().MaxAttempts,
		"retry.delay":        experimenter.DefaultRetryPolicy().Delay,
		"log.level":          "info",
		"log.encoding":       logger.EncodingJSON,
	}

	// envBindings defines how environment variables map to configuration keys used by Viper.
	// Each entry maps a config key (as used in the struct, e.g. "api.v1_url") to a list of
	// environment variable names that can provide its value. The first one that is set wins.
	envBindings = map[string][]string{
		"api.v1_url":         {"EXPERIMENTER_API_V1_URL"},
		"api.v6_url":         {"EXPERIMENTER_API_V6_URL"},
		"api.timeout":        {"EXPERIMENTER_API_TIMEOUT"},
		"retry.max_attempts": {"EXPERIMENTER_RETRY_MAX_ATTEMPTS"},
		"retry.delay":        {"EXPERIMENTER_RETRY_DELAY"},
		"log.level":          {"EXPERIMENTER_LOG_LEVEL"},
		"log.encoding":       {"EXPERIMENTER_LOG_ENCODING"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		// Prepend the env key to the start of the arguments
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
