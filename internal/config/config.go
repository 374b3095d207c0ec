package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/superclaude-org/superclaude/internal/branding"
	"github.com/superclaude-org/superclaude/internal/platform"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeySkipUpdateCheck    = "skip_update_check"
	KeyAutoUpdate         = "auto_update"
	KeyChannel            = "channel"
	KeyPyPIURL            = "pypi_url"
	KeyNPMRegistryURL     = "npm_registry_url"
	KeyUpdateCheckTimeout = "update_check_timeout"
	KeyLogLevel           = "log_level"
)

// Registry channels.
const (
	ChannelPyPI = "pypi"
	ChannelNPM  = "npm"
)

// Default values applied by Load.
const (
	DefaultPyPIURL            = "https://pypi.org"
	DefaultNPMRegistryURL     = "https://registry.npmjs.org"
	DefaultUpdateCheckTimeout = 2 * time.Second
	DefaultLogLevel           = "warn"
)

// ErrUnknownKey is returned by Validate for keys outside Keys().
var ErrUnknownKey = errors.New("unknown config key")

// Keys returns the recognized configuration keys.
func Keys() []string {
	return []string{
		KeySkipUpdateCheck,
		KeyAutoUpdate,
		KeyChannel,
		KeyPyPIURL,
		KeyNPMRegistryURL,
		KeyUpdateCheckTimeout,
		KeyLogLevel,
	}
}

// Validate checks that value is acceptable for key.
func Validate(key, value string) error {
	switch key {
	case KeySkipUpdateCheck, KeyAutoUpdate:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
	case KeyChannel:
		if value != ChannelPyPI && value != ChannelNPM {
			return fmt.Errorf("%s must be %q or %q, got %q", key, ChannelPyPI, ChannelNPM, value)
		}
	case KeyPyPIURL, KeyNPMRegistryURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", key, value)
		}
	case KeyUpdateCheckTimeout:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%s must be a positive duration such as 2s, got %q", key, value)
		}
	case KeyLogLevel:
		if _, err := zerolog.ParseLevel(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	return nil
}

// Settings is a typed snapshot of the loaded configuration.
type Settings struct {
	SkipUpdateCheck    bool
	AutoUpdate         bool
	Channel            string
	PyPIURL            string
	NPMRegistryURL     string
	UpdateCheckTimeout time.Duration
	LogLevel           string
}

// Dir returns the path to the state directory (~/.superclaude/).
// SUPERCLAUDE_HOME overrides it.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.superclaude/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the state directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, platform.DirPermNormal); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeySkipUpdateCheck, false)
	viper.SetDefault(KeyAutoUpdate, false)
	viper.SetDefault(KeyChannel, ChannelPyPI)
	viper.SetDefault(KeyPyPIURL, DefaultPyPIURL)
	viper.SetDefault(KeyNPMRegistryURL, DefaultNPMRegistryURL)
	viper.SetDefault(KeyUpdateCheckTimeout, DefaultUpdateCheckTimeout)
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Current returns the loaded settings. Call Load first.
func Current() Settings {
	channel := strings.ToLower(viper.GetString(KeyChannel))
	if channel != ChannelNPM {
		channel = ChannelPyPI
	}

	timeout := viper.GetDuration(KeyUpdateCheckTimeout)
	if timeout <= 0 {
		timeout = DefaultUpdateCheckTimeout
	}

	return Settings{
		SkipUpdateCheck:    viper.GetBool(KeySkipUpdateCheck),
		AutoUpdate:         viper.GetBool(KeyAutoUpdate),
		Channel:            channel,
		PyPIURL:            viper.GetString(KeyPyPIURL),
		NPMRegistryURL:     viper.GetString(KeyNPMRegistryURL),
		UpdateCheckTimeout: timeout,
		LogLevel:           viper.GetString(KeyLogLevel),
	}
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// AutoUpdateFromEnv reports whether SUPERCLAUDE_AUTO_UPDATE holds a truthy
// value (1, true, yes, on; case-insensitive).
func AutoUpdateFromEnv() bool {
	return Truthy(os.Getenv(branding.EnvVar(KeyAutoUpdate)))
}

// Truthy interprets boolean-ish strings.
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}
