package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lobbyctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/lobbyctl"
	configFileName = "config.yaml"

	envLobbyHost    = "LOBBYCTL_LOBBY_HOST"
	envIdentityHost = "LOBBYCTL_IDENTITY_HOST"
	envLocale       = "LOBBYCTL_LOCALE"
)

// osUserHomeDir is a test seam for os.UserHomeDir.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/lobbyctl.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// GetDefaultConfigPathOrPanic is GetDefaultConfigPath for flag defaults.
func GetDefaultConfigPathOrPanic() string {
	path, err := GetDefaultConfigPath()
	if err != nil {
		panic(err)
	}
	return path
}

// LoadConfig loads configuration from the given directory. When dev is true
// the local development defaults are used as the base instead of production.
func LoadConfig(configPath string, dev bool) (*Config, error) {
	cfg := GetDefaultConfig()
	if dev {
		cfg = GetDevConfig()
	}

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return nil, ConfigurationError{
			FilePath:  configFilePath,
			ErrorType: "io",
			Message:   err.Error(),
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, ConfigurationError{
				FilePath:    configFilePath,
				ErrorType:   "parse",
				Message:     err.Error(),
				Suggestions: []string{"Check the YAML syntax of " + configFileName},
			}
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	applyEnv(&cfg)
	applyFallbacks(&cfg, configPath)

	if errs := cfg.Validate(); errs.HasErrors() {
		return nil, errs
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envLobbyHost)); v != "" {
		cfg.Lobby.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(envIdentityHost)); v != "" {
		cfg.Identity.Host = v
	}
	if v := strings.TrimSpace(os.Getenv(envLocale)); v != "" {
		cfg.Locale = v
	}
}

func applyFallbacks(cfg *Config, configPath string) {
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	if cfg.LocalisationDir == "" {
		cfg.LocalisationDir = filepath.Join(configPath, "localisation")
	}
}

// SessionDir is where the persisted lobby session lives.
func SessionDir(configPath string) string {
	return filepath.Join(configPath, "session")
}
