package config

import "time"

// Config is the top-level configuration structure for lobbyctl.
type Config struct {
	Lobby    LobbyConfig    `yaml:"lobby"`
	Identity IdentityConfig `yaml:"identity"`
	Captcha  CaptchaConfig  `yaml:"captcha"`
	Apple    SocialConfig   `yaml:"apple"`
	Facebook SocialConfig   `yaml:"facebook"`
	Google   SocialConfig   `yaml:"google"`

	// EnableDev marks a local development setup.
	EnableDev bool `yaml:"enableDev,omitempty"`

	// Locale is the locale key used for translations and for the locale
	// reported to the backends (e.g. "en-US").
	Locale string `yaml:"locale,omitempty"`

	// LocalisationDir holds the <locale>.json translation files.
	LocalisationDir string `yaml:"localisationDir,omitempty"`

	// HTTPTimeout bounds every backend request.
	HTTPTimeout time.Duration `yaml:"httpTimeout,omitempty"`

	// SessionTimeout bounds the silent session check.
	SessionTimeout time.Duration `yaml:"sessionTimeout,omitempty"`
}

// LobbyConfig describes the Lobby service.
type LobbyConfig struct {
	Host string `yaml:"host"`
}

// IdentityConfig describes the Identity service.
type IdentityConfig struct {
	Host     string `yaml:"host"`
	ClientID string `yaml:"clientId"`
}

// CaptchaConfig holds the captcha site keys.
type CaptchaConfig struct {
	V2 string `yaml:"v2,omitempty"`
	V3 string `yaml:"v3,omitempty"`
}

// SocialConfig holds the client id of a social login provider. An empty
// client id disables the provider.
type SocialConfig struct {
	ClientID string `yaml:"clientId,omitempty"`
}

// SocialProviders returns the names of the providers that have a client id.
func (c *Config) SocialProviders() []string {
	var providers []string
	if c.Google.ClientID != "" {
		providers = append(providers, "google")
	}
	if c.Facebook.ClientID != "" {
		providers = append(providers, "facebook")
	}
	if c.Apple.ClientID != "" {
		providers = append(providers, "apple")
	}
	return providers
}

// SocialClientID returns the configured client id for a provider.
func (c *Config) SocialClientID(provider string) string {
	switch provider {
	case "google":
		return c.Google.ClientID
	case "facebook":
		return c.Facebook.ClientID
	case "apple":
		return c.Apple.ClientID
	}
	return ""
}
