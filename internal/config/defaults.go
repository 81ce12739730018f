package config

import "time"

const (
	// DefaultLocale is used when neither the config file nor the environment names one.
	DefaultLocale = "en-US"

	// DefaultHTTPTimeout bounds each backend request.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultSessionTimeout bounds the silent session check.
	DefaultSessionTimeout = 2 * time.Second
)

// GetDefaultConfig returns the production configuration.
func GetDefaultConfig() Config {
	return Config{
		Lobby: LobbyConfig{Host: "https://lobby.legends.travian.com"},
		Identity: IdentityConfig{
			Host:     "https://identity.service.legends.travian.info",
			ClientID: "HIaSfC2LNQ1yXOMuY7Pc2uIH3EqkAi26",
		},
		Captcha: CaptchaConfig{
			V2: "6LfD1kMUAAAAAENuJ7iNDd8OOgD3DjaQV4iPknlc",
			V3: "6Lfk8KEUAAAAAKV9GWukdEyal6qVjhUaj5Dfb6bP",
		},
		Apple:          SocialConfig{ClientID: "com.traviangames.travianlegendsmobile.auth"},
		Facebook:       SocialConfig{ClientID: "1377350219978614"},
		Google:         SocialConfig{ClientID: "574861169216-hr3f427db4mka3q78em4si5hgs666d52.apps.googleusercontent.com"},
		Locale:         DefaultLocale,
		HTTPTimeout:    DefaultHTTPTimeout,
		SessionTimeout: DefaultSessionTimeout,
	}
}

// GetDevConfig returns the local development configuration, where both
// services are served from one local host and social login is disabled.
func GetDevConfig() Config {
	return Config{
		Lobby: LobbyConfig{Host: "http://localhost:8080"},
		Identity: IdentityConfig{
			Host:     "http://localhost:8080",
			ClientID: "travian-lobby",
		},
		EnableDev:      true,
		Locale:         DefaultLocale,
		HTTPTimeout:    DefaultHTTPTimeout,
		SessionTimeout: DefaultSessionTimeout,
	}
}
