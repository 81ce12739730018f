// Package config defines the lobbyctl configuration and loads it from disk.
//
// The configuration names the two backend services the client talks to
// (the Identity service and the Lobby service), the OAuth client id used
// against Identity, captcha site keys and social provider client ids.
//
// A Config is loaded once at startup and then passed by pointer to the
// components that need it. It is never mutated after loading; switching
// environments means loading a new value.
//
// Configuration is read from <config-path>/config.yaml. When the file does not
// exist the production defaults are used. Environment variables override the
// file:
//
//	LOBBYCTL_LOBBY_HOST     base URL of the Lobby service
//	LOBBYCTL_IDENTITY_HOST  base URL of the Identity service
//	LOBBYCTL_LOCALE         locale key, e.g. en-US
package config
