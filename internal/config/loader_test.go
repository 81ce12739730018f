package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir, false)
	require.NoError(t, err)

	def := GetDefaultConfig()
	assert.Equal(t, def.Lobby, cfg.Lobby)
	assert.Equal(t, def.Identity, cfg.Identity)
	assert.Equal(t, DefaultLocale, cfg.Locale)
	assert.Equal(t, DefaultSessionTimeout, cfg.SessionTimeout)
	assert.Equal(t, filepath.Join(dir, "localisation"), cfg.LocalisationDir)
}

func TestLoadConfig_Dev(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir(), true)
	require.NoError(t, err)

	assert.True(t, cfg.EnableDev)
	assert.Equal(t, "http://localhost:8080", cfg.Lobby.Host)
	assert.Equal(t, "travian-lobby", cfg.Identity.ClientID)
	assert.Empty(t, cfg.SocialProviders())
}

func TestLoadConfig_FileOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
lobby:
  host: https://lobby.example.com
identity:
  host: https://identity.example.com
  clientId: abc
facebook:
  clientId: ""
locale: de-DE
sessionTimeout: 5s
`)

	cfg, err := LoadConfig(dir, false)
	require.NoError(t, err)

	assert.Equal(t, "https://lobby.example.com", cfg.Lobby.Host)
	assert.Equal(t, "https://identity.example.com", cfg.Identity.Host)
	assert.Equal(t, "abc", cfg.Identity.ClientID)
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.Equal(t, 5*time.Second, cfg.SessionTimeout)
	assert.Equal(t, []string{"google", "apple"}, cfg.SocialProviders())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv(envLobbyHost, "https://env-lobby.example.com")
	t.Setenv(envLocale, "fr-FR")

	cfg, err := LoadConfig(t.TempDir(), false)
	require.NoError(t, err)

	assert.Equal(t, "https://env-lobby.example.com", cfg.Lobby.Host)
	assert.Equal(t, "fr-FR", cfg.Locale)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "lobby: [unclosed")

	_, err := LoadConfig(dir, false)
	require.Error(t, err)

	var cfgErr ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "parse", cfgErr.ErrorType)
	assert.Contains(t, cfgErr.DetailedError(), "Suggestions")
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
lobby:
  host: not-a-url
identity:
  host: ftp://identity.example.com
  clientId: ""
`)

	_, err := LoadConfig(dir, false)
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 3)
}

func TestGetDefaultConfigPath(t *testing.T) {
	original := osUserHomeDir
	defer func() { osUserHomeDir = original }()

	osUserHomeDir = func() (string, error) { return "/home/player", nil }
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/player", ".config/lobbyctl"), path)

	osUserHomeDir = func() (string, error) { return "", errors.New("no home") }
	_, err = GetDefaultConfigPath()
	assert.Error(t, err)
}

func TestSocialClientID(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t, cfg.Google.ClientID, cfg.SocialClientID("google"))
	assert.Equal(t, "", cfg.SocialClientID("myspace"))
}
