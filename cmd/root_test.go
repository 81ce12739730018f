package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "lobbyctl", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
	assert.True(t, rootCmd.SilenceErrors)

	for _, name := range []string{"config-path", "dev", "locale", "debug", "log-level", "quiet", "output", "no-headers"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag %s", name)
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{Use: "test", Version: "1.0.0"}
	testCmd.SetVersionTemplate(`{{printf "lobbyctl version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())
	assert.Equal(t, "lobbyctl version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := map[string]*cobra.Command{}
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = c
	}

	expected := map[string][]string{
		"auth":          {"login", "logout", "status", "register", "activate", "resend", "social"},
		"password":      {"recover", "set"},
		"news":          {"list", "show"},
		"calendar":      {"list", "show", "next"},
		"notifications": {"list", "read"},
		"language":      {"list", "select"},
		"play":          nil,
		"gtl":           nil,
		"home":          nil,
		"open":          nil,
		"version":       nil,
		"self-update":   nil,
	}
	for name, subs := range expected {
		c, ok := found[name]
		if !assert.True(t, ok, "command %s is not registered", name) {
			continue
		}
		children := map[string]bool{}
		for _, sub := range c.Commands() {
			children[sub.Name()] = true
		}
		for _, sub := range subs {
			assert.True(t, children[sub], "command %s %s is not registered", name, sub)
		}
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	original := outputFormat
	defer func() { outputFormat = original }()

	outputFormat = "xml"
	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	assert.ErrorContains(t, err, `unsupported output format: "xml"`)
}
