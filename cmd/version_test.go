package cmd

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCmd(t *testing.T) {
	versionCmd := newVersionCmd()
	assert.Equal(t, "version", versionCmd.Use)
	assert.NotEmpty(t, versionCmd.Short)
	assert.NotEmpty(t, versionCmd.Long)
	assert.NotNil(t, versionCmd.RunE)
}

func TestVersionCommandExecution(t *testing.T) {
	originalVersion, originalFormat := rootCmd.Version, outputFormat
	defer func() { rootCmd.Version, outputFormat = originalVersion, originalFormat }()
	rootCmd.Version = "1.2.3-test"
	outputFormat = "table"

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	require.NoError(t, versionCmd.RunE(versionCmd, nil))

	assert.True(t, strings.HasPrefix(buf.String(), "lobbyctl version 1.2.3-test ("))
	assert.Contains(t, buf.String(), runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionCommandJSON(t *testing.T) {
	originalVersion, originalFormat := rootCmd.Version, outputFormat
	defer func() { rootCmd.Version, outputFormat = originalVersion, originalFormat }()
	rootCmd.Version = "2.0.0"
	outputFormat = "json"

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	require.NoError(t, versionCmd.RunE(versionCmd, nil))

	var info versionInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.Equal(t, "2.0.0", info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}
