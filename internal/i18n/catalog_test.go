package i18n_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobbyctl/internal/i18n"
)

func writeTable(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestCatalogFallbackChain(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "en-US.json", `{"Hello":"Hello {name}"}`)
	writeTable(t, dir, "de.json", `{"Hello":"Hallo {name}"}`)

	c := i18n.NewCatalog(dir, "de-DE")
	assert.Equal(t, "de-DE", c.Locale().Key)
	assert.Equal(t, filepath.Join(dir, "de.json"), c.Source())
	assert.Equal(t, "Hallo Ada", c.Translate("Hello", map[string]string{"name": "Ada"}))

	require.NoError(t, c.Reload("fr-FR"))
	assert.Equal(t, filepath.Join(dir, "en-US.json"), c.Source())
	assert.Equal(t, "Hello Ada", c.Translate("Hello", map[string]string{"name": "Ada"}))
}

func TestCatalogMissingKeyReturnsKey(t *testing.T) {
	c := i18n.NewCatalog(t.TempDir(), "en-US")
	assert.Equal(t, "Welcome {name}", c.Translate("Welcome {name}", nil))
	assert.Equal(t, "Welcome Bo", c.Translate("Welcome {name}", map[string]string{"name": "Bo"}))
	assert.False(t, c.Has("Welcome {name}"))
}

func TestCatalogReplacesEveryOccurrence(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "en-US.json", `{"twice":"{x} and {x}"}`)
	c := i18n.NewCatalog(dir, "en-US")
	assert.Equal(t, "1 and 1", c.Translate("twice", map[string]string{"x": "1"}))
}

func TestCatalogFailedReloadKeepsStrings(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "en-US.json", `{"k":"v"}`)
	c := i18n.NewCatalog(dir, "en-US")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "en-US.json"), []byte("{broken"), 0o600))
	err := c.Reload("it-IT")
	require.ErrorIs(t, err, i18n.ErrNoTranslations)
	assert.Equal(t, "v", c.Translate("k", nil))
	assert.Equal(t, "en-US", c.Locale().Key)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "en-US.json", `{"k":"old"}`)
	c := i18n.NewCatalog(dir, "en-US")

	w := i18n.NewWatcher(c)
	w.SetDebounce(10 * time.Millisecond)
	reloaded := make(chan error, 4)
	w.OnReload = func(err error) { reloaded <- err }
	require.NoError(t, w.Start())
	defer w.Stop()

	writeTable(t, dir, "en-US.json", `{"k":"new"}`)

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}
	assert.Eventually(t, func() bool { return c.Translate("k", nil) == "new" }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeTable(t, dir, "en-US.json", `{"k":"v"}`)
	c := i18n.NewCatalog(dir, "en-US")

	w := i18n.NewWatcher(c)
	w.SetDebounce(10 * time.Millisecond)
	reloaded := make(chan error, 4)
	w.OnReload = func(err error) { reloaded <- err }
	require.NoError(t, w.Start())
	defer w.Stop()

	writeTable(t, dir, "ja-JP.json", `{"k":"x"}`)

	select {
	case <-reloaded:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, "v", c.Translate("k", nil))
}
