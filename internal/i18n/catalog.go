package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"lobbyctl/pkg/logging"
)

const subsystem = "I18n"

// ErrNoTranslations is returned when none of the candidate files could be loaded.
var ErrNoTranslations = errors.New("no translation file could be loaded")

// Catalog holds the flat key → text table of the active locale.
type Catalog struct {
	dir string

	mu      sync.RWMutex
	locale  Locale
	strings map[string]string
	source  string
}

// NewCatalog creates a catalog reading translation files from dir and loads
// the given locale key. A failed load leaves the catalog empty, in which
// case Translate returns keys unchanged.
func NewCatalog(dir, localeKey string) *Catalog {
	c := &Catalog{dir: dir, locale: Match(localeKey), strings: map[string]string{}}
	if err := c.Reload(localeKey); err != nil {
		logging.Warn(subsystem, "Translations unavailable for %s: %v", localeKey, err)
	}
	return c
}

// Locale returns the active locale.
func (c *Catalog) Locale() Locale {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locale
}

// Source returns the file the active strings were read from, or "" before
// anything was loaded.
func (c *Catalog) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// Dir returns the directory translation files are read from.
func (c *Catalog) Dir() string { return c.dir }

// Candidates lists the files tried for a locale, most specific first.
func (c *Catalog) Candidates(l Locale) []string {
	names := []string{l.Key + ".json"}
	if l.Language != "" {
		names = append(names, l.Language+".json")
	}
	names = append(names, DefaultLocaleKey+".json")

	seen := make(map[string]bool, len(names))
	paths := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		paths = append(paths, filepath.Join(c.dir, n))
	}
	return paths
}

// Reload switches the catalog to localeKey. Files are tried in the order
// of Candidates; if none loads, the previously loaded strings stay active
// and the error is returned.
func (c *Catalog) Reload(localeKey string) error {
	l := Match(localeKey)

	var errs []error
	for _, path := range c.Candidates(l) {
		table, err := readTable(path)
		if err != nil {
			logging.Debug(subsystem, "Skipping %s: %v", path, err)
			errs = append(errs, err)
			continue
		}

		c.mu.Lock()
		c.locale = l
		c.strings = table
		c.source = path
		c.mu.Unlock()

		logging.Info(subsystem, "Loaded %d strings for %s from %s", len(table), l.Key, path)
		return nil
	}
	return fmt.Errorf("%w for %s: %w", ErrNoTranslations, l.Key, errors.Join(errs...))
}

// Translate returns the text for key with every {name} placeholder replaced
// by params[name]. Unknown keys are returned as they are, with the same
// substitution applied.
func (c *Catalog) Translate(key string, params map[string]string) string {
	c.mu.RLock()
	text, ok := c.strings[key]
	c.mu.RUnlock()
	if !ok {
		text = key
	}
	for name, value := range params {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	return text
}

// Has reports whether key has a translation in the active table.
func (c *Catalog) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.strings[key]
	return ok
}

func readTable(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if table == nil {
		table = map[string]string{}
	}
	return table, nil
}
