package i18n

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocaleKey is the locale every lookup falls back to.
const DefaultLocaleKey = "en-US"

// Locale describes one selectable lobby language.
type Locale struct {
	// Key identifies the locale and names its translation file (e.g. "de-DE").
	Key string
	// Name is the short name used in backend options and URLs.
	Name string
	// Language is the ISO 639-1 code used for the language-level fallback file.
	Language string
	// Locale is the BCP 47 tag reported to the backends.
	Locale        string
	Flag          string
	LangNative    string
	CountryNative string
}

var locales = []Locale{
	{Key: "en-US", Name: "international", Language: "en", Locale: "en-US", Flag: "us", LangNative: "English", CountryNative: "International"},
	{Key: "en-GB", Name: "uk", Language: "en", Locale: "en-GB", Flag: "gb", LangNative: "English", CountryNative: "United Kingdom"},
	{Key: "de-DE", Name: "de", Language: "de", Locale: "de-DE", Flag: "de", LangNative: "Deutsch", CountryNative: "Deutschland"},
	{Key: "fr-FR", Name: "fr", Language: "fr", Locale: "fr-FR", Flag: "fr", LangNative: "Français", CountryNative: "France"},
	{Key: "it-IT", Name: "it", Language: "it", Locale: "it-IT", Flag: "it", LangNative: "Italiano", CountryNative: "Italia"},
	{Key: "es-ES", Name: "es", Language: "es", Locale: "es-ES", Flag: "es", LangNative: "Español", CountryNative: "España"},
	{Key: "pt-BR", Name: "br", Language: "pt", Locale: "pt-BR", Flag: "br", LangNative: "Português", CountryNative: "Brasil"},
	{Key: "nl-NL", Name: "nl", Language: "nl", Locale: "nl-NL", Flag: "nl", LangNative: "Nederlands", CountryNative: "Nederland"},
	{Key: "pl-PL", Name: "pl", Language: "pl", Locale: "pl-PL", Flag: "pl", LangNative: "Polski", CountryNative: "Polska"},
	{Key: "cs-CZ", Name: "cz", Language: "cs", Locale: "cs-CZ", Flag: "cz", LangNative: "Čeština", CountryNative: "Česká republika"},
	{Key: "ru-RU", Name: "ru", Language: "ru", Locale: "ru-RU", Flag: "ru", LangNative: "Русский", CountryNative: "Россия"},
	{Key: "tr-TR", Name: "tr", Language: "tr", Locale: "tr-TR", Flag: "tr", LangNative: "Türkçe", CountryNative: "Türkiye"},
	{Key: "ar-AE", Name: "arabia", Language: "ar", Locale: "ar-AE", Flag: "ae", LangNative: "العربية", CountryNative: "العالم العربي"},
	{Key: "ja-JP", Name: "jp", Language: "ja", Locale: "ja-JP", Flag: "jp", LangNative: "日本語", CountryNative: "日本"},
	{Key: "zh-TW", Name: "tw", Language: "zh", Locale: "zh-TW", Flag: "tw", LangNative: "中文", CountryNative: "台灣"},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, 0, len(locales))
	for _, l := range locales {
		tags = append(tags, language.MustParse(l.Key))
	}
	return language.NewMatcher(tags)
}()

// Lookup returns the locale with the given key. The key comparison ignores case
// and accepts "_" as separator.
func Lookup(key string) (Locale, bool) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "_", "-")
	for _, l := range locales {
		if strings.EqualFold(l.Key, key) {
			return l, true
		}
	}
	return Locale{}, false
}

// Default returns the fallback locale.
func Default() Locale {
	l, _ := Lookup(DefaultLocaleKey)
	return l
}

// All returns the known locales ordered by key.
func All() []Locale {
	out := make([]Locale, len(locales))
	copy(out, locales)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Match picks the best known locale for an arbitrary language tag or
// Accept-Language style list ("de-AT", "fr;q=0.9, en"). Unparsable or
// unsupported input yields the default locale.
func Match(tag string) Locale {
	if l, ok := Lookup(tag); ok {
		return l
	}
	tags, _, err := language.ParseAcceptLanguage(tag)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default()
	}
	return locales[index]
}

// Search returns the locales whose key, short name, native language or
// native country contains query, ignoring case. An empty query matches
// every locale.
func Search(query string) []Locale {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Locale
	for _, l := range All() {
		if query == "" ||
			strings.Contains(strings.ToLower(l.Key), query) ||
			strings.Contains(l.Name, query) ||
			strings.Contains(strings.ToLower(l.LangNative), query) ||
			strings.Contains(strings.ToLower(l.CountryNative), query) {
			out = append(out, l)
		}
	}
	return out
}
