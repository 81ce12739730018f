// Package i18n provides the lobby locale table and the translation catalog.
//
// Translations are flat JSON objects mapping keys to texts, one file per
// locale key ("de-DE.json") or language ("de.json"). Texts may contain
// {name} placeholders that Translate fills from its params.
package i18n
