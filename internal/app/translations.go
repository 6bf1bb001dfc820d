package app

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale answers any locale without a table of its own.
const DefaultLocale = "en"

//go:embed locales/*.json
var localeFiles embed.FS

// Translations holds the static per-locale UI strings. It is read-only after load.
type Translations struct {
	tables  map[string]map[string]string
	locales []string
	matcher language.Matcher
}

// LoadTranslations reads the embedded locale tables. The default locale must exist.
func LoadTranslations() (*Translations, error) {
	entries, err := localeFiles.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	t := &Translations{tables: map[string]map[string]string{}}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		b, err := localeFiles.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", e.Name(), err)
		}
		var table map[string]string
		if err := json.Unmarshal(b, &table); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", e.Name(), err)
		}
		t.tables[strings.TrimSuffix(e.Name(), ".json")] = table
	}
	if _, ok := t.tables[DefaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q missing", DefaultLocale)
	}

	// default first: the matcher falls back to its first tag
	t.locales = append(t.locales, DefaultLocale)
	for l := range t.tables {
		if l != DefaultLocale {
			t.locales = append(t.locales, l)
		}
	}
	sort.Strings(t.locales[1:])

	tags := make([]language.Tag, 0, len(t.locales))
	for _, l := range t.locales {
		tags = append(tags, language.Make(l))
	}
	t.matcher = language.NewMatcher(tags)
	return t, nil
}

// Locales lists the locales with a table, default first.
func (t *Translations) Locales() []string {
	return append([]string(nil), t.locales...)
}

// Resolve maps a requested locale to a supported one. Exact names win; otherwise
// BCP 47 matching picks a close locale (bn-BD -> bn). Anything else is the default.
func (t *Translations) Resolve(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if _, ok := t.tables[locale]; ok {
		return locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultLocale
	}
	_, idx, conf := t.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(t.locales) {
		return DefaultLocale
	}
	return t.locales[idx]
}

// Lookup returns the resolved locale and a copy of its full table.
func (t *Translations) Lookup(locale string) (string, map[string]string) {
	resolved := t.Resolve(locale)
	src := t.tables[resolved]
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return resolved, out
}
