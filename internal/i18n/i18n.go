// Package i18n is the translation store: message key to formatted
// string template, per language. Locale files are embedded YAML, one
// file per language code. Lookups fall back to the default language
// and, as a last resort, to the key itself so a missing translation
// never turns into an empty reply.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Bundle holds all loaded locales.
type Bundle struct {
	fallback string
	messages map[string]map[string]string
}

// Load parses every embedded locale file. fallbackLang must be one of
// the embedded languages.
func Load(fallbackLang string) (*Bundle, error) {
	files, err := fs.Glob(localeFS, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("i18n: glob locales: %w", err)
	}

	b := &Bundle{fallback: fallbackLang, messages: make(map[string]map[string]string)}
	for _, file := range files {
		data, err := localeFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", file, err)
		}
		var msgs map[string]string
		if err := yaml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", file, err)
		}
		lang := strings.TrimSuffix(path.Base(file), ".yaml")
		b.messages[lang] = msgs
	}

	if _, ok := b.messages[fallbackLang]; !ok {
		return nil, fmt.Errorf("i18n: no locale for fallback language %q", fallbackLang)
	}
	return b, nil
}

// Has reports whether a locale is loaded for the language.
func (b *Bundle) Has(lang string) bool {
	_, ok := b.messages[lang]
	return ok
}

// T returns the raw template for key in the given language, falling
// back to the default language, then to the key itself.
func (b *Bundle) T(lang, key string) string {
	if msgs, ok := b.messages[lang]; ok {
		if s, ok := msgs[key]; ok {
			return s
		}
	}
	if s, ok := b.messages[b.fallback][key]; ok {
		return s
	}
	return key
}

// Tf formats the template for key with fmt.Sprintf.
func (b *Bundle) Tf(lang, key string, args ...any) string {
	return fmt.Sprintf(b.T(lang, key), args...)
}
