package i18n

import (
	"strings"
	"testing"
)

func TestLoad_EmbeddedLocales(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, lang := range []string{"en", "uk"} {
		if !b.Has(lang) {
			t.Errorf("Has(%q) = false, want true", lang)
		}
	}
	if b.Has("de") {
		t.Error("Has(\"de\") = true for a locale that is not embedded")
	}
}

func TestLoad_UnknownFallback(t *testing.T) {
	if _, err := Load("xx"); err == nil {
		t.Fatal("Load with unknown fallback language succeeded")
	}
}

func TestT_FallsBackToDefaultLanguage(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// "de" has no locale at all, so every key resolves via "en".
	if got, want := b.T("de", "saved"), b.T("en", "saved"); got != want {
		t.Errorf("T(de, saved) = %q, want %q", got, want)
	}
}

func TestT_UnknownKeyReturnsKey(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := b.T("en", "no_such_key"); got != "no_such_key" {
		t.Errorf("T(en, no_such_key) = %q, want the key itself", got)
	}
}

func TestTf_Formats(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := b.Tf("en", "lang_set", "UK")
	if !strings.Contains(got, "UK") {
		t.Errorf("Tf(lang_set, UK) = %q, does not contain the argument", got)
	}
}

func TestLocales_SameKeys(t *testing.T) {
	b, err := Load("en")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	en := b.messages["en"]
	uk := b.messages["uk"]
	for key := range en {
		if _, ok := uk[key]; !ok {
			t.Errorf("uk locale is missing key %q", key)
		}
	}
	for key := range uk {
		if _, ok := en[key]; !ok {
			t.Errorf("en locale is missing key %q", key)
		}
	}
}
