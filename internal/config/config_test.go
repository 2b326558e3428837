package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setToken satisfies the required-credential check for tests that
// exercise other fields.
func setToken(t *testing.T) {
	t.Helper()
	t.Setenv("SVITLO_BOT_TOKEN", "123456:test-token")
}

func TestLoad_MissingTokenIsFatal(t *testing.T) {
	t.Setenv("SVITLO_BOT_TOKEN", "")
	if _, err := Load(""); err == nil {
		t.Fatal("Load without a bot token succeeded; startup must fail")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setToken(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLang != "en" || cfg.DefaultCountry != "US" {
		t.Errorf("defaults = %q/%q, want en/US", cfg.DefaultLang, cfg.DefaultCountry)
	}
	if !cfg.KnownLanguage("uk") || cfg.KnownLanguage("de") {
		t.Error("recognized language set is wrong")
	}
	if cfg.LLMTimeout <= 0 {
		t.Error("default LLM timeout must be positive")
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	setToken(t)
	path := filepath.Join(t.TempDir(), "svitlo.yaml")
	data := "default_lang: uk\ndefault_country: UA\ndb_path: /tmp/file.db\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SVITLO_DB_PATH", "/tmp/env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLang != "uk" {
		t.Errorf("DefaultLang = %q, want uk from file", cfg.DefaultLang)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Errorf("DBPath = %q, want env to win over file", cfg.DBPath)
	}
}

func TestLoad_MissingFileIsOptional(t *testing.T) {
	setToken(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("Load with absent config file: %v", err)
	}
}

func TestLoad_AdminsFromEnv(t *testing.T) {
	setToken(t)
	t.Setenv("SVITLO_ADMINS", "100, 200,300")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, id := range []int64{100, 200, 300} {
		if !cfg.IsAdmin(id) {
			t.Errorf("IsAdmin(%d) = false", id)
		}
	}
	if cfg.IsAdmin(999) {
		t.Error("IsAdmin(999) = true")
	}
}

func TestLoad_BadAdminEntry(t *testing.T) {
	setToken(t)
	t.Setenv("SVITLO_ADMINS", "100,bob")
	if _, err := Load(""); err == nil {
		t.Fatal("Load with a non-numeric admin id succeeded")
	}
}

func TestLoad_LLMTimeoutFromEnv(t *testing.T) {
	setToken(t)
	t.Setenv("SVITLO_LLM_TIMEOUT", "30s")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLMTimeout != 30*time.Second {
		t.Errorf("LLMTimeout = %v, want 30s", cfg.LLMTimeout)
	}
}

func TestValidate_DefaultLangMustBeRecognized(t *testing.T) {
	cfg := Default()
	cfg.BotToken = "t"
	cfg.DefaultLang = "fr"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted a default language outside the recognized set")
	}
}

func TestValidate_DefaultCountryMustBeRecognized(t *testing.T) {
	cfg := Default()
	cfg.BotToken = "t"
	cfg.DefaultCountry = "DE"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate accepted a default country outside the recognized set")
	}
}
