// Package config loads the immutable runtime configuration.
//
// Precedence, lowest to highest: built-in defaults, the optional YAML
// config file, environment variables. The result is validated once at
// startup and passed to components at construction — no ambient
// globals.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the process reads at startup.
type Config struct {
	// BotToken is the chat channel access credential. Required.
	BotToken string `yaml:"bot_token"`

	// DefaultLang and DefaultCountry seed new user profiles.
	DefaultLang    string `yaml:"default_lang"`
	DefaultCountry string `yaml:"default_country"`

	// Languages and Countries are the recognized code sets for the
	// free-text settings patterns. Configuration data, not a fixed
	// enum, so localization can be extended without a code change.
	Languages []string `yaml:"languages"`
	Countries []string `yaml:"countries"`

	// Admins is the allow-list for the stats command.
	Admins []int64 `yaml:"admins"`

	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`

	// GeminiAPIKey enables the free-form fallback when set. Optional —
	// without it the fallback path degrades to a localized "I don't
	// understand" reply.
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	// LLMTimeout bounds one generative call so a stuck request delays
	// only that user's turn, not the process.
	LLMTimeout time.Duration `yaml:"llm_timeout"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		DefaultLang:    "en",
		DefaultCountry: "US",
		Languages:      []string{"en", "uk"},
		Countries:      []string{"US", "UA"},
		DBPath:         "svitlo.db",
		GeminiModel:    "gemini-2.0-flash",
		LLMTimeout:     15 * time.Second,
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty or the file does not exist), then env
// overrides, then validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// optional file
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SVITLO_BOT_TOKEN"); v != "" {
		c.BotToken = v
	}
	if v := os.Getenv("SVITLO_DEFAULT_LANG"); v != "" {
		c.DefaultLang = strings.ToLower(v)
	}
	if v := os.Getenv("SVITLO_DEFAULT_COUNTRY"); v != "" {
		c.DefaultCountry = strings.ToUpper(v)
	}
	if v := os.Getenv("SVITLO_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("SVITLO_ADMINS"); v != "" {
		admins, err := parseAdmins(v)
		if err != nil {
			return err
		}
		c.Admins = admins
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("SVITLO_GEMINI_MODEL"); v != "" {
		c.GeminiModel = v
	}
	if v := os.Getenv("SVITLO_LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: SVITLO_LLM_TIMEOUT: %w", err)
		}
		c.LLMTimeout = d
	}
	return nil
}

func parseAdmins(csv string) ([]int64, error) {
	var admins []int64
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: SVITLO_ADMINS entry %q: %w", part, err)
		}
		admins = append(admins, id)
	}
	return admins, nil
}

// Validate checks the invariants a running process relies on. A missing
// bot token is fatal: the process must not start without its channel
// credential.
func (c Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("config: bot token is required (SVITLO_BOT_TOKEN)")
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("config: at least one recognized language is required")
	}
	if !slices.Contains(c.Languages, c.DefaultLang) {
		return fmt.Errorf("config: default language %q is not in the recognized set %v", c.DefaultLang, c.Languages)
	}
	if !slices.Contains(c.Countries, c.DefaultCountry) {
		return fmt.Errorf("config: default country %q is not in the recognized set %v", c.DefaultCountry, c.Countries)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("config: llm_timeout must be positive")
	}
	return nil
}

// IsAdmin reports whether the user is on the admin allow-list.
func (c Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.Admins, userID)
}

// KnownLanguage reports whether the code is a recognized language.
func (c Config) KnownLanguage(code string) bool {
	return slices.Contains(c.Languages, code)
}

// KnownCountry reports whether the code is a recognized country.
func (c Config) KnownCountry(code string) bool {
	return slices.Contains(c.Countries, code)
}
