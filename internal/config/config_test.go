package config

import (
	"errors"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "CHAT_PROVIDER", "CHAT_TIMEOUT_SECONDS", "OPENROUTER_API_KEY",
		"SITE_URL", "DATABASE_URL", "DATABASE_DRIVER", "PERSISTENCE_REQUIRE_REMOTE",
		"DATABASE_TIMEOUT_MS", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Persistence.DatabaseURL != "file:./dev.db" {
		t.Fatalf("expected dev sqlite default, got %q", cfg.Persistence.DatabaseURL)
	}
	if cfg.Persistence.RequireRemote {
		t.Fatal("requireRemote should default to false")
	}
	if cfg.Chat.Timeout != 30*time.Second {
		t.Fatalf("unexpected chat timeout: %s", cfg.Chat.Timeout)
	}
	if cfg.Chat.Configured() {
		t.Fatal("chat should be unconfigured without an API key")
	}
	if cfg.Log.Level != "debug" || cfg.Log.JSON {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadProductionWithoutDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Persistence.DatabaseURL != "" {
		t.Fatalf("production must not default a database, got %q", cfg.Persistence.DatabaseURL)
	}
	if !cfg.Log.JSON {
		t.Fatal("production logs should be JSON")
	}
}

func TestLoadRequireRemoteWithoutDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("PERSISTENCE_REQUIRE_REMOTE", "true")

	if _, err := Load(); !errors.Is(err, ErrRemoteRequired) {
		t.Fatalf("expected ErrRemoteRequired, got %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                       "80 80",
		"CHAT_PROVIDER":              "anthropic",
		"PERSISTENCE_REQUIRE_REMOTE": "maybe",
		"CHAT_TIMEOUT_SECONDS":       "0",
		"APP_ENV":                    "staging",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestChatConfiguredByProvider(t *testing.T) {
	cfg := ChatConfig{Provider: ProviderOpenRouter, APIKey: "sk-or"}
	if !cfg.Configured() {
		t.Fatal("openrouter with key should be configured")
	}

	cfg = ChatConfig{Provider: ProviderArk, APIKey: "sk-or"}
	if cfg.Configured() {
		t.Fatal("ark provider ignores the OpenRouter key")
	}

	cfg.Ark = ArkConfig{APIKey: "ark", Model: "doubao"}
	if !cfg.Configured() {
		t.Fatal("ark with key and model should be configured")
	}
}
