package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GENERATIVE_AI", "")
	t.Setenv("AI_RATE_PER_MINUTE", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GenerativeAI != AIGemini {
		t.Errorf("GenerativeAI = %q, want %q", cfg.GenerativeAI, AIGemini)
	}
	if cfg.AIRatePerMinute != 30 {
		t.Errorf("AIRatePerMinute = %d, want 30", cfg.AIRatePerMinute)
	}
	if cfg.SofttekURL != DefaultSofttekURL {
		t.Errorf("SofttekURL = %q", cfg.SofttekURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GENERATIVE_AI", "Softtek")
	t.Setenv("AI_RATE_PER_MINUTE", "5")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GenerativeAI != AISofttek {
		t.Errorf("GenerativeAI = %q, want %q", cfg.GenerativeAI, AISofttek)
	}
	if cfg.AIRatePerMinute != 5 {
		t.Errorf("AIRatePerMinute = %d, want 5", cfg.AIRatePerMinute)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GENERATIVE_AI", "openai")
	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unknown provider")
	}

	t.Setenv("GENERATIVE_AI", "gemini")
	t.Setenv("AI_RATE_PER_MINUTE", "zero")
	if _, err := Load(); err == nil {
		t.Error("Load() should reject a non-numeric rate")
	}
}

func TestValidateServer(t *testing.T) {
	cfg := &Config{GenerativeAI: AIGemini}
	err := cfg.ValidateServer()
	if err == nil {
		t.Fatal("ValidateServer() should fail on an empty config")
	}
	for _, key := range []string{"GOOGLE_APPLICATION_CREDENTIALS_1", "JWT_SECRET_KEY", "GEMINI_API_KEY"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}

	cfg = &Config{
		GenerativeAI:     AISofttek,
		CredentialsFile:  "key.json",
		JWTSecret:        "a",
		JWTRefreshSecret: "b",
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("ValidateServer() error = %v", err)
	}
}
