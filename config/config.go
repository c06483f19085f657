// Package config reads the service settings from the environment. A .env
// file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	LogFile  string

	CredentialsFile string
	ProjectID       string
	StorageBucket   string

	JWTSecret        string
	JWTRefreshSecret string

	GenerativeAI    string
	GeminiAPIKey    string
	GeminiModel     string
	SofttekURL      string
	AIRatePerMinute int

	RecaptchaSiteKey     string
	RecaptchaProjectID   string
	RecaptchaCredentials string
	CORSOrigins          []string

	OSCListenAddr string
	MuseRelayURL  string
}

const (
	AIGemini  = "gemini"
	AISofttek = "softtek"

	DefaultSofttekURL = "https://stk-formador-25.azurewebsites.net/epics/generate-from-prompt"
)

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{
		Port:     getenv("PORT", "8080"),
		GinMode:  getenv("GIN_MODE", "release"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_1"),
		ProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		StorageBucket:   os.Getenv("FIREBASE_STORAGE_BUCKET"),

		JWTSecret:        os.Getenv("JWT_SECRET_KEY"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET_KEY"),

		GenerativeAI: strings.ToLower(getenv("GENERATIVE_AI", AIGemini)),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		SofttekURL:   getenv("SOFTTEK_URL", DefaultSofttekURL),

		RecaptchaSiteKey:     os.Getenv("RECAPTCHA_SITE_KEY"),
		RecaptchaProjectID:   os.Getenv("GOOGLE_CLOUD_PROJECT_ID"),
		RecaptchaCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_2"),

		OSCListenAddr: getenv("OSC_LISTEN_ADDR", "0.0.0.0:5000"),
		MuseRelayURL:  getenv("MUSE_RELAY_URL", "http://localhost:3000/api/muse_data"),
	}

	rate, err := strconv.Atoi(getenv("AI_RATE_PER_MINUTE", "30"))
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("AI_RATE_PER_MINUTE must be a positive integer")
	}
	cfg.AIRatePerMinute = rate

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.GenerativeAI != AIGemini && cfg.GenerativeAI != AISofttek {
		return nil, fmt.Errorf("GENERATIVE_AI must be %q or %q, got %q", AIGemini, AISofttek, cfg.GenerativeAI)
	}
	return cfg, nil
}

// ValidateServer checks the settings the HTTP API cannot start without.
func (c *Config) ValidateServer() error {
	var missing []string
	if c.CredentialsFile == "" {
		missing = append(missing, "GOOGLE_APPLICATION_CREDENTIALS_1")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if c.JWTRefreshSecret == "" {
		missing = append(missing, "JWT_REFRESH_SECRET_KEY")
	}
	if c.GenerativeAI == AIGemini && c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
