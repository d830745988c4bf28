package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"vibe-generator/internal/vibe"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Mode         vibe.Mode
	ChatProvider string

	GeminiAPIKey             string
	GeminiBaseURL            string
	GeminiAPIVersion         string
	GeminiTextModel          string
	GeminiImageModel         string
	GeminiFallbackImageModel string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	ChatMaxTokens   int
	ChatTemperature float64
	ChatRPS         float64
	ImagesPerMinute int

	LexiconFile string
	Strictness  vibe.Strictness

	TelegramToken string
	WebAddr       string

	LogLevel string
	LogFile  string
	Debug    bool

	PreferIPv4 bool

	MaxConcurrent  int
	RequestTimeout time.Duration
	HTTPTimeout    time.Duration
	SessionIdle    time.Duration
}

func Load() (Config, error) {
	mode, err := vibe.ParseMode(strings.ToLower(getEnv("AI_MODE", string(vibe.ModeLive))))
	if err != nil {
		return Config{}, fmt.Errorf("AI_MODE: %w", err)
	}

	cfg := Config{
		Mode:                     mode,
		ChatProvider:             strings.ToLower(getEnv("CHAT_PROVIDER", ProviderGemini)),
		GeminiBaseURL:            getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIVersion:         getEnv("GEMINI_API_VERSION", "v1beta"),
		GeminiTextModel:          getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:         getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiFallbackImageModel: getEnv("GEMINI_FALLBACK_IMAGE_MODEL", ""),
		OpenAIBaseURL:            getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:              getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ChatMaxTokens:            getEnvInt("CHAT_MAX_TOKENS", 1024),
		ChatTemperature:          getEnvFloat("CHAT_TEMPERATURE", 0.9),
		ChatRPS:                  getEnvFloat("CHAT_RPS", 2),
		ImagesPerMinute:          getEnvInt("IMAGE_RPM", 10),
		LexiconFile:              getEnv("LEXICON_FILE", ""),
		Strictness:               vibe.Strictness(strings.ToLower(getEnv("CREATIVE_STRICTNESS", string(vibe.Strict)))),
		WebAddr:                  getEnv("WEB_ADDR", ":8080"),
		LogLevel:                 strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:                  getEnv("LOG_FILE", ""),
		Debug:                    getEnvBool("DEBUG", false),
		PreferIPv4:               getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:            getEnvInt("MAX_CONCURRENT", 4),
		RequestTimeout:           time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		HTTPTimeout:              time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 90)) * time.Second,
		SessionIdle:              time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 120)) * time.Minute,
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	switch cfg.ChatProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return Config{}, fmt.Errorf("CHAT_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, cfg.ChatProvider)
	}
	switch cfg.Strictness {
	case vibe.Strict, vibe.Lenient:
	default:
		return Config{}, fmt.Errorf("CREATIVE_STRICTNESS must be %q or %q", vibe.Strict, vibe.Lenient)
	}

	// keys are only needed when something is actually called
	if cfg.Mode == vibe.ModeLive {
		switch {
		case cfg.ChatProvider == ProviderGemini && cfg.GeminiAPIKey == "":
			return Config{}, errors.New("GEMINI_API_KEY is required when AI_MODE=live and CHAT_PROVIDER=gemini")
		case cfg.ChatProvider == ProviderOpenAI && cfg.OpenAIAPIKey == "":
			return Config{}, errors.New("OPENAI_API_KEY is required when AI_MODE=live and CHAT_PROVIDER=openai")
		}
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.ChatMaxTokens < 1 {
		cfg.ChatMaxTokens = 1024
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 90 * time.Second
	}
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = 2 * time.Hour
	}

	return cfg, nil
}

// RequireTelegram is checked by the bot binary only.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

// ImagesEnabled reports whether image rendering can be offered.
func (c Config) ImagesEnabled() bool {
	return c.Mode == vibe.ModeLive && c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
