package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-generator/internal/vibe"
)

var allKeys = []string{
	"AI_MODE", "CHAT_PROVIDER", "GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_API_VERSION",
	"GEMINI_TEXT_MODEL", "GEMINI_IMAGE_MODEL", "GEMINI_FALLBACK_IMAGE_MODEL",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "CHAT_MAX_TOKENS", "CHAT_TEMPERATURE",
	"CHAT_RPS", "LEXICON_FILE", "CREATIVE_STRICTNESS", "TELEGRAM_BOT_TOKEN", "WEB_ADDR",
	"LOG_LEVEL", "LOG_FILE", "DEBUG", "PREFER_IPV4", "MAX_CONCURRENT",
	"REQUEST_TIMEOUT_SECONDS", "HTTP_TIMEOUT_SECONDS", "IMAGE_RPM", "SESSION_IDLE_MINUTES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, vibe.ModeLive, cfg.Mode)
	assert.Equal(t, ProviderGemini, cfg.ChatProvider)
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.Equal(t, "v1beta", cfg.GeminiAPIVersion)
	assert.Equal(t, vibe.Strict, cfg.Strictness)
	assert.Equal(t, ":8080", cfg.WebAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.PreferIPv4)
	assert.Equal(t, 4, cfg.MaxConcurrent)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2.0, cfg.ChatRPS)
	assert.Equal(t, 10, cfg.ImagesPerMinute)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdle)
	assert.True(t, cfg.ImagesEnabled())
	assert.Error(t, cfg.RequireTelegram())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_MODE", "Disabled")
	t.Setenv("CHAT_PROVIDER", "OpenAI")
	t.Setenv("CREATIVE_STRICTNESS", "lenient")
	t.Setenv("MAX_CONCURRENT", "0")
	t.Setenv("CHAT_RPS", "0.5")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("PREFER_IPV4", "false")
	t.Setenv("TELEGRAM_BOT_TOKEN", " tg ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, vibe.ModeDisabled, cfg.Mode)
	assert.Equal(t, ProviderOpenAI, cfg.ChatProvider)
	assert.Equal(t, vibe.Lenient, cfg.Strictness)
	assert.Equal(t, 1, cfg.MaxConcurrent)
	assert.Equal(t, 0.5, cfg.ChatRPS)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.PreferIPv4)
	assert.NoError(t, cfg.RequireTelegram())
	assert.False(t, cfg.ImagesEnabled())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{"live gemini without key", map[string]string{}, "GEMINI_API_KEY"},
		{"live openai without key", map[string]string{"CHAT_PROVIDER": "openai"}, "OPENAI_API_KEY"},
		{"bad mode", map[string]string{"AI_MODE": "sometimes"}, "AI_MODE"},
		{"bad provider", map[string]string{"CHAT_PROVIDER": "llama", "GEMINI_API_KEY": "k"}, "CHAT_PROVIDER"},
		{"bad strictness", map[string]string{"CREATIVE_STRICTNESS": "loose", "GEMINI_API_KEY": "k"}, "CREATIVE_STRICTNESS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
