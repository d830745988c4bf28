package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"vibe-generator/internal/config"
	"vibe-generator/internal/gemini"
	"vibe-generator/internal/httpclient"
	"vibe-generator/internal/llm"
	"vibe-generator/internal/openai"
	"vibe-generator/internal/vibe"
)

// App holds the collaborators shared by every binary.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	HTTPClient *http.Client
	Generator  *vibe.Generator
	// Gemini is nil unless a Gemini key is configured.
	Gemini *gemini.Client
}

func Build(cfg config.Config, logger *slog.Logger) (*App, error) {
	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	lx, err := loadLexicon(cfg)
	if err != nil {
		return nil, err
	}

	var gem *gemini.Client
	if cfg.GeminiAPIKey != "" {
		gem = gemini.New(gemini.Options{
			APIKey:             cfg.GeminiAPIKey,
			BaseURL:            cfg.GeminiBaseURL,
			APIVersion:         cfg.GeminiAPIVersion,
			TextModel:          cfg.GeminiTextModel,
			ImageModel:         cfg.GeminiImageModel,
			FallbackImageModel: cfg.GeminiFallbackImageModel,
			HTTPClient:         httpClient,
			Logger:             logger,
		})
	}

	var chat llm.Completer
	if cfg.Mode == vibe.ModeLive {
		chat, err = newCompleter(cfg, httpClient, gem, logger)
		if err != nil {
			return nil, err
		}
		if cfg.ChatRPS > 0 {
			chat = llm.RateLimited(chat, rate.NewLimiter(rate.Limit(cfg.ChatRPS), 1))
		}
	}

	gen, err := vibe.New(vibe.Options{
		Chat:    chat,
		Lexicon: lx,
		Mode:    cfg.Mode,
		ChatOptions: llm.Options{
			MaxTokens:   cfg.ChatMaxTokens,
			Temperature: cfg.ChatTemperature,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		HTTPClient: httpClient,
		Generator:  gen,
		Gemini:     gem,
	}, nil
}

// ImagesEnabled reports whether Gemini can be used for rendering.
func (a *App) ImagesEnabled() bool {
	return a.Config.ImagesEnabled() && a.Gemini != nil
}

// ImageLimiter spreads image calls over a minute; nil means unlimited.
func (a *App) ImageLimiter() *rate.Limiter {
	n := a.Config.ImagesPerMinute
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(n)/60), n)
}

func loadLexicon(cfg config.Config) (*vibe.Lexicon, error) {
	if cfg.LexiconFile != "" {
		return vibe.LoadLexicon(cfg.LexiconFile, cfg.Strictness)
	}
	if cfg.Strictness != "" && cfg.Strictness != vibe.Strict {
		return vibe.NewLexicon(vibe.DefaultTables(), cfg.Strictness), nil
	}
	return vibe.DefaultLexicon(), nil
}

func newCompleter(cfg config.Config, httpClient *http.Client, gem *gemini.Client, logger *slog.Logger) (llm.Completer, error) {
	switch cfg.ChatProvider {
	case config.ProviderOpenAI:
		return openai.New(openai.Options{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIModel,
			HTTPClient: httpClient,
			Logger:     logger,
		}), nil
	case config.ProviderGemini, "":
		if gem == nil {
			return nil, fmt.Errorf("chat provider %s needs GEMINI_API_KEY", config.ProviderGemini)
		}
		return gem, nil
	}
	return nil, fmt.Errorf("unknown chat provider %q", cfg.ChatProvider)
}
