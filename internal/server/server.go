package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"vibe-generator/internal/gemini"
	"vibe-generator/internal/vibe"
)

type ImageGenerator interface {
	GenerateImage(ctx context.Context, req gemini.ImageRequest) (string, error)
}

type Options struct {
	Generator *vibe.Generator
	// Images is optional; /api/image answers 503 without it.
	Images         ImageGenerator
	ImageLimiter   *rate.Limiter
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	Logger         *slog.Logger
}

type Server struct {
	gen            *vibe.Generator
	images         ImageGenerator
	imageLimiter   *rate.Limiter
	requestTimeout time.Duration
	maxBodyBytes   int64
	logger         *slog.Logger
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type vibeResponse struct {
	Text   vibe.TextResult   `json:"text"`
	Visual vibe.VisualResult `json:"visual"`
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 64 << 10
	}
	return &Server{
		gen:            opts.Generator,
		images:         opts.Images,
		imageLimiter:   opts.ImageLimiter,
		requestTimeout: timeout,
		maxBodyBytes:   maxBody,
		logger:         logger,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(s.withLogging)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limitBody)

		r.Get("/layouts", s.handleLayouts)
		r.Get("/tones", s.handleTones)

		r.Post("/text", s.handleText)
		r.Post("/visual", s.handleVisual)
		r.Post("/vibe", s.handleVibe)
		r.Post("/compose", s.handleCompose)
		r.Post("/image", s.handleImage)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "mode": string(s.gen.Mode())})
}

func (s *Server) handleLayouts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vibe.Layouts())
}

func (s *Server) handleTones(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.gen.Lexicon().Tones())
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var gc vibe.GenerationContext
	if !s.decode(w, r, &gc) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	writeJSON(w, http.StatusOK, s.gen.Text(ctx, gc))
}

func (s *Server) handleVisual(w http.ResponseWriter, r *http.Request) {
	var gc vibe.GenerationContext
	if !s.decode(w, r, &gc) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	writeJSON(w, http.StatusOK, s.gen.Visual(ctx, gc))
}

func (s *Server) handleVibe(w http.ResponseWriter, r *http.Request) {
	var gc vibe.GenerationContext
	if !s.decode(w, r, &gc) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	text, visual := s.gen.Both(ctx, gc)
	writeJSON(w, http.StatusOK, vibeResponse{Text: text, Visual: visual})
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var in vibe.ComposeInput
	if !s.decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Text) == "" || strings.TrimSpace(in.VisualPrompt) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "text and visualPrompt are required"})
		return
	}
	writeJSON(w, http.StatusOK, vibe.Compose(in))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "image generation is disabled", Code: "disabled"})
		return
	}

	var payload vibe.FinalPayload
	if !s.decode(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.VisualPrompt) == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "visualPrompt is required"})
		return
	}
	if s.imageLimiter != nil && !s.imageLimiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, apiError{Error: "too many image requests", Code: string(gemini.ImageRateLimited)})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	url, err := s.images.GenerateImage(ctx, gemini.ImageRequest{
		Prompt:      payload.ImagePrompt(),
		AspectRatio: payload.AspectRatio(),
	})
	if err != nil {
		code := gemini.CodeOf(err)
		s.logger.Error("image generation failed", "code", code, "context_id", payload.ContextID, "err", err)
		writeJSON(w, imageStatus(code), apiError{Error: imageMessage(code), Code: string(code)})
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{ImageURL: url})
}

func imageStatus(code gemini.ImageErrorCode) int {
	switch code {
	case gemini.ImageRateLimited:
		return http.StatusTooManyRequests
	case gemini.ImageContentPolicy:
		return http.StatusUnprocessableEntity
	case gemini.ImageModelUnavailable:
		return http.StatusServiceUnavailable
	case gemini.ImageInvalidKey:
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}

func imageMessage(code gemini.ImageErrorCode) string {
	switch code {
	case gemini.ImageRateLimited:
		return "image service is rate limited, retry later"
	case gemini.ImageContentPolicy:
		return "image request was refused by the content policy"
	case gemini.ImageModelUnavailable:
		return "image model is unavailable"
	case gemini.ImageInvalidKey:
		return "image service credentials were rejected"
	}
	return "image generation failed"
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid JSON body"})
		return false
	}
	return true
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"dur_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
