package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-generator/internal/llm"
)

type recorder struct {
	mu     sync.Mutex
	paths  []string
	bodies []generateContentRequest
}

func newServer(t *testing.T, handle func(w http.ResponseWriter, model string, req generateContentRequest)) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		raw, _ := io.ReadAll(r.Body)
		var req generateContentRequest
		assert.NoError(t, json.Unmarshal(raw, &req))

		model := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1beta/models/"), ":generateContent")
		rec.mu.Lock()
		rec.paths = append(rec.paths, r.URL.Path)
		rec.bodies = append(rec.bodies, req)
		rec.mu.Unlock()
		handle(w, model, req)
	}))
	t.Cleanup(srv.Close)

	c := New(Options{
		APIKey:             "test-key",
		BaseURL:            srv.URL,
		TextModel:          "text-model",
		ImageModel:         "image-primary",
		FallbackImageModel: "image-secondary",
		HTTPClient:         srv.Client(),
	})
	return c, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func textResponse(text string) generateContentResponse {
	return generateContentResponse{Candidates: []candidate{{Content: content{Parts: []part{{Text: text}}}, FinishReason: "STOP"}}}
}

func TestComplete(t *testing.T) {
	c, rec := newServer(t, func(w http.ResponseWriter, _ string, _ generateContentRequest) {
		writeJSON(w, http.StatusOK, textResponse(`{"lines":[]}`))
	})

	got, err := c.Complete(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleAssistant, Content: "hi"},
		{Role: llm.RoleUser, Content: "again"},
	}, llm.Options{MaxTokens: 256, ResponseFormat: llm.FormatJSON, Temperature: 0.8})
	require.NoError(t, err)
	assert.Equal(t, `{"lines":[]}`, got)

	require.Len(t, rec.bodies, 1)
	assert.Equal(t, "/v1beta/models/text-model:generateContent", rec.paths[0])
	req := rec.bodies[0]
	require.NotNil(t, req.SystemInstruction)
	assert.Equal(t, "be brief", req.SystemInstruction.Parts[0].Text)
	require.Len(t, req.Contents, 3)
	assert.Equal(t, "model", req.Contents[1].Role)
	assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
	assert.Equal(t, 256, req.GenerationConfig.MaxOutputTokens)
}

func TestCompleteRetriesWithoutMimeType(t *testing.T) {
	c, rec := newServer(t, func(w http.ResponseWriter, _ string, req generateContentRequest) {
		if req.GenerationConfig.ResponseMimeType != "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"message": `Unknown name "responseMimeType"`}})
			return
		}
		writeJSON(w, http.StatusOK, textResponse("ok"))
	})
	got, err := c.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}}, llm.Options{ResponseFormat: llm.FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Len(t, rec.bodies, 2)
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "safety finish",
			status: http.StatusOK,
			body:   generateContentResponse{Candidates: []candidate{{FinishReason: "SAFETY"}}},
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, llm.ErrContentFiltered) },
		},
		{
			name:   "blocked prompt",
			status: http.StatusOK,
			body:   generateContentResponse{PromptFeedback: &promptFeedback{BlockReason: "OTHER"}},
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, llm.ErrContentFiltered) },
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   map[string]string{"error": "boom"},
			check: func(t *testing.T, err error) {
				var se *llm.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusInternalServerError, se.Code)
				assert.Equal(t, "gemini", se.Provider)
			},
		},
		{
			name:   "empty",
			status: http.StatusOK,
			body:   generateContentResponse{},
			check:  func(t *testing.T, err error) { assert.ErrorContains(t, err, "empty response") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newServer(t, func(w http.ResponseWriter, _ string, _ generateContentRequest) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.Complete(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "x"}}, llm.Options{})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func imageResponse() generateContentResponse {
	return generateContentResponse{Candidates: []candidate{{Content: content{Parts: []part{{InlineData: &blob{Data: "AAAA", MimeType: "image/png"}}}}}}}
}

func TestGenerateImage(t *testing.T) {
	c, rec := newServer(t, func(w http.ResponseWriter, _ string, _ generateContentRequest) {
		writeJSON(w, http.StatusOK, imageResponse())
	})
	got, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "a cake", AspectRatio: "16:9"})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", got)
	require.Len(t, rec.bodies, 1)
	assert.Equal(t, "16:9", rec.bodies[0].GenerationConfig.ImageConfig.AspectRatio)
	assert.Equal(t, []string{"IMAGE"}, rec.bodies[0].GenerationConfig.ResponseModalities)

	_, err = c.GenerateImage(context.Background(), ImageRequest{Prompt: "  "})
	assert.Error(t, err)
}

func TestGenerateImageFallbackModel(t *testing.T) {
	c, rec := newServer(t, func(w http.ResponseWriter, model string, _ generateContentRequest) {
		if model == "image-primary" {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "quota"})
			return
		}
		writeJSON(w, http.StatusOK, imageResponse())
	})
	got, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "a cake"})
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	require.Len(t, rec.paths, 2)
	assert.Contains(t, rec.paths[1], "image-secondary")
}

func TestGenerateImageErrorCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   ImageErrorCode
		calls  int
	}{
		{"invalid key", http.StatusBadRequest, map[string]string{"error": "API key not valid. Please pass a valid API key."}, ImageInvalidKey, 1},
		{"forbidden", http.StatusForbidden, map[string]string{"error": "denied"}, ImageInvalidKey, 1},
		{"unavailable on both tiers", http.StatusServiceUnavailable, map[string]string{"error": "overloaded"}, ImageModelUnavailable, 2},
		{"not found", http.StatusNotFound, map[string]string{"error": "no model"}, ImageModelUnavailable, 2},
		{"refused", http.StatusOK, textResponse("I can't draw that"), ImageContentPolicy, 1},
		{"image safety", http.StatusOK, generateContentResponse{Candidates: []candidate{{FinishReason: "IMAGE_SAFETY"}}}, ImageContentPolicy, 1},
		{"other", http.StatusInternalServerError, map[string]string{"error": "boom"}, ImageUnknown, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newServer(t, func(w http.ResponseWriter, _ string, _ generateContentRequest) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "a cake"})
			var imgErr *ImageError
			require.True(t, errors.As(err, &imgErr), "%v", err)
			assert.Equal(t, tt.want, imgErr.Code)
			assert.Len(t, rec.paths, tt.calls)
		})
	}
}

func TestNilHTTPClient(t *testing.T) {
	_, err := New(Options{}).Complete(context.Background(), nil, llm.Options{})
	assert.Error(t, err)
}
