package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"vibe-generator/internal/llm"
)

const (
	defaultTextModel  = "gemini-2.5-flash"
	defaultImageModel = "gemini-2.5-flash-image"
)

type Options struct {
	APIKey             string
	BaseURL            string
	APIVersion         string
	TextModel          string
	ImageModel         string
	FallbackImageModel string
	HTTPClient         *http.Client
	Logger             *slog.Logger
}

type Client struct {
	apiKey             string
	baseURL            string
	apiVersion         string
	textModel          string
	imageModel         string
	fallbackImageModel string
	httpClient         *http.Client
	logger             *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
	}

	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = defaultTextModel
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = defaultImageModel
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		apiKey:             opts.APIKey,
		baseURL:            baseURL,
		apiVersion:         apiVersion,
		textModel:          textModel,
		imageModel:         imageModel,
		fallbackImageModel: strings.TrimSpace(opts.FallbackImageModel),
		httpClient:         opts.HTTPClient,
		logger:             logger,
	}
}

// Complete implements llm.Completer on generateContent.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.textModel
	}

	system, rest := llm.SplitSystem(messages)
	req := generateContentRequest{
		Contents: buildContents(rest),
		GenerationConfig: generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		},
	}
	if system != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	if opts.ResponseFormat == llm.FormatJSON {
		req.GenerationConfig.ResponseMimeType = "application/json"
	}

	resp, err := c.generateContent(ctx, model, req)
	if err != nil && req.GenerationConfig.ResponseMimeType != "" && isUnknownFieldError(err, "responseMimeType") {
		req.GenerationConfig.ResponseMimeType = ""
		resp, err = c.generateContent(ctx, model, req)
	}
	if err != nil {
		return "", err
	}
	if blocked(resp) {
		return "", fmt.Errorf("gemini %s: %w", model, llm.ErrContentFiltered)
	}

	text, _ := extractParts(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini %s: empty response", model)
	}
	return text, nil
}

// GenerateImage returns the first generated image as a data URL. Failures are
// *ImageError values; a rate-limited or unavailable primary model is retried
// once on the fallback model when one is configured.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}

	image, err := c.generateImage(ctx, c.imageModel, prompt, req.AspectRatio)
	var imgErr *ImageError
	if err != nil && errors.As(err, &imgErr) && imgErr.Code.Fallbackable() &&
		c.fallbackImageModel != "" && c.fallbackImageModel != c.imageModel {
		c.logger.Warn("image model failed, trying fallback",
			"model", c.imageModel, "fallback", c.fallbackImageModel, "code", imgErr.Code)
		return c.generateImage(ctx, c.fallbackImageModel, prompt, req.AspectRatio)
	}
	return image, err
}

func (c *Client) generateImage(ctx context.Context, model, prompt, aspectRatio string) (string, error) {
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}
	req := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: fmt.Sprintf("Generate a high quality image: %s", prompt)}}},
		},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig:        &imageConfig{AspectRatio: aspectRatio},
		},
	}

	resp, err := c.generateContent(ctx, model, req)
	if err != nil && isUnknownFieldError(err, "imageConfig") {
		req.GenerationConfig.ImageConfig = nil
		resp, err = c.generateContent(ctx, model, req)
	}
	if err != nil {
		code := ImageUnknown
		var se *llm.StatusError
		if errors.As(err, &se) {
			code = imageErrorCode(se.Code, se.Body)
		}
		return "", &ImageError{Code: code, Model: model, Err: err}
	}
	if blocked(resp) {
		return "", &ImageError{Code: ImageContentPolicy, Model: model, Err: llm.ErrContentFiltered}
	}

	_, images := extractParts(resp)
	if len(images) == 0 {
		// text-only answers are refusals in practice
		return "", &ImageError{Code: ImageContentPolicy, Model: model, Err: errNoImage}
	}
	return images[0], nil
}

func buildContents(messages []llm.Message) []content {
	contents := make([]content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == llm.RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{
			Role:  role,
			Parts: []part{{Text: msg.Content}},
		})
	}
	return contents
}

func (c *Client) generateContent(ctx context.Context, model string, payload generateContentRequest) (generateContentResponse, error) {
	if c.httpClient == nil {
		return generateContentResponse{}, errors.New("http client is nil")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return generateContentResponse{}, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return generateContentResponse{}, &llm.StatusError{Provider: "gemini", Code: httpResp.StatusCode, Body: string(rawBody)}
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return generateContentResponse{}, fmt.Errorf("decode response: %w", err)
	}
	c.logger.Debug("gemini response", "model", model, "candidates", len(decoded.Candidates))
	return decoded, nil
}

func extractParts(resp generateContentResponse) (string, []string) {
	if len(resp.Candidates) == 0 {
		return "", nil
	}

	var textBuilder strings.Builder
	var images []string

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			textBuilder.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" && p.InlineData.MimeType != "" {
			images = append(images, fmt.Sprintf("data:%s;base64,%s", p.InlineData.MimeType, p.InlineData.Data))
		}
	}

	return textBuilder.String(), images
}

func blocked(resp generateContentResponse) bool {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return true
	}
	if len(resp.Candidates) == 0 {
		return false
	}
	switch resp.Candidates[0].FinishReason {
	case "SAFETY", "PROHIBITED_CONTENT", "BLOCKLIST", "SPII", "IMAGE_SAFETY":
		return true
	}
	return false
}

type generateContentRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature        float64      `json:"temperature,omitempty"`
	MaxOutputTokens    int          `json:"maxOutputTokens,omitempty"`
	ResponseMimeType   string       `json:"responseMimeType,omitempty"`
	ResponseModalities []string     `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string `json:"text,omitempty"`
	InlineData *blob  `json:"inlineData,omitempty"`
}

type blob struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type generateContentResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

func isUnknownFieldError(err error, field string) bool {
	message := err.Error()
	return strings.Contains(message, "Unknown name") && strings.Contains(message, field)
}
