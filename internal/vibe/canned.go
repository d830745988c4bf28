package vibe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vibe-generator/internal/llm"
)

// CannedCompleter answers prompts built by this package with the deterministic
// fallback output for the embedded request, without any network call. It backs
// ModeDisabled.
type CannedCompleter struct {
	Lexicon *Lexicon
}

func (c CannedCompleter) Complete(ctx context.Context, messages []llm.Message, _ llm.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lx := c.Lexicon
	if lx == nil {
		lx = DefaultLexicon()
	}
	req, err := findRequest(messages)
	if err != nil {
		return "", err
	}

	var out any
	switch req.Kind {
	case kindText:
		out = struct {
			Lines TextLaneSet `json:"lines"`
		}{lx.FallbackText(req.Context)}
	case kindVisual:
		out = lx.FallbackVisual(req.Context)
	default:
		return "", fmt.Errorf("canned: unknown request kind %q", req.Kind)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("canned: encode: %w", err)
	}
	return string(raw), nil
}

func findRequest(messages []llm.Message) (request, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != llm.RoleUser {
			continue
		}
		content := strings.TrimSpace(messages[i].Content)
		last := content[strings.LastIndexByte(content, '\n')+1:]
		if !strings.HasPrefix(last, requestPrefix) {
			continue
		}
		var req request
		if err := json.Unmarshal([]byte(strings.TrimPrefix(last, requestPrefix)), &req); err != nil {
			return request{}, fmt.Errorf("canned: decode request: %w", err)
		}
		return req, nil
	}
	return request{}, errors.New("canned: no request line in prompt")
}
