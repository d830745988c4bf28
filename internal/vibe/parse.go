package vibe

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

var errNoJSON = errors.New("no JSON object in response")

// wireLine accepts {"lane","text"}, {"lane","prompt"} or a bare string.
type wireLine struct {
	Lane   string `json:"lane"`
	Text   string `json:"text"`
	Prompt string `json:"prompt"`
}

func (w *wireLine) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		w.Text = s
		return nil
	}
	type plain wireLine
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*w = wireLine(p)
	return nil
}

func (w wireLine) content() string {
	if strings.TrimSpace(w.Text) != "" {
		return w.Text
	}
	return w.Prompt
}

type wireText struct {
	Lines []wireLine `json:"lines"`
}

type wireVisual struct {
	VisualOptions  []wireLine `json:"visualOptions"`
	Prompts        []wireLine `json:"prompts"`
	NegativePrompt string     `json:"negativePrompt"`
}

// parseTextLines turns raw model output into typed lines. Shape problems the
// validator can describe better (wrong count, odd lanes) are left to it.
func parseTextLines(raw string) ([]TextLine, error) {
	var w wireText
	if err := decodeJSON(raw, &w); err != nil {
		return nil, err
	}
	if len(w.Lines) == 0 {
		return nil, errors.New(`response has no "lines"`)
	}
	out := make([]TextLine, len(w.Lines))
	for i, l := range w.Lines {
		lane := normalizeLane(l.Lane, i, laneNames(TextLanes[:]))
		out[i] = TextLine{Lane: TextLane(lane), Text: stripLanePrefix(l.content(), lane)}
	}
	return out, nil
}

func parseVisualCandidate(raw string) (VisualCandidate, error) {
	var w wireVisual
	if err := decodeJSON(raw, &w); err != nil {
		return VisualCandidate{}, err
	}
	items := w.VisualOptions
	if len(items) == 0 {
		items = w.Prompts
	}
	if len(items) == 0 {
		return VisualCandidate{}, errors.New(`response has no "visualOptions"`)
	}
	out := VisualCandidate{Prompts: make([]VisualPrompt, len(items)), NegativePrompt: w.NegativePrompt}
	for i, l := range items {
		lane := normalizeLane(l.Lane, i, laneNames(VisualLanes[:]))
		out.Prompts[i] = VisualPrompt{Lane: VisualLane(lane), Prompt: stripLanePrefix(l.content(), lane)}
	}
	return out, nil
}

func decodeJSON(raw string, v any) error {
	body := extractJSON(raw)
	if body == "" {
		return errNoJSON
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decode response (excerpt %q): %w", truncateString(raw, 120), err)
	}
	return nil
}

// extractJSON prefers a fenced block, then the outermost object, then the
// whole text.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := jsonBlockRegex.FindStringSubmatch(raw); len(m) > 1 {
		return m[1]
	}
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		return raw[first : last+1]
	}
	return raw
}

// normalizeLane lowercases the lane name; a missing name is taken from position.
func normalizeLane(lane string, i int, order []string) string {
	lane = strings.ToLower(strings.TrimSpace(lane))
	if lane == "" && i < len(order) {
		return order[i]
	}
	return lane
}

func stripLanePrefix(text, lane string) string {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	for _, p := range []string{lane + ":", lane + " -", "[" + lane + "]"} {
		if strings.HasPrefix(lower, p) {
			text = strings.TrimSpace(text[len(p):])
			break
		}
	}
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
