package vibe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"fenced", "Sure!\n```json\n{\"a\":1}\n```\nanything else?", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"wrapped in prose", `Here you go: {"a":{"b":2}} hope it helps`, `{"a":{"b":2}}`},
		{"whole text", `  [1,2]  `, `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.raw))
		})
	}
}

func TestParseTextLines(t *testing.T) {
	t.Run("objects with lanes", func(t *testing.T) {
		raw := "```json\n" + `{"lines":[
			{"lane":"Platform","text":"platform: one"},
			{"lane":"audience","text":"\"two\""},
			{"lane":"skill","text":"three"},
			{"lane":"absurdity","text":"four"}]}` + "\n```"
		lines, err := parseTextLines(raw)
		require.NoError(t, err)
		require.Len(t, lines, 4)
		assert.Equal(t, TextLine{Lane: LanePlatform, Text: "one"}, lines[0])
		assert.Equal(t, "two", lines[1].Text)
	})

	t.Run("bare strings take positional lanes", func(t *testing.T) {
		lines, err := parseTextLines(`{"lines":["a","b","c","d"]}`)
		require.NoError(t, err)
		for i, l := range lines {
			assert.Equal(t, TextLanes[i], l.Lane)
		}
	})

	t.Run("short list is kept for the validator", func(t *testing.T) {
		lines, err := parseTextLines(`{"lines":["a","b","c"]}`)
		require.NoError(t, err)
		assert.Len(t, lines, 3)
	})

	t.Run("errors", func(t *testing.T) {
		for _, raw := range []string{"", "no json at all", `{"lines":[]}`, `{"lines": "nope"}`, `{"other":1}`} {
			_, err := parseTextLines(raw)
			assert.Error(t, err, raw)
		}
	})
}

func TestParseVisualCandidate(t *testing.T) {
	t.Run("visualOptions", func(t *testing.T) {
		raw := `{"visualOptions":[
			{"lane":"objects","prompt":"a"},
			{"lane":"group","prompt":"b"},
			{"lane":"solo","prompt":"c"},
			{"lane":"creative","prompt":"creative: d"}],
			"negativePrompt":"no logo"}`
		c, err := parseVisualCandidate(raw)
		require.NoError(t, err)
		require.Len(t, c.Prompts, 4)
		assert.Equal(t, "d", c.Prompts[3].Prompt)
		assert.Equal(t, "no logo", c.NegativePrompt)
	})

	t.Run("prompts alias and text field", func(t *testing.T) {
		c, err := parseVisualCandidate(`{"prompts":[{"text":"a"},{"text":"b"}]}`)
		require.NoError(t, err)
		assert.Equal(t, []VisualPrompt{{Lane: LaneObjects, Prompt: "a"}, {Lane: LaneGroup, Prompt: "b"}}, c.Prompts)
	})

	t.Run("missing list", func(t *testing.T) {
		_, err := parseVisualCandidate(`{"negativePrompt":"x"}`)
		assert.Error(t, err)
	})
}
