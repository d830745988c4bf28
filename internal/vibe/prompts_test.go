package vibe

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-generator/internal/llm"
)

func TestTextPrompt(t *testing.T) {
	lx := DefaultLexicon()
	gc := GenerationContext{Category: "Celebrations", Subcategory: "Birthday Party", Tone: "Humorous", Tags: []string{"Jesse"}}

	msgs := lx.TextPrompt(gc, nil)
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, llm.RoleUser, msgs[1].Role)

	system := msgs[0].Content
	for _, want := range []string{`"lines"`, "platform", "audience", "skill", "absurdity", "100 characters", "em-dash", "Never start it with the lane name"} {
		assert.Contains(t, system, want)
	}

	user := msgs[1].Content
	assert.Contains(t, user, `"Birthday Party"`)
	assert.Contains(t, user, `"Jesse"`)
	assert.Contains(t, user, lx.ToneGuidance("humorous"))
	assert.Contains(t, user, `"living my best life"`)
	for _, a := range lx.Anchors(gc)[:2] {
		assert.Contains(t, user, a)
	}
	assert.NotContains(t, user, "previous answer was rejected")

	last := user[strings.LastIndex(user, "\n")+1:]
	require.True(t, strings.HasPrefix(last, requestPrefix))
	var req request
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(last, requestPrefix)), &req))
	assert.Equal(t, kindText, req.Kind)
	assert.Equal(t, gc, req.Context)
}

func TestTextPromptRepair(t *testing.T) {
	gc := GenerationContext{Category: "Sports", Subcategory: "Hockey"}
	msgs := DefaultLexicon().TextPrompt(gc, &RepairHint{Rule: RulePunctuation, Lane: "skill", Detail: "punctuation, em-dash or double hyphen"})
	user := msgs[1].Content
	assert.Contains(t, user, "previous answer was rejected: lane skill, punctuation")
	assert.Contains(t, user, "avoid every listed cliché strictly")
}

func TestVisualPrompt(t *testing.T) {
	lx := DefaultLexicon()
	gc := GenerationContext{Category: "Sports", Tone: "nonexistent", Tags: []string{"balloons"}}
	msgs := lx.VisualPrompt(gc, nil)
	require.Len(t, msgs, 2)
	for _, want := range []string{`"visualOptions"`, `"negativePrompt"`, "objects", "group", "solo", "creative", "300 characters", "symbolic"} {
		assert.Contains(t, msgs[0].Content, want)
	}
	user := msgs[1].Content
	assert.Contains(t, user, lx.tables.GenericTone)
	assert.Contains(t, user, lx.NegativePrompt(gc))
	for _, a := range lx.Anchors(gc) {
		assert.Contains(t, user, a)
	}
}

func TestToneGuidance(t *testing.T) {
	lx := DefaultLexicon()
	assert.Equal(t, lx.tables.Tones["savage"], lx.ToneGuidance("  Savage "))
	assert.Equal(t, lx.tables.GenericTone, lx.ToneGuidance(""))
	assert.Equal(t, lx.tables.GenericTone, lx.ToneGuidance("mysterious"))
}
