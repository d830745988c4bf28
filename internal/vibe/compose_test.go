package vibe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeInput() ComposeInput {
	return ComposeInput{
		Text:           "Birthday party report: Jesse vs the cake.",
		LayoutID:       "memeTopBottom",
		Style:          "anime",
		VisualPrompt:   "A group of friends gathered at the birthday party",
		NegativePrompt: "no watermark, no logo",
		Dimensions:     Dimensions{Width: 1920, Height: 1080},
		Context:        GenerationContext{Category: "Celebrations", Subcategory: "Birthday Party", Tone: "Humorous", Tags: []string{"Jesse"}, Entity: "Jesse Smith"},
	}
}

func TestCompose(t *testing.T) {
	p := Compose(composeInput())
	assert.Equal(t, "Birthday party report: Jesse vs the cake.", p.TextContent)
	assert.Equal(t, "memeTopBottom", p.TextLayoutSpec.ID)
	assert.Equal(t, "anime", p.VisualStyle)
	assert.Equal(t, "no watermark, no logo", p.NegativePrompt)
	assert.Equal(t, "celebrations.birthdayparty.jessesmith", p.ContextID)
	assert.Equal(t, "Humorous", p.Tone)
	assert.Equal(t, []string{"Birthday Party", "Jesse"}, p.Tags)
	assert.Equal(t, "16:9", p.AspectRatio())
}

func TestComposeDefaults(t *testing.T) {
	in := composeInput()
	in.LayoutID = "doesNotExist"
	in.Style = ""
	in.NegativePrompt = "  "
	in.Dimensions = Dimensions{}
	in.Context.Entity = ""

	p := Compose(in)
	assert.Equal(t, DefaultLayoutID, p.TextLayoutSpec.ID)
	assert.Equal(t, DefaultStyle, p.VisualStyle)
	assert.Equal(t, "no watermark, no logo, no extra text", p.NegativePrompt)
	assert.Equal(t, Dimensions{Width: 1024, Height: 1024}, p.Dimensions)
	assert.Equal(t, "1:1", p.AspectRatio())
	assert.Equal(t, "celebrations.birthdayparty", p.ContextID)
}

func TestComposeIsIdempotent(t *testing.T) {
	assert.Equal(t, Compose(composeInput()), Compose(composeInput()))
}

func TestImagePrompt(t *testing.T) {
	p := Compose(composeInput())
	got := p.ImagePrompt()
	assert.Contains(t, got, "A group of friends gathered at the birthday party")
	assert.Contains(t, got, "Style: anime")
	assert.Contains(t, got, p.TextLayoutSpec.Guidance)
	assert.Contains(t, got, "Avoid: no watermark, no logo")
}

func TestLayouts(t *testing.T) {
	all := Layouts()
	require.NotEmpty(t, all)
	assert.Equal(t, DefaultLayoutID, all[0].ID)

	l, ok := Layout("lowerThird")
	assert.True(t, ok)
	assert.Equal(t, "bottom", l.Placement)

	l, ok = Layout("")
	assert.False(t, ok)
	assert.Equal(t, DefaultLayoutID, l.ID)
}
