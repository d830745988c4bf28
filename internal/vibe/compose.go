package vibe

import (
	"fmt"
	"strings"
)

const (
	DefaultStyle     = "realistic"
	DefaultDimension = 1024
	defaultNegative  = "no watermark, no logo, no extra text"
)

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ComposeInput struct {
	Text           string            `json:"text"`
	LayoutID       string            `json:"textLayoutId"`
	Style          string            `json:"visualStyle"`
	VisualPrompt   string            `json:"visualPrompt"`
	NegativePrompt string            `json:"negativePrompt"`
	Dimensions     Dimensions        `json:"dimensions"`
	Context        GenerationContext `json:"context"`
}

type FinalPayload struct {
	TextContent    string     `json:"textContent"`
	TextLayoutSpec LayoutSpec `json:"textLayoutSpec"`
	VisualStyle    string     `json:"visualStyle"`
	VisualPrompt   string     `json:"visualPrompt"`
	NegativePrompt string     `json:"negativePrompt"`
	Dimensions     Dimensions `json:"dimensions"`
	ContextID      string     `json:"contextId"`
	Tone           string     `json:"tone"`
	Tags           []string   `json:"tags"`
}

// Compose merges the user's picks into the payload for the image step. It only
// fills defaults; the inputs were validated when they were generated.
func Compose(in ComposeInput) FinalPayload {
	layout, _ := Layout(in.LayoutID)

	style := strings.TrimSpace(in.Style)
	if style == "" {
		style = DefaultStyle
	}
	negative := strings.TrimSpace(in.NegativePrompt)
	if negative == "" {
		negative = defaultNegative
	}
	dims := in.Dimensions
	if dims.Width <= 0 {
		dims.Width = DefaultDimension
	}
	if dims.Height <= 0 {
		dims.Height = DefaultDimension
	}

	return FinalPayload{
		TextContent:    strings.TrimSpace(in.Text),
		TextLayoutSpec: layout,
		VisualStyle:    style,
		VisualPrompt:   strings.TrimSpace(in.VisualPrompt),
		NegativePrompt: negative,
		Dimensions:     dims,
		ContextID:      contextID(in.Context),
		Tone:           strings.TrimSpace(in.Context.Tone),
		Tags:           in.Context.EffectiveTags(),
	}
}

// ImagePrompt is the single prompt string handed to the image model.
func (p FinalPayload) ImagePrompt() string {
	var b strings.Builder
	b.WriteString(p.VisualPrompt)
	if p.VisualStyle != "" {
		fmt.Fprintf(&b, ". Style: %s", p.VisualStyle)
	}
	if p.TextLayoutSpec.Guidance != "" {
		fmt.Fprintf(&b, ". Composition: %s", p.TextLayoutSpec.Guidance)
	}
	b.WriteString(". Do not render any text, letters or captions in the image")
	if p.NegativePrompt != "" {
		fmt.Fprintf(&b, ". Avoid: %s", p.NegativePrompt)
	}
	b.WriteString(".")
	return b.String()
}

// AspectRatio reduces the dimensions, e.g. 1920x1080 to "16:9".
func (p FinalPayload) AspectRatio() string {
	w, h := p.Dimensions.Width, p.Dimensions.Height
	if w <= 0 || h <= 0 {
		return "1:1"
	}
	d := gcd(w, h)
	return fmt.Sprintf("%d:%d", w/d, h/d)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func contextID(gc GenerationContext) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{gc.Category, gc.Subcategory, gc.Entity} {
		if p = stripSpaces(strings.ToLower(p)); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
