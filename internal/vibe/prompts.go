package vibe

import (
	"encoding/json"
	"fmt"
	"strings"

	"vibe-generator/internal/llm"
)

const requestPrefix = "Request: "

type requestKind string

const (
	kindText   requestKind = "text"
	kindVisual requestKind = "visual"
)

// request is echoed as the last line of every user message so the model (and
// CannedCompleter) see the exact inputs.
type request struct {
	Kind    requestKind       `json:"kind"`
	Context GenerationContext `json:"context"`
}

// RepairHint strengthens the second attempt with what went wrong the first time.
type RepairHint struct {
	Rule   Rule
	Lane   string
	Detail string
}

const textSystem = `You write short captions for a greeting or meme image.
Return only JSON, no prose, no code fences, shaped exactly like:
{"lines":[{"lane":"platform","text":"..."},{"lane":"audience","text":"..."},{"lane":"skill","text":"..."},{"lane":"absurdity","text":"..."}]}

Lanes:
- platform: a punchy setup, about 50 characters.
- audience: speaks to the people who will see it, about 70 characters.
- skill: a specific talent, habit or flaw, about 90 characters.
- absurdity: one surreal escalation, at most 100 characters.

Rules:
- Exactly 4 lines, one per lane, in this order.
- Every line is 100 characters or fewer.
- Punctuation: commas, periods and colons only. Never use an em-dash or a double hyphen.
- The "text" field holds only the caption. Never start it with the lane name or a label.`

const visualSystem = `You write image prompts for a greeting or meme picture.
Return only JSON, no prose, no code fences, shaped exactly like:
{"visualOptions":[{"lane":"objects","prompt":"..."},{"lane":"group","prompt":"..."},{"lane":"solo","prompt":"..."},{"lane":"creative","prompt":"..."}],"negativePrompt":"..."}

Lanes:
- objects: props and setting only. No people, no body parts, no pronouns for people.
- group: several people together. Use a word like people, group, friends, team or crowd.
- solo: exactly one person doing one clear physical action (running, jumping, dancing, toasting, holding, skating).
- creative: a symbolic or abstract composition. Use the word "symbolic" or "abstract".

Rules:
- Exactly 4 prompts, one per lane, in this order.
- Every prompt is 300 characters or fewer.
- Describe content only. Never name an art style or medium (realistic, anime, 3D, illustrated, watercolor, cartoon); style is applied later.
- negativePrompt lists what must not appear, comma separated, and is never empty.
- The "prompt" field holds only the prompt. Never start it with the lane name or a label.`

const repairText = `Your previous answer was rejected: %s.
Try again. Be more concrete: use the anchors literally, name real objects and actions, and avoid every listed cliché strictly. Follow every rule above. Return JSON only.`

func (lx *Lexicon) TextPrompt(gc GenerationContext, hint *RepairHint) []llm.Message {
	tags := gc.EffectiveTags()
	anchors := lx.Anchors(gc)

	var b strings.Builder
	lx.writeContext(&b, gc, tags, anchors[:2])
	writeSection(&b, "Every line must contain each of these, spelled exactly", quoteAll(tags))
	writeSection(&b, "Never use these phrases", quoteAll(lx.tables.Cliches))
	writeRepair(&b, hint)
	writeRequest(&b, kindText, gc)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: textSystem},
		{Role: llm.RoleUser, Content: strings.TrimSpace(b.String())},
	}
}

func (lx *Lexicon) VisualPrompt(gc GenerationContext, hint *RepairHint) []llm.Message {
	tags := gc.EffectiveTags()
	anchors := lx.Anchors(gc)

	var b strings.Builder
	lx.writeContext(&b, gc, tags, anchors)
	writeSection(&b, "Every prompt must contain each of these, spelled exactly", quoteAll(tags))
	writeSection(&b, "The negativePrompt must include", []string{lx.NegativePrompt(gc)})
	writeRepair(&b, hint)
	writeRequest(&b, kindVisual, gc)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: visualSystem},
		{Role: llm.RoleUser, Content: strings.TrimSpace(b.String())},
	}
}

func (lx *Lexicon) ToneGuidance(tone string) string {
	if g, ok := lx.tables.Tones[normKey(tone)]; ok && g != "" {
		return g
	}
	return lx.tables.GenericTone
}

func (lx *Lexicon) writeContext(b *strings.Builder, gc GenerationContext, tags, anchors []string) {
	lines := []string{
		"Category: " + orDash(gc.Category),
		"Subcategory: " + orDash(gc.Subcategory),
		"Tone: " + orDash(gc.Tone) + ". " + lx.ToneGuidance(gc.Tone),
	}
	if len(tags) > 0 {
		lines = append(lines, "Tags: "+strings.Join(tags, ", "))
	}
	writeSection(b, "Context", lines)
	writeSection(b, "Ground it with these concrete anchors", anchors)
}

func writeRepair(b *strings.Builder, hint *RepairHint) {
	if hint == nil {
		return
	}
	detail := hint.Detail
	if hint.Lane != "" {
		detail = fmt.Sprintf("lane %s, %s", hint.Lane, detail)
	}
	b.WriteString(fmt.Sprintf(repairText, detail))
	b.WriteString("\n\n")
}

func writeRequest(b *strings.Builder, kind requestKind, gc GenerationContext) {
	raw, err := json.Marshal(request{Kind: kind, Context: gc})
	if err != nil {
		return
	}
	b.WriteString(requestPrefix)
	b.Write(raw)
}

func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString(title)
	b.WriteString(":\n")
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}
