package vibe

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const genericName = "the main character"

var properName = regexp.MustCompile(`^\p{Lu}[\p{L}'’]*(?: \p{Lu}[\p{L}'’]*)*$`)

var textTemplates = [4]string{
	"{Topic} report: {name} vs the {a1}.",
	"For everyone at the {topic} who came for the {a1} and stayed for {name}.",
	"{Name} has one {mood} {topic} skill: reaching the {a1} before the {a2} runs out.",
	"Breaking: the {a2} at this {topic} just asked {name} for a raise and a {mood} nap.",
}

var visualTemplates = [4]string{
	"{Topic} still life: {a1}, {a2} and {a3} arranged in the foreground, soft window light, clean uncluttered background",
	"A group of friends gathered at the {topic} around the {a1} and {a2}, laughing together, candid wide framing",
	"One person {action} at the {topic}, {a2} in the background, dynamic mid-moment framing",
	"Symbolic abstract arrangement of {a1}, {a2} and {a3} that captures the {topic}, {mood} mood, floating on a bold color field",
}

var trailingFiller = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true, "at": true,
	"for": true, "to": true, "with": true, "vs": true, "this": true, "by": true, "in": true,
	"on": true, "near": true, "over": true, "from": true, "past": true, "toward": true,
	"beside": true, "around": true, "before": true, "who": true, "just": true, "that": true,
}

func FallbackText(gc GenerationContext) TextLaneSet {
	return DefaultLexicon().FallbackText(gc)
}

func FallbackVisual(gc GenerationContext) VisualLaneSet {
	return DefaultLexicon().FallbackVisual(gc)
}

// FallbackText builds the four text lanes from templates without calling a
// model. The result always passes ValidateTextLines for gc.EffectiveTags().
func (lx *Lexicon) FallbackText(gc GenerationContext) TextLaneSet {
	tags := gc.EffectiveTags()
	anchors := lx.Anchors(gc)
	r := lx.slots(gc, anchors, lx.action(gc))

	var set TextLaneSet
	for i, tmpl := range textTemplates {
		set[i] = TextLine{
			Lane: TextLanes[i],
			Text: fitLine(r.Replace(tmpl), tags, ", with ", MaxTextRunes),
		}
	}
	return set
}

// FallbackVisual builds the four visual lanes and the negative prompt. The
// result always passes ValidateVisualLines for gc.EffectiveTags().
func (lx *Lexicon) FallbackVisual(gc GenerationContext) VisualLaneSet {
	return lx.fallbackVisual(gc, lx.action(gc))
}

func (lx *Lexicon) fallbackVisual(gc GenerationContext, act Action) VisualLaneSet {
	tags := gc.EffectiveTags()
	anchors := lx.Anchors(gc)
	r := lx.slots(gc, anchors, act)

	var set VisualLaneSet
	for i, tmpl := range visualTemplates {
		set.Prompts[i] = VisualPrompt{
			Lane:   VisualLanes[i],
			Prompt: fitLine(r.Replace(tmpl), tags, ", featuring ", MaxVisualRunes),
		}
	}
	set.NegativePrompt = lx.NegativePrompt(gc)
	return set
}

// Anchors returns three distinct props for gc, chosen deterministically from
// the most specific anchor table entry.
func (lx *Lexicon) Anchors(gc GenerationContext) []string {
	list, _, ok := lookup(lx.tables.Anchors, gc.Category, gc.Subcategory)
	if !ok || len(list) == 0 {
		list = lx.tables.GenericAnchors
	}
	seed := contextSeed(gc)

	out := make([]string, 0, 3)
	seen := make(map[string]bool, 3)
	add := func(a string) {
		a = collapseSpaces(a)
		if a == "" || seen[strings.ToLower(a)] || len(out) == 3 {
			return
		}
		seen[strings.ToLower(a)] = true
		out = append(out, a)
	}
	start := int(seed % uint32(len(list)))
	for i := range list {
		add(list[(start+i)%len(list)])
	}
	for _, a := range lx.tables.GenericAnchors {
		add(a)
	}
	for _, a := range []string{"spotlight", "confetti", "balloons"} {
		add(a)
	}
	return out
}

func (lx *Lexicon) NegativePrompt(gc GenerationContext) string {
	base := strings.TrimSpace(lx.tables.BaseNegative)
	if base == "" {
		base = "no watermark, no logo, no extra text"
	}
	extra, _, ok := lookup(lx.tables.Negatives, gc.Category, gc.Subcategory)
	if !ok || strings.TrimSpace(extra) == "" {
		return base
	}
	return base + ", " + strings.TrimSpace(extra)
}

func (lx *Lexicon) action(gc GenerationContext) Action {
	list := lx.actions(gc)
	return list[int((contextSeed(gc)>>3)%uint32(len(list)))]
}

// actions is the candidate list action picks from; it is never empty.
func (lx *Lexicon) actions(gc GenerationContext) []Action {
	list, _, ok := lookup(lx.tables.Actions, gc.Category, gc.Subcategory)
	if !ok || len(list) == 0 {
		list = lx.tables.GenericActions
	}
	if len(list) == 0 {
		return []Action{{Verb: "hold", Phrase: "holding the %s"}}
	}
	return list
}

func (lx *Lexicon) mood(tone string) string {
	if m, ok := lx.tables.ToneMoods[normKey(tone)]; ok && m != "" {
		return m
	}
	return "wild"
}

func (lx *Lexicon) slots(gc GenerationContext, anchors []string, act Action) *strings.Replacer {
	topic := strings.ToLower(gc.Topic())
	name := nameTag(gc)
	return strings.NewReplacer(
		"{Topic}", upperFirst(topic),
		"{topic}", topic,
		"{Name}", upperFirst(name),
		"{name}", name,
		"{a1}", anchors[0],
		"{a2}", anchors[1],
		"{a3}", anchors[2],
		"{mood}", lx.mood(gc.Tone),
		"{action}", fmt.Sprintf(act.Phrase, anchors[0]),
	)
}

// nameTag is the first effective tag, other than the topic, that looks like a
// proper name.
func nameTag(gc GenerationContext) string {
	topic := gc.Topic()
	for _, t := range gc.EffectiveTags() {
		if strings.EqualFold(t, topic) {
			continue
		}
		if properName.MatchString(t) {
			return t
		}
	}
	return genericName
}

// fitLine appends any tag the template text lacks and, when the result is too
// long, drops trailing template words until it fits. Tags are never dropped.
func fitLine(core string, tags []string, joiner string, max int) string {
	words := strings.Fields(core)
	cut := false
	for {
		body := cleanTail(strings.Join(words, " "), cut)
		line := withTags(body, tags, joiner)
		if runeLen(line) <= max || len(words) == 0 {
			return line
		}
		words = words[:len(words)-1]
		cut = true
	}
}

func withTags(body string, tags []string, joiner string) string {
	missing := missingTags(body, tags)
	switch {
	case len(missing) == 0:
		return body + "."
	case body == "":
		return strings.Join(missing, ", ") + "."
	default:
		return body + joiner + strings.Join(missing, ", ") + "."
	}
}

func cleanTail(s string, cut bool) string {
	s = strings.TrimRight(s, " ,.:;")
	if !cut {
		return s
	}
	for {
		i := strings.LastIndexByte(s, ' ')
		if i < 0 || !trailingFiller[strings.ToLower(s[i+1:])] {
			break
		}
		s = strings.TrimRight(s[:i], " ,.:;")
	}
	return s
}

func contextSeed(gc GenerationContext) uint32 {
	h := fnv.New32a()
	h.Write([]byte(normKey(gc.Category) + "." + normKey(gc.Subcategory) + "|" + normKey(gc.Tone)))
	for _, t := range gc.EffectiveTags() {
		h.Write([]byte("|" + strings.ToLower(t)))
	}
	return h.Sum32()
}

// upperFirst capitalizes the first rune unless lowercasing the capital would
// not give it back, which would break tag matching.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	u := unicode.ToUpper(r)
	if unicode.ToLower(u) != unicode.ToLower(r) {
		return s
	}
	return string(u) + s[size:]
}
