package vibe

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxTagRunes      = 18
	MaxEffectiveTags = 5
)

// EffectiveTags is the subcategory followed by the user tags, normalized and
// deduplicated. Every generated line or prompt must contain all of them.
func (gc GenerationContext) EffectiveTags() []string {
	raw := make([]string, 0, len(gc.Tags)+1)
	raw = append(raw, gc.Subcategory)
	raw = append(raw, gc.Tags...)
	return NormalizeTags(raw)
}

// Topic is what every lane is about: the subcategory when present. The bare
// category is never used because, unlike a tag, it is not exempt from the
// word checks.
func (gc GenerationContext) Topic() string {
	if t := normalizeTag(gc.Subcategory); t != "" {
		return t
	}
	return "big day"
}

func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
		if len(out) == MaxEffectiveTags {
			break
		}
	}
	return out
}

func normalizeTag(s string) string {
	s = strings.NewReplacer("—", " ", "–", " ").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", " ")
	}
	s = collapseSpaces(s)
	if utf8.RuneCountInString(s) > MaxTagRunes {
		s = cutWords(s, MaxTagRunes)
	}
	return strings.Trim(s, " ,.:;-")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cutWords shortens s to at most max runes, on a word boundary when one exists.
func cutWords(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if runes[max] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimSpace(cut)
}

func containsFold(text, tag string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(tag))
}

func missingTags(text string, tags []string) []string {
	var out []string
	for _, t := range tags {
		if t == "" {
			continue
		}
		if !containsFold(text, t) {
			out = append(out, t)
		}
	}
	return out
}

type span struct{ start, end int }

// tagSpans returns the byte ranges of whole-word tag occurrences in lower,
// which must already be in matchText form.
func tagSpans(lower string, tags []string) []span {
	var out []span
	for _, t := range tags {
		t = matchText(t)
		if t == "" {
			continue
		}
		for from := 0; from < len(lower); {
			i := strings.Index(lower[from:], t)
			if i < 0 {
				break
			}
			start, end := from+i, from+i+len(t)
			if wordEdge(lower, start, end) {
				out = append(out, span{start: start, end: end})
			}
			from = start + 1
		}
	}
	return out
}

func wordEdge(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func overlapsAny(start, end int, spans []span) bool {
	for _, s := range spans {
		if start < s.end && s.start < end {
			return true
		}
	}
	return false
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
