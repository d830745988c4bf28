package handlers

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"vibe-generator/internal/vibe"
)

var (
	errEmptyRequest = errors.New("empty vibe request")
	hashtagRegex    = regexp.MustCompile(`#([\p{L}\p{N}_']+)`)
)

// parseVibeArgs reads "category | subcategory | tone | tag, tag" or free text
// like "hockey savage #GoTeam". Hashtags become tags in both forms; in free
// text a known tone word is pulled out and the rest is the subject.
func parseVibeArgs(lx *vibe.Lexicon, args string) (vibe.GenerationContext, error) {
	var gc vibe.GenerationContext
	var tags []string
	for _, m := range hashtagRegex.FindAllStringSubmatch(args, -1) {
		tags = append(tags, strings.ReplaceAll(m[1], "_", " "))
	}
	rest := strings.Join(strings.Fields(hashtagRegex.ReplaceAllString(args, " ")), " ")

	if strings.Contains(rest, "|") {
		fields := strings.Split(rest, "|")
		field := func(i int) string {
			if i < len(fields) {
				return strings.TrimSpace(fields[i])
			}
			return ""
		}
		gc.Category = field(0)
		gc.Subcategory = field(1)
		gc.Tone = strings.ToLower(field(2))
		for _, t := range strings.Split(field(3), ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	} else {
		gc.Tone, rest = detectTone(lx, rest)
		if slices.Contains(lx.Categories(), strings.ToLower(rest)) {
			gc.Category = rest
		} else {
			gc.Subcategory = rest
		}
	}

	if gc.Category == "" && gc.Subcategory != "" {
		if cat, ok := lx.CategoryFor(gc.Subcategory); ok {
			gc.Category = cat
		}
	}
	gc.Tags = tags

	if gc.Category == "" && gc.Subcategory == "" && len(tags) == 0 {
		return gc, errEmptyRequest
	}
	return gc, nil
}

// detectTone removes the first word naming a known tone.
func detectTone(lx *vibe.Lexicon, text string) (string, string) {
	tones := lx.Tones()
	words := strings.Fields(text)
	for i, w := range words {
		candidate := strings.ToLower(strings.Trim(w, ".,!?;:"))
		if slices.Contains(tones, candidate) {
			rest := append(words[:i:i], words[i+1:]...)
			return candidate, strings.Join(rest, " ")
		}
	}
	return "", text
}
