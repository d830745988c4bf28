package vibe

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Strictness string

const (
	Strict  Strictness = "strict"
	Lenient Strictness = "lenient"
)

// Action is a solo-lane activity. Phrase takes one anchor through %s and must
// contain a form of Verb.
type Action struct {
	Verb   string `yaml:"verb"`
	Phrase string `yaml:"phrase"`
}

// Tables is the raw vocabulary behind prompts, fallbacks and validation.
// Anchor, action and negative keys are "category" or "category.subcategory",
// lowercased.
type Tables struct {
	Anchors        map[string][]string `yaml:"anchors"`
	GenericAnchors []string            `yaml:"generic_anchors"`

	Actions        map[string][]Action `yaml:"actions"`
	GenericActions []Action            `yaml:"generic_actions"`
	ExtraVerbs     []string            `yaml:"extra_verbs"`

	Negatives    map[string]string `yaml:"negatives"`
	BaseNegative string            `yaml:"base_negative"`

	Tones       map[string]string `yaml:"tones"`
	GenericTone string            `yaml:"generic_tone"`
	ToneMoods   map[string]string `yaml:"tone_moods"`

	Cliches []string `yaml:"cliches"`

	PersonWords          []string `yaml:"person_words"`
	SingularWords        []string `yaml:"singular_words"`
	GroupWords           []string `yaml:"group_words"`
	CreativeWords        []string `yaml:"creative_words"`
	LenientCreativeWords []string `yaml:"lenient_creative_words"`
	StyleWords           []string `yaml:"style_words"`
}

// Lexicon is an immutable, compiled view of Tables. The word checks are plain
// word matching, not a semantic parser: phrasing outside the vocabulary can
// slip through or be rejected.
type Lexicon struct {
	tables     Tables
	strictness Strictness

	person   *regexp.Regexp
	singular *regexp.Regexp
	group    *regexp.Regexp
	creative *regexp.Regexp
	style    *regexp.Regexp
	verbs    *regexp.Regexp
	cliches  *regexp.Regexp
}

var (
	defaultOnce    sync.Once
	defaultLexicon *Lexicon
)

func DefaultLexicon() *Lexicon {
	defaultOnce.Do(func() {
		defaultLexicon = NewLexicon(DefaultTables(), Strict)
	})
	return defaultLexicon
}

func NewLexicon(t Tables, strictness Strictness) *Lexicon {
	if strictness != Lenient {
		strictness = Strict
	}
	t = t.normalized()

	creative := t.CreativeWords
	if strictness == Lenient {
		creative = append(append([]string(nil), creative...), t.LenientCreativeWords...)
	}

	verbs := append([]string(nil), t.ExtraVerbs...)
	for _, a := range t.GenericActions {
		verbs = append(verbs, a.Verb)
	}
	for _, key := range sortedKeys(t.Actions) {
		for _, a := range t.Actions[key] {
			verbs = append(verbs, a.Verb)
		}
	}
	var forms []string
	for _, v := range verbs {
		forms = append(forms, verbForms(v)...)
	}

	return &Lexicon{
		tables:     t,
		strictness: strictness,
		person:     wordMatcher(t.PersonWords),
		singular:   wordMatcher(t.SingularWords),
		group:      wordMatcher(t.GroupWords),
		creative:   wordMatcher(creative),
		style:      wordMatcher(t.StyleWords),
		verbs:      wordMatcher(forms),
		cliches:    wordMatcher(t.Cliches),
	}
}

// LoadLexicon reads a YAML file of Tables and merges it over the defaults.
// Maps merge per key, non-empty lists and strings replace.
func LoadLexicon(path string, strictness Strictness) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var overlay Tables
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	lx := NewLexicon(DefaultTables().merge(overlay), strictness)
	if err := lx.checkFallbacks(); err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lx, nil
}

// checkFallbacks rejects vocabularies that would fail their own fallback
// output. Every keyed category and the generic path is tried with every known
// tone, and the visual side with every action the category can pick.
func (lx *Lexicon) checkFallbacks() error {
	probes := []GenerationContext{{}}
	seen := map[string]bool{}
	for _, keys := range [][]string{
		sortedKeys(lx.tables.Anchors),
		sortedKeys(lx.tables.Actions),
		sortedKeys(lx.tables.Negatives),
	} {
		for _, key := range keys {
			if seen[key] {
				continue
			}
			seen[key] = true
			cat, sub, _ := strings.Cut(key, ".")
			probes = append(probes, GenerationContext{Category: cat, Subcategory: sub})
		}
	}
	tones := append([]string{""}, sortedKeys(lx.tables.Tones)...)
	tones = append(tones, sortedKeys(lx.tables.ToneMoods)...)

	for _, base := range probes {
		for _, tone := range tones {
			gc := base
			gc.Tone = tone
			tags := gc.EffectiveTags()
			text := lx.FallbackText(gc)
			if v := lx.ValidateTextLines(text[:], tags); !v.Valid {
				return fmt.Errorf("fallback text for %q/%q tone %q: %w", gc.Category, gc.Subcategory, tone, v.Err)
			}
			for _, act := range lx.actions(gc) {
				if v := lx.ValidateVisualLines(lx.fallbackVisual(gc, act).Candidate(), tags); !v.Valid {
					return fmt.Errorf("fallback visual for %q/%q tone %q action %q: %w", gc.Category, gc.Subcategory, tone, act.Verb, v.Err)
				}
			}
		}
	}
	return nil
}

func (lx *Lexicon) Strictness() Strictness { return lx.strictness }

func (t Tables) merge(o Tables) Tables {
	t.Anchors = mergeMap(t.Anchors, o.Anchors)
	t.Actions = mergeMap(t.Actions, o.Actions)
	t.Negatives = mergeMap(t.Negatives, o.Negatives)
	t.Tones = mergeMap(t.Tones, o.Tones)
	t.ToneMoods = mergeMap(t.ToneMoods, o.ToneMoods)

	replaceList(&t.GenericAnchors, o.GenericAnchors)
	replaceList(&t.ExtraVerbs, o.ExtraVerbs)
	replaceList(&t.Cliches, o.Cliches)
	replaceList(&t.PersonWords, o.PersonWords)
	replaceList(&t.SingularWords, o.SingularWords)
	replaceList(&t.GroupWords, o.GroupWords)
	replaceList(&t.CreativeWords, o.CreativeWords)
	replaceList(&t.LenientCreativeWords, o.LenientCreativeWords)
	replaceList(&t.StyleWords, o.StyleWords)
	if len(o.GenericActions) > 0 {
		t.GenericActions = o.GenericActions
	}
	if o.BaseNegative != "" {
		t.BaseNegative = o.BaseNegative
	}
	if o.GenericTone != "" {
		t.GenericTone = o.GenericTone
	}
	return t
}

func (t Tables) normalized() Tables {
	t.Anchors = normalizeKeys(t.Anchors)
	t.Actions = normalizeKeys(t.Actions)
	t.Negatives = normalizeKeys(t.Negatives)
	t.Tones = normalizeKeys(t.Tones)
	t.ToneMoods = normalizeKeys(t.ToneMoods)
	return t
}

func mergeMap[V any](base, over map[string]V) map[string]V {
	out := make(map[string]V, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func replaceList(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

func normalizeKeys[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[normKey(k)] = v
	}
	return out
}

func normKey(s string) string {
	return strings.ToLower(collapseSpaces(s))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// lookup resolves category/subcategory against a keyed table, in order:
// exact "category.subcategory", partial subcategory under the same category,
// exact category, partial category. The matched key is returned; ok is false
// when the caller should use its generic default.
func lookup[V any](m map[string]V, category, subcategory string) (V, string, bool) {
	var zero V
	cat, sub := normKey(category), normKey(subcategory)

	if cat != "" && sub != "" {
		if v, ok := m[cat+"."+sub]; ok {
			return v, cat + "." + sub, true
		}
		for _, k := range sortedKeys(m) {
			kc, ks, found := strings.Cut(k, ".")
			if !found || kc != cat {
				continue
			}
			if strings.Contains(sub, ks) || strings.Contains(ks, sub) {
				return m[k], k, true
			}
		}
	}
	if cat == "" {
		return zero, "", false
	}
	if v, ok := m[cat]; ok {
		return v, cat, true
	}
	for _, k := range sortedKeys(m) {
		if strings.Contains(k, ".") {
			continue
		}
		if strings.Contains(cat, k) || strings.Contains(k, cat) {
			return m[k], k, true
		}
	}
	return zero, "", false
}

func wordMatcher(words []string) *regexp.Regexp {
	alts := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		alts = append(alts, regexp.QuoteMeta(w))
	}
	if len(alts) == 0 {
		return nil
	}
	// longest first so multi-word entries win over their prefixes
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// matchOutside reports whether re matches lower anywhere that does not overlap
// one of spans. Forbidden-word checks pass the required-tag spans: a tag the
// user demanded cannot be held against the text.
func matchOutside(re *regexp.Regexp, lower string, spans []span) (string, bool) {
	if re == nil {
		return "", false
	}
	for _, loc := range re.FindAllStringIndex(lower, -1) {
		if !overlapsAny(loc[0], loc[1], spans) {
			return lower[loc[0]:loc[1]], true
		}
	}
	return "", false
}

func verbForms(verb string) []string {
	v := strings.ToLower(strings.TrimSpace(verb))
	if v == "" {
		return nil
	}
	forms := []string{v}

	switch {
	case hasAnySuffix(v, "s", "sh", "ch", "x", "z", "o"):
		forms = append(forms, v+"es")
	case strings.HasSuffix(v, "y") && len(v) > 1 && !isVowel(v[len(v)-2]):
		forms = append(forms, v[:len(v)-1]+"ies")
	default:
		forms = append(forms, v+"s")
	}

	switch {
	case strings.HasSuffix(v, "ie"):
		forms = append(forms, v[:len(v)-2]+"ying", v+"d")
	case strings.HasSuffix(v, "e") && !strings.HasSuffix(v, "ee"):
		forms = append(forms, v[:len(v)-1]+"ing", v+"d")
	case doublesFinal(v):
		last := v[len(v)-1:]
		forms = append(forms, v+last+"ing", v+last+"ed")
	case strings.HasSuffix(v, "y") && len(v) > 1 && !isVowel(v[len(v)-2]):
		forms = append(forms, v+"ing", v[:len(v)-1]+"ied")
	default:
		forms = append(forms, v+"ing", v+"ed")
	}
	return forms
}

// doublesFinal covers one-syllable consonant-vowel-consonant verbs: run, spin, hit.
func doublesFinal(v string) bool {
	n := len(v)
	if n < 3 || strings.ContainsAny(v[n-1:], "wxy") {
		return false
	}
	if isVowel(v[n-1]) || !isVowel(v[n-2]) || isVowel(v[n-3]) {
		return false
	}
	groups := 0
	prev := false
	for i := 0; i < n; i++ {
		cur := isVowel(v[i])
		if cur && !prev {
			groups++
		}
		prev = cur
	}
	return groups == 1
}

func isVowel(b byte) bool { return strings.IndexByte("aeiou", b) >= 0 }

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, x := range suffixes {
		if strings.HasSuffix(s, x) {
			return true
		}
	}
	return false
}

// Tones lists the tone names with dedicated guidance.
func (lx *Lexicon) Tones() []string { return sortedKeys(lx.tables.Tones) }

// CategoryFor finds the category a known subcategory belongs to.
func (lx *Lexicon) CategoryFor(subcategory string) (string, bool) {
	sub := normKey(subcategory)
	if sub == "" {
		return "", false
	}
	for _, key := range sortedKeys(lx.tables.Anchors) {
		cat, s, ok := strings.Cut(key, ".")
		if ok && s == sub {
			return cat, true
		}
	}
	return "", false
}

// Categories lists the top-level categories with their own anchors.
func (lx *Lexicon) Categories() []string {
	var out []string
	for _, key := range sortedKeys(lx.tables.Anchors) {
		if !strings.Contains(key, ".") {
			out = append(out, key)
		}
	}
	return out
}
