package vibe

import (
	"fmt"
	"strings"
)

type Rule string

const (
	RuleLaneCount     Rule = "lane-count"
	RuleUnknownLane   Rule = "unknown-lane"
	RuleDuplicateLane Rule = "duplicate-lane"
	RuleEmpty         Rule = "empty"
	RuleLength        Rule = "length"
	RuleMissingTag    Rule = "missing-tag"
	RulePunctuation   Rule = "punctuation"
	RuleCliche        Rule = "cliche"
	RuleObjectsPerson Rule = "objects-person"
	RuleGroupPeople   Rule = "group-people"
	RuleSoloPerson    Rule = "solo-person"
	RuleSoloVerb      Rule = "solo-verb"
	RuleCreative      Rule = "creative-symbolic"
	RuleStyleKeyword  Rule = "style-keyword"
	RuleNegative      Rule = "negative-prompt"
)

func (r Rule) Structural() bool {
	switch r {
	case RuleLaneCount, RuleUnknownLane, RuleDuplicateLane:
		return true
	}
	return false
}

type ContractError struct {
	Rule   Rule
	Lane   string
	Detail string
}

func (e *ContractError) Error() string {
	if e.Lane == "" {
		return fmt.Sprintf("contract %s: %s", e.Rule, e.Detail)
	}
	return fmt.Sprintf("contract %s (lane %s): %s", e.Rule, e.Lane, e.Detail)
}

type TextValidation struct {
	Valid bool
	Lines TextLaneSet
	Err   *ContractError
}

type VisualValidation struct {
	Valid  bool
	Visual VisualLaneSet
	Err    *ContractError
}

func ValidateTextLines(candidate []TextLine, requiredTags []string) TextValidation {
	return DefaultLexicon().ValidateTextLines(candidate, requiredTags)
}

func ValidateVisualLines(candidate VisualCandidate, requiredTags []string) VisualValidation {
	return DefaultLexicon().ValidateVisualLines(candidate, requiredTags)
}

// ValidateTextLines checks shape first, then each line in lane order, and
// stops at the first violation.
func (lx *Lexicon) ValidateTextLines(candidate []TextLine, requiredTags []string) TextValidation {
	var set TextLaneSet
	lanes := make([]string, len(candidate))
	for i, l := range candidate {
		lanes[i] = string(l.Lane)
	}
	order, cerr := arrangeLanes(lanes, laneNames(TextLanes[:]))
	if cerr != nil {
		return TextValidation{Err: cerr}
	}
	for i, idx := range order {
		set[i] = TextLine{Lane: TextLanes[i], Text: strings.TrimSpace(candidate[idx].Text)}
	}

	for _, line := range set {
		if cerr := lx.checkTextLine(line, requiredTags); cerr != nil {
			return TextValidation{Err: cerr}
		}
	}
	return TextValidation{Valid: true, Lines: set}
}

func (lx *Lexicon) checkTextLine(line TextLine, tags []string) *ContractError {
	lane := string(line.Lane)
	if line.Text == "" {
		return &ContractError{Rule: RuleEmpty, Lane: lane, Detail: "text is empty"}
	}
	if n := runeLen(line.Text); n > MaxTextRunes {
		return &ContractError{Rule: RuleLength, Lane: lane, Detail: fmt.Sprintf("%d characters, limit is %d", n, MaxTextRunes)}
	}
	if missing := missingTags(line.Text, tags); len(missing) > 0 {
		return &ContractError{Rule: RuleMissingTag, Lane: lane, Detail: fmt.Sprintf("missing tag %q", missing[0])}
	}
	// Only em-dashes and double hyphens are banned. Apostrophes, single
	// hyphens, ! and ? pass.
	if strings.Contains(line.Text, "—") || strings.Contains(line.Text, "--") {
		return &ContractError{Rule: RulePunctuation, Lane: lane, Detail: "em-dash or double hyphen"}
	}
	lower := matchText(line.Text)
	if phrase, ok := matchOutside(lx.cliches, lower, tagSpans(lower, tags)); ok {
		return &ContractError{Rule: RuleCliche, Lane: lane, Detail: fmt.Sprintf("cliche %q", phrase)}
	}
	return nil
}

// ValidateVisualLines applies the text-level checks plus the lane semantics:
// objects has no people, group has several, solo has one person doing
// something, creative is symbolic or abstract.
func (lx *Lexicon) ValidateVisualLines(candidate VisualCandidate, requiredTags []string) VisualValidation {
	var set VisualLaneSet
	lanes := make([]string, len(candidate.Prompts))
	for i, p := range candidate.Prompts {
		lanes[i] = string(p.Lane)
	}
	order, cerr := arrangeLanes(lanes, laneNames(VisualLanes[:]))
	if cerr != nil {
		return VisualValidation{Err: cerr}
	}
	for i, idx := range order {
		set.Prompts[i] = VisualPrompt{Lane: VisualLanes[i], Prompt: strings.TrimSpace(candidate.Prompts[idx].Prompt)}
	}
	set.NegativePrompt = strings.TrimSpace(candidate.NegativePrompt)

	for _, p := range set.Prompts {
		if cerr := lx.checkVisualPrompt(p, requiredTags); cerr != nil {
			return VisualValidation{Err: cerr}
		}
	}
	if set.NegativePrompt == "" {
		return VisualValidation{Err: &ContractError{Rule: RuleNegative, Detail: "negative prompt is empty"}}
	}
	return VisualValidation{Valid: true, Visual: set}
}

func (lx *Lexicon) checkVisualPrompt(p VisualPrompt, tags []string) *ContractError {
	lane := string(p.Lane)
	if p.Prompt == "" {
		return &ContractError{Rule: RuleEmpty, Lane: lane, Detail: "prompt is empty"}
	}
	if n := runeLen(p.Prompt); n > MaxVisualRunes {
		return &ContractError{Rule: RuleLength, Lane: lane, Detail: fmt.Sprintf("%d characters, limit is %d", n, MaxVisualRunes)}
	}
	if missing := missingTags(p.Prompt, tags); len(missing) > 0 {
		return &ContractError{Rule: RuleMissingTag, Lane: lane, Detail: fmt.Sprintf("missing tag %q", missing[0])}
	}

	lower := matchText(p.Prompt)
	spans := tagSpans(lower, tags)
	if word, ok := matchOutside(lx.style, lower, spans); ok {
		return &ContractError{Rule: RuleStyleKeyword, Lane: lane, Detail: fmt.Sprintf("style keyword %q", word)}
	}

	switch p.Lane {
	case LaneObjects:
		if word, ok := matchOutside(lx.person, lower, spans); ok {
			return &ContractError{Rule: RuleObjectsPerson, Lane: lane, Detail: fmt.Sprintf("person word %q", word)}
		}
	case LaneGroup:
		if _, ok := matchOutside(lx.group, lower, nil); !ok {
			return &ContractError{Rule: RuleGroupPeople, Lane: lane, Detail: "no group or people word"}
		}
	case LaneSolo:
		if _, ok := matchOutside(lx.singular, lower, nil); !ok {
			return &ContractError{Rule: RuleSoloPerson, Lane: lane, Detail: "no single person word"}
		}
		if _, ok := matchOutside(lx.verbs, lower, nil); !ok {
			return &ContractError{Rule: RuleSoloVerb, Lane: lane, Detail: "no action verb"}
		}
	case LaneCreative:
		if _, ok := matchOutside(lx.creative, lower, nil); !ok {
			want := "symbolic or abstract"
			if lx.strictness == Lenient {
				want += " (or arrangement, metaphor)"
			}
			return &ContractError{Rule: RuleCreative, Lane: lane, Detail: "needs " + want}
		}
	}
	return nil
}

// arrangeLanes maps candidate lanes onto the fixed lane order and returns,
// for each fixed lane, the candidate index that fills it.
func arrangeLanes(got []string, want []string) ([]int, *ContractError) {
	if len(got) != len(want) {
		return nil, &ContractError{Rule: RuleLaneCount, Detail: fmt.Sprintf("got %d lanes, want %d", len(got), len(want))}
	}
	pos := make(map[string]int, len(want))
	for i, w := range want {
		pos[w] = i
	}
	order := make([]int, len(want))
	filled := make([]bool, len(want))
	for i, g := range got {
		lane := strings.ToLower(strings.TrimSpace(g))
		at, ok := pos[lane]
		if !ok {
			return nil, &ContractError{Rule: RuleUnknownLane, Lane: g, Detail: fmt.Sprintf("unknown lane %q", g)}
		}
		if filled[at] {
			return nil, &ContractError{Rule: RuleDuplicateLane, Lane: lane, Detail: "lane appears twice"}
		}
		filled[at] = true
		order[at] = i
	}
	return order, nil
}

func laneNames[L ~string](lanes []L) []string {
	out := make([]string, len(lanes))
	for i, l := range lanes {
		out[i] = string(l)
	}
	return out
}

// matchText is the lowercased form word checks run against; curly apostrophes
// fold to straight ones. Tag spans must be computed on the same string.
func matchText(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "’", "'"))
}
