package vibe

import "fmt"

const (
	MaxTextRunes   = 100
	MaxVisualRunes = 300
)

type TextLane string

const (
	LanePlatform  TextLane = "platform"
	LaneAudience  TextLane = "audience"
	LaneSkill     TextLane = "skill"
	LaneAbsurdity TextLane = "absurdity"
)

var TextLanes = [4]TextLane{LanePlatform, LaneAudience, LaneSkill, LaneAbsurdity}

type VisualLane string

const (
	LaneObjects  VisualLane = "objects"
	LaneGroup    VisualLane = "group"
	LaneSolo     VisualLane = "solo"
	LaneCreative VisualLane = "creative"
)

var VisualLanes = [4]VisualLane{LaneObjects, LaneGroup, LaneSolo, LaneCreative}

type GenerationContext struct {
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Tone        string   `json:"tone"`
	Tags        []string `json:"tags"`
	Entity      string   `json:"entity,omitempty"`
}

type TextLine struct {
	Lane TextLane `json:"lane"`
	Text string   `json:"text"`
}

// TextLaneSet is always in TextLanes order.
type TextLaneSet [4]TextLine

func (s TextLaneSet) Texts() []string {
	out := make([]string, 0, len(s))
	for _, l := range s {
		out = append(out, l.Text)
	}
	return out
}

type VisualPrompt struct {
	Lane   VisualLane `json:"lane"`
	Prompt string     `json:"prompt"`
}

// VisualCandidate is unvalidated model output; VisualLaneSet is what validation produces.
type VisualCandidate struct {
	Prompts        []VisualPrompt
	NegativePrompt string
}

type VisualLaneSet struct {
	Prompts        [4]VisualPrompt `json:"visualOptions"`
	NegativePrompt string          `json:"negativePrompt"`
}

func (s VisualLaneSet) Candidate() VisualCandidate {
	return VisualCandidate{Prompts: s.Prompts[:], NegativePrompt: s.NegativePrompt}
}

type Outcome string

const (
	OutcomeModel    Outcome = "model"
	OutcomeRepaired Outcome = "repaired"
	OutcomeFallback Outcome = "fallback"
)

type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonContentFilter          Reason = "content-filter"
	ReasonTimeout                Reason = "timeout"
	ReasonAPIError               Reason = "api-error"
	ReasonInsufficientCandidates Reason = "insufficient-candidates"
)

// TextResult carries the four lines and how they were produced. Tags is the
// effective tag set the lines were checked against, after trimming and capping.
type TextResult struct {
	Lines   TextLaneSet `json:"lines"`
	Tags    []string    `json:"tags"`
	Outcome Outcome     `json:"outcome"`
	Reason  Reason      `json:"reason,omitempty"`
	Calls   int         `json:"calls"`
	Mode    Mode        `json:"mode"`
}

func (r TextResult) UsedFallback() bool { return r.Outcome == OutcomeFallback }

type VisualResult struct {
	Visual  VisualLaneSet `json:"visual"`
	Tags    []string      `json:"tags"`
	Outcome Outcome       `json:"outcome"`
	Reason  Reason        `json:"reason,omitempty"`
	Calls   int           `json:"calls"`
	Mode    Mode          `json:"mode"`
}

func (r VisualResult) UsedFallback() bool { return r.Outcome == OutcomeFallback }

type Mode string

const (
	ModeLive     Mode = "live"
	ModeDisabled Mode = "disabled"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeLive:
		return ModeLive, nil
	case ModeDisabled, "off", "stub":
		return ModeDisabled, nil
	}
	return "", fmt.Errorf("unknown generation mode %q", s)
}
