package vibe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"

	"vibe-generator/internal/llm"
)

const maxAttempts = 2

type Options struct {
	// Chat is required in ModeLive and ignored in ModeDisabled.
	Chat        llm.Completer
	Lexicon     *Lexicon
	Mode        Mode
	ChatOptions llm.Options
	Logger      *slog.Logger
}

// Generator turns a GenerationContext into validated lane sets. It holds no
// mutable state and is safe for concurrent use.
type Generator struct {
	chat   llm.Completer
	lx     *Lexicon
	mode   Mode
	opts   llm.Options
	logger *slog.Logger
}

func New(opts Options) (*Generator, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeLive
	}
	lx := opts.Lexicon
	if lx == nil {
		lx = DefaultLexicon()
	}
	chat := opts.Chat
	switch mode {
	case ModeDisabled:
		chat = CannedCompleter{Lexicon: lx}
	case ModeLive:
		if chat == nil {
			return nil, errors.New("vibe: live mode requires a chat completer")
		}
	default:
		return nil, fmt.Errorf("vibe: unknown mode %q", mode)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	chatOpts := opts.ChatOptions
	chatOpts.ResponseFormat = llm.FormatJSON
	return &Generator{chat: chat, lx: lx, mode: mode, opts: chatOpts, logger: logger}, nil
}

func (g *Generator) Mode() Mode        { return g.mode }
func (g *Generator) Lexicon() *Lexicon { return g.lx }

func (g *Generator) Text(ctx context.Context, gc GenerationContext) TextResult {
	tags := gc.EffectiveTags()
	lines, st := attempts(ctx, g, "text",
		func(hint *RepairHint) []llm.Message { return g.lx.TextPrompt(gc, hint) },
		func(raw string) (TextLaneSet, *ContractError, error) {
			cand, err := parseTextLines(raw)
			if err != nil {
				return TextLaneSet{}, nil, err
			}
			v := g.lx.ValidateTextLines(cand, tags)
			if !v.Valid {
				return TextLaneSet{}, v.Err, nil
			}
			return v.Lines, nil, nil
		})
	if st.outcome == OutcomeFallback {
		lines = g.lx.FallbackText(gc)
		if v := g.lx.ValidateTextLines(lines[:], tags); !v.Valid {
			panic(fmt.Sprintf("vibe: fallback text is invalid for %+v: %v", gc, v.Err))
		}
	}
	return TextResult{Lines: lines, Tags: tags, Outcome: st.outcome, Reason: st.reason, Calls: st.calls, Mode: g.mode}
}

func (g *Generator) Visual(ctx context.Context, gc GenerationContext) VisualResult {
	tags := gc.EffectiveTags()
	visual, st := attempts(ctx, g, "visual",
		func(hint *RepairHint) []llm.Message { return g.lx.VisualPrompt(gc, hint) },
		func(raw string) (VisualLaneSet, *ContractError, error) {
			cand, err := parseVisualCandidate(raw)
			if err != nil {
				return VisualLaneSet{}, nil, err
			}
			v := g.lx.ValidateVisualLines(cand, tags)
			if !v.Valid {
				return VisualLaneSet{}, v.Err, nil
			}
			return v.Visual, nil, nil
		})
	if st.outcome == OutcomeFallback {
		visual = g.lx.FallbackVisual(gc)
		if v := g.lx.ValidateVisualLines(visual.Candidate(), tags); !v.Valid {
			panic(fmt.Sprintf("vibe: fallback visual is invalid for %+v: %v", gc, v.Err))
		}
	}
	return VisualResult{Visual: visual, Tags: tags, Outcome: st.outcome, Reason: st.reason, Calls: st.calls, Mode: g.mode}
}

// Both runs text and visual generation concurrently. Neither side can fail.
func (g *Generator) Both(ctx context.Context, gc GenerationContext) (TextResult, VisualResult) {
	var (
		eg     errgroup.Group
		text   TextResult
		visual VisualResult
	)
	eg.Go(func() error {
		text = g.Text(ctx, gc)
		return nil
	})
	eg.Go(func() error {
		visual = g.Visual(ctx, gc)
		return nil
	})
	_ = eg.Wait()
	return text, visual
}

type status struct {
	outcome Outcome
	reason  Reason
	calls   int
}

// attempts runs the initial call and at most one repair call. accept parses and
// validates raw model output; a parse error or contract error fails the attempt.
func attempts[T any](
	ctx context.Context,
	g *Generator,
	kind string,
	prompt func(*RepairHint) []llm.Message,
	accept func(raw string) (T, *ContractError, error),
) (T, status) {
	var (
		zero T
		st   status
		hint *RepairHint
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 && ctx.Err() != nil {
			if st.reason == ReasonNone {
				st.reason = classify(ctx.Err())
			}
			break
		}
		st.calls++
		log := g.logger.With("kind", kind, "attempt", attempt, "mode", g.mode)

		raw, err := g.chat.Complete(ctx, prompt(hint), g.opts)
		if err != nil {
			st.reason = classify(err)
			log.Warn("chat call failed", "reason", st.reason, "err", err)
			hint = &RepairHint{Detail: "no usable answer was received"}
			continue
		}

		v, cerr, perr := accept(raw)
		switch {
		case perr != nil:
			st.reason = ReasonInsufficientCandidates
			log.Warn("unparseable response", "err", perr)
			hint = &RepairHint{Detail: "the answer was not the required JSON object"}
		case cerr != nil:
			st.reason = ReasonInsufficientCandidates
			log.Info("candidate rejected", "rule", cerr.Rule, "lane", cerr.Lane, "detail", cerr.Detail)
			hint = &RepairHint{Rule: cerr.Rule, Lane: cerr.Lane, Detail: fmt.Sprintf("%s, %s", cerr.Rule, cerr.Detail)}
		default:
			st.outcome = OutcomeModel
			if attempt > 1 {
				st.outcome = OutcomeRepaired
			}
			st.reason = ReasonNone
			log.Debug("candidate accepted", "outcome", st.outcome)
			return v, st
		}
	}
	st.outcome = OutcomeFallback
	g.logger.Info("using fallback", "kind", kind, "reason", st.reason, "calls", st.calls)
	return zero, st
}

func classify(err error) Reason {
	if errors.Is(err, llm.ErrContentFiltered) {
		return ReasonContentFilter
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	return ReasonAPIError
}
