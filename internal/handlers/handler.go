package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vibe-generator/internal/debounce"
	"vibe-generator/internal/gemini"
	"vibe-generator/internal/session"
	"vibe-generator/internal/telegram"
	"vibe-generator/internal/vibe"
)

// Messenger is the slice of the Telegram client the handler drives.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendTyping(chatID int64)
	SendTextWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID string, text string, alert bool) error
	SendPhotoDataURL(chatID int64, dataURL string, caption string) error
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, req gemini.ImageRequest) (string, error)
}

type Options struct {
	Telegram  Messenger
	Generator *vibe.Generator
	// Images is optional; without it Render replies with the final prompt.
	Images   ImageGenerator
	Sessions *session.Store
	Logger   *slog.Logger
	// RenderDelay coalesces picker redraws from rapid taps. Zero redraws inline.
	RenderDelay time.Duration
}

type Handler struct {
	tg       Messenger
	gen      *vibe.Generator
	images   ImageGenerator
	sessions *session.Store
	logger   *slog.Logger
	redraw   *debounce.Debouncer[redrawKey, int]
}

type redrawKey struct {
	chatID int64
	userID int64
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		tg:       opts.Telegram,
		gen:      opts.Generator,
		images:   opts.Images,
		sessions: opts.Sessions,
		logger:   logger,
	}
	if opts.RenderDelay > 0 {
		h.redraw = debounce.New(debounce.Options[redrawKey, int]{
			Delay: opts.RenderDelay,
			OnFlush: func(k redrawKey, messageID int) {
				if err := h.renderPicker(k.chatID, k.userID, messageID); err != nil {
					h.logger.Error("picker redraw failed", "chat_id", k.chatID, "err", err)
				}
			},
		})
	}
	return h
}

// Close drops pending picker redraws.
func (h *Handler) Close() {
	if h.redraw != nil {
		h.redraw.Stop()
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	userID := msg.From.ID
	username := msg.From.UserName

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, username, msg)
	}

	if strings.TrimSpace(msg.Text) != "" {
		return h.handleVibe(ctx, chatID, userID, username, msg.Text)
	}

	return nil
}

const helpText = "✨ Vibe Generator\n\n" +
	"Tell me the occasion and I write four caption lines and four image ideas.\n\n" +
	"Commands:\n" +
	"/vibe category | subcategory | tone | tag, tag\n" +
	"/vibe hockey savage #GoTeam - free text works too\n" +
	"/pick <line> <visual> [layout] - choose and render\n" +
	"/layouts - caption layouts\n" +
	"/tones - known tones\n" +
	"/clear - forget the last vibe\n\n" +
	"Plain messages are treated like /vibe."

func (h *Handler) handleCommand(ctx context.Context, chatID int64, userID int64, username string, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "help":
		return h.tg.SendText(chatID, helpText)
	case "vibe":
		return h.handleVibe(ctx, chatID, userID, username, msg.CommandArguments())
	case "pick":
		return h.handlePick(ctx, chatID, userID, msg.CommandArguments())
	case "layouts":
		return h.tg.SendText(chatID, layoutsText())
	case "tones":
		return h.tg.SendText(chatID, "Tones: "+strings.Join(h.gen.Lexicon().Tones(), ", ")+"\nAnything else works too, it just gets generic guidance.")
	case "clear":
		h.sessions.Clear(userID)
		return h.tg.SendText(chatID, "✅ Cleared.")
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Try /help.")
	}
}

func (h *Handler) handleVibe(ctx context.Context, chatID int64, userID int64, username string, args string) error {
	gc, err := parseVibeArgs(h.gen.Lexicon(), args)
	if err != nil {
		return h.tg.SendText(chatID, "❌ Tell me what it's for.\nExample: /vibe celebrations | birthday party | humorous | Jesse")
	}

	h.tg.SendTyping(chatID)
	text, visual := h.gen.Both(ctx, gc)
	h.logger.Info("vibe generated",
		"user_id", userID,
		"category", gc.Category,
		"subcategory", gc.Subcategory,
		"tone", gc.Tone,
		"text_outcome", text.Outcome,
		"text_reason", text.Reason,
		"visual_outcome", visual.Outcome,
		"visual_reason", visual.Reason,
	)

	h.sessions.Save(userID, username, gc, text, visual)
	return h.renderPicker(chatID, userID, 0)
}

func (h *Handler) handlePick(ctx context.Context, chatID int64, userID int64, args string) error {
	const usage = "❌ Usage: /pick <line 1-4> <visual 1-4> [layout]"

	fields := strings.Fields(args)
	if len(fields) < 2 {
		return h.tg.SendText(chatID, usage)
	}
	line, okLine := pickIndex(fields[0])
	vis, okVis := pickIndex(fields[1])
	if !okLine || !okVis {
		return h.tg.SendText(chatID, usage)
	}
	layoutID := ""
	if len(fields) > 2 {
		if _, ok := vibe.Layout(fields[2]); !ok {
			return h.tg.SendText(chatID, fmt.Sprintf("❌ Unknown layout %q. See /layouts.", fields[2]))
		}
		layoutID = fields[2]
	}

	_, ok := h.sessions.Update(userID, func(s *session.Session) {
		s.Pick.Line = line
		s.Pick.Visual = vis
		if layoutID != "" {
			s.Pick.LayoutID = layoutID
		}
	})
	if !ok {
		return h.tg.SendText(chatID, noSessionText)
	}
	return h.render(ctx, chatID, userID)
}

const noSessionText = "Nothing to pick from yet. Start with /vibe."

func pickIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 4 {
		return 0, false
	}
	return n - 1, true
}

func layoutsText() string {
	var b strings.Builder
	b.WriteString("Layouts:\n")
	for _, l := range vibe.Layouts() {
		fmt.Fprintf(&b, "%s - %s\n", l.ID, l.Name)
	}
	return strings.TrimSpace(b.String())
}
