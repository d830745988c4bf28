package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vibe-generator/internal/gemini"
	"vibe-generator/internal/session"
	"vibe-generator/internal/vibe"
)

const (
	pickerCallbackPrefix = "vb"
	menuLayout           = "layout"
)

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	data := strings.TrimSpace(q.Data)
	if !strings.HasPrefix(data, pickerCallbackPrefix+":") {
		return nil
	}

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This picker belongs to someone else.", true)
		return nil
	}

	action := parts[2]
	args := parts[3:]
	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID

	updated, ok := h.sessions.Update(ownerID, func(s *session.Session) {
		s.MessageID = msgID

		switch action {
		case "line":
			if i, ok := callbackIndex(args); ok {
				s.Pick.Line = toggle(s.Pick.Line, i)
			}
		case "vis":
			if i, ok := callbackIndex(args); ok {
				s.Pick.Visual = toggle(s.Pick.Visual, i)
			}
		case "menu":
			s.Menu = ""
			if len(args) >= 1 && args[0] == menuLayout {
				s.Menu = menuLayout
			}
		case "layout":
			if len(args) >= 1 {
				if _, known := vibe.Layout(args[0]); known {
					s.Pick.LayoutID = args[0]
				}
			}
			s.Menu = ""
		}
	})
	if !ok {
		_ = h.tg.AnswerCallback(q.ID, "This picker expired. Send /vibe again.", true)
		return nil
	}

	switch action {
	case "render":
		if !updated.Pick.Complete() {
			_ = h.tg.AnswerCallback(q.ID, "Pick a line and a visual first.", true)
			return nil
		}
		_ = h.tg.AnswerCallback(q.ID, "Rendering…", false)
		return h.render(ctx, chatID, ownerID)
	case "close":
		_ = h.tg.AnswerCallback(q.ID, "Closed", false)
		return h.tg.EditTextWithKeyboard(chatID, msgID, pickerText(updated, h.images != nil), emptyKeyboard())
	default:
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
	}

	if h.redraw != nil {
		h.redraw.Trigger(redrawKey{chatID: chatID, userID: ownerID}, msgID)
		return nil
	}
	return h.renderPicker(chatID, ownerID, msgID)
}

func callbackIndex(args []string) (int, bool) {
	if len(args) < 1 {
		return 0, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 0 || i >= 4 {
		return 0, false
	}
	return i, true
}

// toggle selects i, or clears the pick when i is already selected.
func toggle(cur, i int) int {
	if cur == i {
		return -1
	}
	return i
}

func (h *Handler) renderPicker(chatID int64, userID int64, messageID int) error {
	sess, ok := h.sessions.Get(userID)
	if !ok {
		return h.tg.SendText(chatID, noSessionText)
	}
	if messageID == 0 {
		messageID = sess.MessageID
	}

	text := pickerText(sess, h.images != nil)
	kb := pickerKeyboard(userID, sess)

	if messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.sessions.Update(userID, func(s *session.Session) { s.MessageID = msgID })
	return nil
}

func (h *Handler) render(ctx context.Context, chatID int64, userID int64) error {
	sess, ok := h.sessions.Get(userID)
	if !ok {
		return h.tg.SendText(chatID, noSessionText)
	}
	if !sess.Pick.Complete() {
		return h.tg.SendText(chatID, "Pick a line and a visual first.")
	}

	payload := composePick(sess)
	if h.images == nil {
		return h.tg.SendText(chatID, "🖼 Image rendering is off. Final prompt:\n\n"+payload.ImagePrompt()+"\n\nCaption: "+payload.TextContent)
	}

	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, "🎨 Rendering, give it a moment...")

	dataURL, err := h.images.GenerateImage(ctx, gemini.ImageRequest{
		Prompt:      payload.ImagePrompt(),
		AspectRatio: payload.AspectRatio(),
	})
	if err != nil {
		h.logger.Error("image generation failed", "user_id", userID, "context_id", payload.ContextID, "err", err)
		return h.tg.SendText(chatID, imageErrorText(gemini.CodeOf(err)))
	}
	return h.tg.SendPhotoDataURL(chatID, dataURL, payload.TextContent)
}

func composePick(sess session.Session) vibe.FinalPayload {
	line := sess.Text.Lines[sess.Pick.Line]
	visual := sess.Visual.Visual
	return vibe.Compose(vibe.ComposeInput{
		Text:           line.Text,
		LayoutID:       sess.Pick.LayoutID,
		VisualPrompt:   visual.Prompts[sess.Pick.Visual].Prompt,
		NegativePrompt: visual.NegativePrompt,
		Context:        sess.Context,
	})
}

func imageErrorText(code gemini.ImageErrorCode) string {
	switch code {
	case gemini.ImageRateLimited:
		return "⏳ The image service is busy. Try Render again in a minute."
	case gemini.ImageContentPolicy:
		return "🚫 The image service refused this scene. Pick another visual and try again."
	case gemini.ImageModelUnavailable:
		return "❌ The image model is unavailable right now. Try again later."
	case gemini.ImageInvalidKey:
		return "❌ Image rendering is misconfigured. Please tell the bot owner."
	}
	return "❌ Rendering failed. Try again."
}

func pickerText(sess session.Session, imagesEnabled bool) string {
	gc := sess.Context
	tone := gc.Tone
	if tone == "" {
		tone = "any tone"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✨ %s · %s\n", gc.Topic(), tone)
	if tags := gc.EffectiveTags(); len(tags) > 0 {
		b.WriteString("Tags: " + strings.Join(tags, ", ") + "\n")
	}
	if sess.Text.UsedFallback() || sess.Visual.UsedFallback() {
		b.WriteString("(Some picks are built-in backups, the model answer didn't pass checks.)\n")
	}

	b.WriteString("\nLines:\n")
	for i, l := range sess.Text.Lines {
		fmt.Fprintf(&b, "%s%d. [%s] %s\n", mark(sess.Pick.Line == i), i+1, l.Lane, l.Text)
	}

	b.WriteString("\nVisuals:\n")
	for i, p := range sess.Visual.Visual.Prompts {
		fmt.Fprintf(&b, "%s%d. [%s] %s\n", mark(sess.Pick.Visual == i), i+1, p.Lane, truncateLine(p.Prompt, 160))
	}

	layout, _ := vibe.Layout(sess.Pick.LayoutID)
	b.WriteString("\nLayout: " + layout.Name + "\n")

	switch {
	case sess.Menu == menuLayout:
		b.WriteString("\nChoose where the caption sits.")
	case !sess.Pick.Complete():
		b.WriteString("\nTap a line and a visual, then Render.")
	case imagesEnabled:
		b.WriteString("\n🎨 Ready. Tap Render.")
	default:
		b.WriteString("\nReady. Render shows the final image prompt.")
	}

	return strings.TrimSpace(b.String())
}

func pickerKeyboard(ownerID int64, sess session.Session) tgbotapi.InlineKeyboardMarkup {
	if sess.Menu == menuLayout {
		return layoutKeyboard(ownerID, sess)
	}

	var lines, visuals []tgbotapi.InlineKeyboardButton
	for i := 0; i < 4; i++ {
		n := strconv.Itoa(i)
		lines = append(lines, tgbotapi.NewInlineKeyboardButtonData(
			mark(sess.Pick.Line == i)+"Line "+strconv.Itoa(i+1), cb(ownerID, "line", n)))
		visuals = append(visuals, tgbotapi.NewInlineKeyboardButtonData(
			mark(sess.Pick.Visual == i)+"Visual "+strconv.Itoa(i+1), cb(ownerID, "vis", n)))
	}

	layout, _ := vibe.Layout(sess.Pick.LayoutID)
	return tgbotapi.NewInlineKeyboardMarkup(
		lines,
		visuals,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Layout: "+layout.Name, cb(ownerID, "menu", menuLayout)),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("🎨 Render", cb(ownerID, "render")),
			tgbotapi.NewInlineKeyboardButtonData("Close", cb(ownerID, "close")),
		},
	)
}

func layoutKeyboard(ownerID int64, sess session.Session) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, l := range vibe.Layouts() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(mark(l.ID == sess.Pick.LayoutID)+l.Name, cb(ownerID, "layout", l.ID)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", "main")),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func emptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", pickerCallbackPrefix, ownerID, strings.Join(parts, ":"))
}

func mark(selected bool) string {
	if selected {
		return "✅ "
	}
	return ""
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
