package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibe-generator/internal/gemini"
	"vibe-generator/internal/session"
	"vibe-generator/internal/telegram"
	"vibe-generator/internal/vibe"
)

const (
	testChat  int64 = 100
	testOwner int64 = 42
)

type sentPhoto struct {
	dataURL string
	caption string
}

type answer struct {
	text  string
	alert bool
}

type fakeMessenger struct {
	mu      sync.Mutex
	texts   []string
	pickers []string
	edits   []string
	answers []answer
	photos  []sentPhoto
	editErr error
	nextID  int
}

func (f *fakeMessenger) SendText(_ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendTyping(int64) {}

func (f *fakeMessenger) SendTextWithKeyboard(_ int64, text string, _ tgbotapi.InlineKeyboardMarkup) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.pickers = append(f.pickers, text)
	return f.nextID, nil
}

func (f *fakeMessenger) EditTextWithKeyboard(_ int64, _ int, text string, _ tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ string, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answer{text: text, alert: alert})
	return nil
}

func (f *fakeMessenger) SendPhotoDataURL(_ int64, dataURL string, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, sentPhoto{dataURL: dataURL, caption: caption})
	return nil
}

func (f *fakeMessenger) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

func (f *fakeMessenger) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

type fakeImages struct {
	reqs []gemini.ImageRequest
	err  error
}

func (f *fakeImages) GenerateImage(_ context.Context, req gemini.ImageRequest) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	return "data:image/png;base64,QUJD", nil
}

type fixture struct {
	h        *Handler
	tg       *fakeMessenger
	images   *fakeImages
	sessions *session.Store
}

func newFixture(t *testing.T, withImages bool, delay time.Duration) *fixture {
	t.Helper()
	gen, err := vibe.New(vibe.Options{Mode: vibe.ModeDisabled})
	require.NoError(t, err)

	f := &fixture{tg: &fakeMessenger{}, sessions: session.NewStore(session.Options{})}
	opts := Options{
		Telegram:    f.tg,
		Generator:   gen,
		Sessions:    f.sessions,
		RenderDelay: delay,
	}
	if withImages {
		f.images = &fakeImages{}
		opts.Images = f.images
	}
	f.h = New(opts)
	t.Cleanup(f.h.Close)
	return f
}

func command(text string) telegram.Update {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmdLen = i
	}
	return telegram.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: testChat},
		From:     &tgbotapi.User{ID: testOwner, UserName: "jo"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func plain(text string) telegram.Update {
	return telegram.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: testChat},
		From: &tgbotapi.User{ID: testOwner},
	}}
}

func callback(from int64, data string) telegram.Update {
	return telegram.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: testChat}},
		Data:    data,
	}}
}

func (f *fixture) handle(t *testing.T, u telegram.Update) {
	t.Helper()
	require.NoError(t, f.h.HandleUpdate(context.Background(), u))
}

func TestVibeCommandSendsPicker(t *testing.T) {
	f := newFixture(t, true, 0)
	f.handle(t, command("/vibe celebrations | birthday party | humorous | Jesse"))

	require.Len(t, f.tg.pickers, 1)
	text := f.tg.pickers[0]
	assert.Contains(t, text, "birthday party · humorous")
	assert.Contains(t, text, "1. [platform]")
	assert.Contains(t, text, "4. [creative]")
	assert.Contains(t, text, "Tap a line and a visual")

	sess, ok := f.sessions.Get(testOwner)
	require.True(t, ok)
	assert.Equal(t, 1, sess.MessageID)
	assert.Equal(t, vibe.ModeDisabled, sess.Text.Mode)
	assert.Equal(t, []string{"birthday party", "Jesse"}, sess.Context.EffectiveTags())
}

func TestPlainTextIsVibe(t *testing.T) {
	f := newFixture(t, false, 0)
	f.handle(t, plain("hockey savage #GoTeam"))

	sess, ok := f.sessions.Get(testOwner)
	require.True(t, ok)
	assert.Equal(t, "sports", sess.Context.Category)
	assert.Equal(t, "savage", sess.Context.Tone)
	for _, l := range sess.Text.Lines {
		assert.Contains(t, strings.ToLower(l.Text), "goteam")
	}
}

func TestEmptyVibeShowsUsage(t *testing.T) {
	f := newFixture(t, false, 0)
	f.handle(t, command("/vibe"))
	assert.Contains(t, f.tg.lastText(), "Example: /vibe")
	assert.Empty(t, f.tg.pickers)
}

func TestPickAndRenderViaCallbacks(t *testing.T) {
	f := newFixture(t, true, 0)
	f.handle(t, command("/vibe sports | hockey | savage"))

	f.handle(t, callback(testOwner, cb(testOwner, "line", "1")))
	f.handle(t, callback(testOwner, cb(testOwner, "vis", "2")))
	f.handle(t, callback(testOwner, cb(testOwner, "menu", menuLayout)))
	f.handle(t, callback(testOwner, cb(testOwner, "layout", "lowerThird")))

	sess, _ := f.sessions.Get(testOwner)
	assert.Equal(t, 1, sess.Pick.Line)
	assert.Equal(t, 2, sess.Pick.Visual)
	assert.Equal(t, "lowerThird", sess.Pick.LayoutID)
	assert.Empty(t, sess.Menu)
	assert.Equal(t, 4, f.tg.editCount())
	assert.Contains(t, f.tg.edits[3], "✅ 2. [audience]")
	assert.Contains(t, f.tg.edits[3], "Ready. Tap Render")

	f.handle(t, callback(testOwner, cb(testOwner, "render")))

	require.Len(t, f.images.reqs, 1)
	req := f.images.reqs[0]
	assert.Contains(t, req.Prompt, sess.Visual.Visual.Prompts[2].Prompt)
	assert.Contains(t, req.Prompt, "Style: realistic")
	assert.Contains(t, req.Prompt, "lower third")
	assert.Equal(t, "1:1", req.AspectRatio)

	require.Len(t, f.tg.photos, 1)
	assert.Equal(t, sess.Text.Lines[1].Text, f.tg.photos[0].caption)
}

func TestCallbackToggleClearsPick(t *testing.T) {
	f := newFixture(t, false, 0)
	f.handle(t, command("/vibe sports | hockey"))
	f.handle(t, callback(testOwner, cb(testOwner, "line", "0")))
	f.handle(t, callback(testOwner, cb(testOwner, "line", "0")))

	sess, _ := f.sessions.Get(testOwner)
	assert.Equal(t, -1, sess.Pick.Line)
}

func TestRenderBeforePick(t *testing.T) {
	f := newFixture(t, true, 0)
	f.handle(t, command("/vibe sports | hockey"))
	f.handle(t, callback(testOwner, cb(testOwner, "render")))

	require.NotEmpty(t, f.tg.answers)
	last := f.tg.answers[len(f.tg.answers)-1]
	assert.True(t, last.alert)
	assert.Empty(t, f.images.reqs)
}

func TestCallbackFromStranger(t *testing.T) {
	f := newFixture(t, false, 0)
	f.handle(t, command("/vibe sports | hockey"))
	f.handle(t, callback(7, cb(testOwner, "line", "1")))

	require.Len(t, f.tg.answers, 1)
	assert.True(t, f.tg.answers[0].alert)
	sess, _ := f.sessions.Get(testOwner)
	assert.Equal(t, -1, sess.Pick.Line)
}

func TestCallbackExpiredSession(t *testing.T) {
	f := newFixture(t, false, 0)
	f.handle(t, callback(testOwner, cb(testOwner, "line", "1")))
	require.Len(t, f.tg.answers, 1)
	assert.Contains(t, f.tg.answers[0].text, "expired")
}

func TestForeignCallbackIgnored(t *testing.T) {
	f := newFixture(t, false, 0)
	f.handle(t, callback(testOwner, "pv:42:generate"))
	assert.Empty(t, f.tg.answers)
}

func TestPickCommandWithoutImages(t *testing.T) {
	f := newFixture(t, false, 0)
	f.handle(t, command("/vibe celebrations | wedding | romantic"))
	f.handle(t, command("/pick 2 3 badgeSticker"))

	out := f.tg.lastText()
	assert.Contains(t, out, "Image rendering is off")
	assert.Contains(t, out, "round badge")
	assert.Contains(t, out, "Avoid:")

	sess, _ := f.sessions.Get(testOwner)
	assert.Contains(t, out, "Caption: "+sess.Text.Lines[1].Text)
}

func TestPickCommandErrors(t *testing.T) {
	f := newFixture(t, false, 0)

	f.handle(t, command("/pick 1 1"))
	assert.Equal(t, noSessionText, f.tg.lastText())

	f.handle(t, command("/vibe sports | hockey"))
	f.handle(t, command("/pick 5 1"))
	assert.Contains(t, f.tg.lastText(), "Usage")
	f.handle(t, command("/pick 1"))
	assert.Contains(t, f.tg.lastText(), "Usage")
	f.handle(t, command("/pick 1 1 poster"))
	assert.Contains(t, f.tg.lastText(), `Unknown layout "poster"`)
}

func TestRenderImageErrors(t *testing.T) {
	tests := []struct {
		code gemini.ImageErrorCode
		want string
	}{
		{gemini.ImageRateLimited, "busy"},
		{gemini.ImageContentPolicy, "refused"},
		{gemini.ImageModelUnavailable, "unavailable"},
		{gemini.ImageInvalidKey, "misconfigured"},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			f := newFixture(t, true, 0)
			f.images.err = &gemini.ImageError{Code: tt.code, Model: "m", Err: errors.New("boom")}
			f.handle(t, command("/vibe sports | hockey"))
			f.handle(t, command("/pick 1 1"))
			assert.Contains(t, f.tg.lastText(), tt.want)
			assert.Empty(t, f.tg.photos)
		})
	}

	assert.Contains(t, imageErrorText(gemini.CodeOf(errors.New("plain"))), "Rendering failed")
}

func TestEditFailureFallsBackToSend(t *testing.T) {
	f := newFixture(t, false, 0)
	f.handle(t, command("/vibe sports | hockey"))
	f.tg.editErr = errors.New("message to edit not found")
	f.handle(t, callback(testOwner, cb(testOwner, "line", "0")))

	assert.Len(t, f.tg.pickers, 2)
	sess, _ := f.sessions.Get(testOwner)
	assert.Equal(t, 2, sess.MessageID)
}

func TestDebouncedRedraw(t *testing.T) {
	f := newFixture(t, false, 100*time.Millisecond)
	f.handle(t, command("/vibe sports | hockey"))

	f.handle(t, callback(testOwner, cb(testOwner, "line", "0")))
	f.handle(t, callback(testOwner, cb(testOwner, "vis", "1")))
	f.handle(t, callback(testOwner, cb(testOwner, "line", "3")))

	assert.Eventually(t, func() bool { return f.tg.editCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, f.tg.editCount())
}

func TestSimpleCommands(t *testing.T) {
	f := newFixture(t, false, 0)

	f.handle(t, command("/start"))
	assert.Contains(t, f.tg.lastText(), "/pick")

	f.handle(t, command("/layouts"))
	assert.Contains(t, f.tg.lastText(), "negativeSpace - Natural negative space")

	f.handle(t, command("/tones"))
	assert.Contains(t, f.tg.lastText(), "savage")

	f.handle(t, command("/vibe sports | hockey"))
	f.handle(t, command("/clear"))
	_, ok := f.sessions.Get(testOwner)
	assert.False(t, ok)

	f.handle(t, command("/nope"))
	assert.Contains(t, f.tg.lastText(), "Unknown command")
}

func TestClose(t *testing.T) {
	f := newFixture(t, false, 0)
	f.handle(t, command("/vibe sports | hockey"))
	f.handle(t, callback(testOwner, cb(testOwner, "close")))
	require.Len(t, f.tg.edits, 1)
	assert.Equal(t, "Closed", f.tg.answers[0].text)
}
