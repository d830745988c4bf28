package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const FormatJSON = "json"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Model          string
	MaxTokens      int
	ResponseFormat string // "" | "json"
	Temperature    float64
}

// Completer is the chat-completion capability: ordered messages in, raw text out.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}

type CompleterFunc func(ctx context.Context, messages []Message, opts Options) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	return f(ctx, messages, opts)
}

// ErrContentFiltered is returned when the provider refused to answer on policy grounds.
var ErrContentFiltered = errors.New("content filtered by provider")

type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API %d: %s", e.Provider, e.Code, strings.TrimSpace(e.Body))
}

// SplitSystem separates leading system messages from the conversation, for
// providers that take the system instruction out of band.
func SplitSystem(messages []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if s := strings.TrimSpace(m.Content); s != "" {
				system = append(system, s)
			}
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}
