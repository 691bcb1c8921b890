// Package notify surfaces user-facing messages.
//
// A Notifier turns any value (text, error, *apierror.APIError, nil) into a
// Notification and hands it to a Sink. Show is fire and forget: it never
// panics and never reports an error, and each call is delivered on its own
// with no queueing or deduplication.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-storefront-gateway/internal/apierror"
	"github.com/tbourn/go-storefront-gateway/internal/dispatch"
)

// Level is the presentation level of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// ParseLevel maps a level name to a Level; unknown names are LevelInfo.
func ParseLevel(s string) Level {
	switch l := Level(s); l {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return l
	}
	return LevelInfo
}

// Notification is one user-facing notice.
type Notification struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Status    int       `json:"status,omitempty"`
	Code      string    `json:"code,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

// Sink receives notifications. Implementations must be safe for concurrent use.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Notifier builds notifications and delivers them to Sink.
type Notifier struct {
	Sink Sink
	// Now defaults to time.Now.
	Now func() time.Time
}

// New returns a Notifier over sink.
func New(sink Sink) *Notifier {
	return &Notifier{Sink: sink, Now: time.Now}
}

// Show delivers message at level. Errors are rendered with
// apierror.UserMessage and carry their status and code.
func (n *Notifier) Show(ctx context.Context, message any, level Level) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("notification dropped")
		}
	}()
	if n == nil || n.Sink == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	note := n.build(ctx, message, ParseLevel(string(level)))
	n.Sink.Notify(ctx, note)
}

// ShowError normalizes err and shows its user message at error level.
func (n *Notifier) ShowError(ctx context.Context, err any) {
	n.Show(ctx, apierror.Normalize(err), LevelError)
}

func (n *Notifier) build(ctx context.Context, message any, level Level) Notification {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	note := Notification{
		Level:     level,
		RequestID: dispatch.RequestID(ctx),
		At:        now().UTC(),
	}

	switch m := message.(type) {
	case nil:
	case string:
		note.Message = m
	case *apierror.APIError:
		note.Message = apierror.UserMessage(m)
		if m != nil {
			note.Status, note.Code = m.Status(), m.Code()
		}
	case error:
		var ae *apierror.APIError
		if errors.As(m, &ae) && ae != nil {
			note.Message = apierror.UserMessage(ae)
			note.Status, note.Code = ae.Status(), ae.Code()
		} else {
			note.Message = m.Error()
		}
	case fmt.Stringer:
		note.Message = m.String()
	default:
		note.Message = fmt.Sprint(m)
	}
	return note
}
