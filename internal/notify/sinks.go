package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
)

// LogSink writes notifications to a zerolog logger. A logger attached to the
// context (zerolog.Ctx) takes precedence.
type LogSink struct {
	Logger zerolog.Logger
}

// NewLogSink returns a LogSink on the global logger.
func NewLogSink() LogSink {
	return LogSink{Logger: log.With().Str("component", "notify").Logger()}
}

// Notify implements Sink.
func (s LogSink) Notify(ctx context.Context, n Notification) {
	l := &s.Logger
	if cl := zerolog.Ctx(ctx); cl != nil && cl.GetLevel() != zerolog.Disabled {
		l = cl
	}
	ev := l.WithLevel(zerologLevel(n.Level)).Str("notification", string(n.Level))
	if n.Status != 0 {
		ev = ev.Int("status", n.Status)
	}
	if n.Code != "" {
		ev = ev.Str("code", n.Code)
	}
	if n.RequestID != "" {
		ev = ev.Str("request_id", n.RequestID)
	}
	ev.Msg(n.Message)
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelError:
		return zerolog.ErrorLevel
	case LevelWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Journal persists notifications. repo.Journal satisfies it.
type Journal interface {
	Record(ctx context.Context, n *domain.Notification) error
}

// JournalSink persists warning and error notifications.
type JournalSink struct {
	Journal Journal
}

// Notify implements Sink. Storage failures are logged and dropped.
func (s JournalSink) Notify(ctx context.Context, n Notification) {
	if s.Journal == nil || (n.Level != LevelWarning && n.Level != LevelError) {
		return
	}
	row := &domain.Notification{
		Level:     string(n.Level),
		Message:   n.Message,
		Status:    n.Status,
		Code:      n.Code,
		RequestID: n.RequestID,
		CreatedAt: n.At,
	}
	// The journal outlives the request that produced the notification.
	if err := s.Journal.Record(context.WithoutCancel(ctx), row); err != nil {
		log.Warn().Err(err).Msg("notification journal write failed")
	}
}

// Multi fans a notification out to every sink in order. A panicking sink
// does not stop the others.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Notify(ctx context.Context, n Notification) {
	for _, s := range m {
		if s == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Msg("notification sink panicked")
				}
			}()
			s.Notify(ctx, n)
		}()
	}
}
