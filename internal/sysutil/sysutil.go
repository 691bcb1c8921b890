// Package sysutil holds process-level helpers: global logger setup and small
// string predicates shared by the binary and the HTTP layer.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServiceName is stamped on every log line as "service".
const ServiceName = "storefront-gateway"

// ParseLevel maps a LOG_LEVEL value to a zerolog level. It accepts the names
// zerolog knows plus "warning"; empty or unrecognized input yields info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetLogLevel sets the global zerolog level from a LOG_LEVEL value.
func SetLogLevel(s string) { zerolog.SetGlobalLevel(ParseLevel(s)) }

// ConfigureLogger replaces the global logger and returns it. With pretty set
// lines go through a console writer; otherwise they are JSON. A nil w means
// stderr.
func ConfigureLogger(w io.Writer, pretty bool, lvl string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	SetLogLevel(lvl)

	log.Logger = zerolog.New(w).With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
	return log.Logger
}

var truthy = map[string]struct{}{
	"1": {}, "true": {}, "yes": {}, "y": {}, "on": {},
}

// IsTruthy reports whether an env-style flag value means "enabled".
func IsTruthy(v string) bool {
	_, ok := truthy[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// FirstNonEmpty returns the first argument that is not blank, unmodified, or
// "" when there is none. Used for flag-then-env fallbacks.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) == "" {
			continue
		}
		return v
	}
	return ""
}
