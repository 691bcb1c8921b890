package sysutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	lvl, logger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(lvl)
		log.Logger = logger
	})
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zerolog.Level{
		"debug":     zerolog.DebugLevel,
		" TRACE ":   zerolog.TraceLevel,
		"Warning":   zerolog.WarnLevel,
		"warn":      zerolog.WarnLevel,
		"error":     zerolog.ErrorLevel,
		"disabled":  zerolog.Disabled,
		"":          zerolog.InfoLevel,
		"verbose":   zerolog.InfoLevel,
		"not-level": zerolog.InfoLevel,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	restoreGlobals(t)

	SetLogLevel("error")
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("level = %v", zerolog.GlobalLevel())
	}
	SetLogLevel("nonsense")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("fallback level = %v", zerolog.GlobalLevel())
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "TRUE", " yes ", "Y", "On"} {
		if !IsTruthy(v) {
			t.Errorf("IsTruthy(%q) = false", v)
		}
	}
	for _, v := range []string{"", "0", "off", "no", "enabled", " "} {
		if IsTruthy(v) {
			t.Errorf("IsTruthy(%q) = true", v)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"", " \t"}, ""},
		{[]string{"", "flag-token", "env-token"}, "flag-token"},
		{[]string{" padded ", "x"}, " padded "},
	}
	for _, tc := range cases {
		if got := FirstNonEmpty(tc.in...); got != tc.want {
			t.Errorf("FirstNonEmpty(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestConfigureLogger_JSON(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	ConfigureLogger(&buf, false, "debug")
	log.Debug().Str("route", "brands.list").Msg("forwarded")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not a JSON line %q: %v", buf.String(), err)
	}
	if line["service"] != ServiceName || line["route"] != "brands.list" || line["level"] != "debug" {
		t.Fatalf("unexpected fields: %v", line)
	}
	if _, ok := line["time"]; !ok {
		t.Fatalf("missing timestamp: %v", line)
	}
}

func TestConfigureLogger_Pretty(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	l := ConfigureLogger(&buf, true, "warn")
	l.Info().Msg("quiet")
	l.Warn().Msg("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Fatalf("level filter not applied: %q", out)
	}
	if strings.HasPrefix(out, "{") {
		t.Fatalf("pretty output should not be JSON: %q", out)
	}
}
