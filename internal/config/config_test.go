package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestMustLoad_Success_NoPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MustLoad should not panic on valid defaults, got: %v", r)
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("MAX_BODY_BYTES", "4096")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("GATEWAY_BASE_PATH", "internal/gw/")

	t.Setenv("UPSTREAM_BASE_URL", " http://backend:9000 ")
	t.Setenv("SERVICE_CATALOG_URL", "http://catalog:8081")
	t.Setenv("SERVICE_ORDERS_URL", "http://orders:8082")
	t.Setenv("SERVICE_EMPTY_URL", " ")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("ROUTES_FILE", "routes.yaml")
	t.Setenv("JWT_SECRET", "s3cret")

	t.Setenv("JOURNAL_ENABLED", "off")
	t.Setenv("DB_PATH", "journal.sqlite")
	t.Setenv("JOURNAL_RETENTION", "24h")

	t.Setenv("RATE_RPS", "x")      // -> default 10
	t.Setenv("RATE_BURST", "nope") // -> default 20

	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.MaxBodyBytes != 4096 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.GatewayBasePath != "/internal/gw" {
		t.Fatalf("logging/docs fields unexpected: %+v", cfg)
	}

	up := cfg.Upstream
	if up.BaseURL != "http://backend:9000" || up.Timeout != 3*time.Second || up.RoutesFile != "routes.yaml" {
		t.Fatalf("upstream fields unexpected: %+v", up)
	}
	wantSvc := map[string]string{"catalog": "http://catalog:8081", "orders": "http://orders:8082"}
	if !reflect.DeepEqual(up.Services, wantSvc) {
		t.Fatalf("services = %#v want %#v", up.Services, wantSvc)
	}
	if got := up.ServiceNames(); !reflect.DeepEqual(got, []string{"catalog", "orders"}) {
		t.Fatalf("ServiceNames = %v", got)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Fatalf("JWTSecret not read")
	}

	if cfg.Journal.Enabled || cfg.Journal.DBPath != "journal.sqlite" || cfg.Journal.Retention != 24*time.Hour {
		t.Fatalf("journal fields unexpected: %+v", cfg.Journal)
	}
	if cfg.RateRPS != 10 || cfg.RateBurst != 20 {
		t.Fatalf("rate fallback unexpected: rps=%v burst=%d", cfg.RateRPS, cfg.RateBurst)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("CORS origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security fields unexpected: %+v", cfg.Security)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel fields unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GatewayBasePath != "/gateway" {
		t.Fatalf("GatewayBasePath default = %q", cfg.GatewayBasePath)
	}
	if !cfg.Journal.Enabled || cfg.Journal.DBPath != "gateway.db" {
		t.Fatalf("journal defaults unexpected: %+v", cfg.Journal)
	}
	if cfg.Upstream.Timeout != 15*time.Second || cfg.Upstream.UserAgent != "storefront-gateway" {
		t.Fatalf("upstream defaults unexpected: %+v", cfg.Upstream)
	}
	if cfg.JWTSecret != "" || cfg.Upstream.RoutesFile != "" {
		t.Fatalf("optional settings should default empty")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name, key, val, want string
	}{
		{"invalid LOG_LEVEL", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"empty PORT via spaces", "PORT", "   ", "PORT must not be empty"},
		{"non-positive timeouts", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"max header bytes <= 0", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"max body bytes <= 0", "MAX_BODY_BYTES", "-1", "MAX_BODY_BYTES"},
		{"upstream timeout <= 0", "UPSTREAM_TIMEOUT", "0s", "UPSTREAM_TIMEOUT"},
		{"empty DB_PATH", "DB_PATH", "   ", "DB_PATH must not be empty"},
		{"negative retention", "JOURNAL_RETENTION", "-1h", "JOURNAL_RETENTION"},
		{"rate rps negative", "RATE_RPS", "-1", "RATE_RPS"},
		{"rate burst < 1", "RATE_BURST", "0", "RATE_BURST"},
		{"hsts max age negative", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"otel sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
		{"root gateway path", "GATEWAY_BASE_PATH", "/", "GATEWAY_BASE_PATH"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); !containsErr(err, tc.want) {
				t.Fatalf("expected %s validation error, got: %v", tc.want, err)
			}
		})
	}
}

func TestLoad_ReportsAllProblems(t *testing.T) {
	t.Setenv("RATE_BURST", "0")
	t.Setenv("RATE_RPS", "-2")
	_, err := Load()
	if !containsErr(err, "RATE_BURST") || !containsErr(err, "RATE_RPS") {
		t.Fatalf("expected both problems, got: %v", err)
	}
}

func TestLoad_EmptyDBPathAllowedWhenJournalDisabled(t *testing.T) {
	t.Setenv("JOURNAL_ENABLED", "false")
	t.Setenv("DB_PATH", " ")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

// --- helpers ---

func TestHelpers_serviceURLs(t *testing.T) {
	got := serviceURLs([]string{
		"SERVICE_AUTH_URL=http://auth",
		"SERVICE__URL=http://nameless",
		"SERVICE_USERS_URL=",
		"SERVICE_INVENTORY_HOST=inventory",
		"PATH=/usr/bin",
		"broken",
	})
	want := map[string]string{"auth": "http://auth"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("serviceURLs = %#v want %#v", got, want)
	}
}

// mapEnv is a source backed by a fixed environment.
func mapEnv(vars map[string]string) source {
	return source{
		lookup: func(k string) (string, bool) {
			v, ok := vars[k]
			return v, ok
		},
		environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
}

func TestSource_TypedLookups(t *testing.T) {
	env := mapEnv(map[string]string{
		"EMPTY":    "",
		"NAME":     "catalog",
		"RATIO":    "0.25",
		"BAD_NUM":  "ten",
		"COUNT":    "12",
		"WAIT":     "150ms",
		"BAD_WAIT": "soon",
	})

	if env.str("EMPTY", "d") != "d" || env.str("UNSET", "d") != "d" || env.str("NAME", "d") != "catalog" {
		t.Fatalf("str fallback mismatch")
	}
	if env.float("RATIO", 1) != 0.25 || env.float("BAD_NUM", 1.5) != 1.5 {
		t.Fatalf("float mismatch")
	}
	if env.integer("COUNT", 0) != 12 || env.integer("BAD_NUM", 7) != 7 || env.integer("RATIO", 3) != 3 {
		t.Fatalf("integer mismatch")
	}
	if env.dur("WAIT", time.Second) != 150*time.Millisecond || env.dur("BAD_WAIT", time.Second) != time.Second {
		t.Fatalf("dur mismatch")
	}
}

func TestSource_Flag(t *testing.T) {
	for v, want := range map[string]bool{
		"1":     true,
		"true":  true,
		" yes ": true,
		"Y":     true,
		"On":    true,
		"0":     false,
		"FALSE": false,
		" no ":  false,
		"N":     false,
		"off":   false,
	} {
		env := mapEnv(map[string]string{"F": v})
		if got := env.flag("F", !want); got != want {
			t.Errorf("flag(%q) = %v; want %v", v, got, want)
		}
	}
	env := mapEnv(map[string]string{"F": "maybe"})
	if !env.flag("F", true) || env.flag("F", false) {
		t.Fatalf("unknown value should keep the default")
	}
}

func TestLoad_FromMapEnv(t *testing.T) {
	cfg, err := load(mapEnv(map[string]string{
		"SERVICE_REVIEWS_URL": "http://reviews:8085",
		"GIN_MODE":            "DEBUG",
		"RATE_RPS":            "0",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Upstream.Services["reviews"] != "http://reviews:8085" || cfg.GinMode != "debug" || cfg.RateRPS != 0 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.OTEL.ServiceName != "storefront-gateway" || cfg.Port != "8080" {
		t.Fatalf("defaults not applied: port=%q otel=%q", cfg.Port, cfg.OTEL.ServiceName)
	}
}

func TestHelpers_splitCSV_and_normalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV mismatch: got %#v", got)
	}
	for in, want := range map[string]string{"": "/", "v1": "/v1", "/v1/": "/v1", " / ": "/", "//gw//": "/gw"} {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q want %q", in, got, want)
		}
	}
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}

func TestMain(m *testing.M) {
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "SERVICE_") {
			os.Unsetenv(k)
		}
	}
	os.Unsetenv("PORT")
	os.Exit(m.Run())
}
