// Package config provides gateway configuration loaded from environment
// variables with defaults and validation: server timeouts, logging, upstream
// service URLs, session verification, the notification journal, rate
// limiting, and observability.
package config

import (
	"errors"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-storefront-gateway/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// UpstreamConfig locates the storefront backends.
type UpstreamConfig struct {
	BaseURL    string            // UPSTREAM_BASE_URL, fallback for every service
	Services   map[string]string // SERVICE_<NAME>_URL, keyed by lowercase name
	Timeout    time.Duration     // UPSTREAM_TIMEOUT
	UserAgent  string            // UPSTREAM_USER_AGENT
	RoutesFile string            // ROUTES_FILE, optional YAML overrides
}

// JournalConfig controls the notification journal.
type JournalConfig struct {
	Enabled   bool          // JOURNAL_ENABLED
	DBPath    string        // DB_PATH
	Retention time.Duration // JOURNAL_RETENTION, 0 keeps everything
}

// Config holds all configuration values for the gateway.
type Config struct {
	// Server
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
	GinMode           string // debug|release|test

	// Logging / Docs
	LogLevel        string // debug|info|warn|error|fatal|panic
	LogPretty       bool
	SwaggerEnabled  bool
	GatewayBasePath string // prefix of the gateway's own endpoints

	Upstream UpstreamConfig

	// JWTSecret enables HS256 verification of bearer tokens when set.
	JWTSecret string

	Journal JournalConfig

	// Rate limiting. RateRPS 0 disables the limiter.
	RateRPS   float64
	RateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from the process environment, applies defaults,
// normalizes values and validates the result. All validation problems are
// reported together.
func Load() (Config, error) {
	return load(source{lookup: os.LookupEnv, environ: os.Environ})
}

func load(env source) (Config, error) {
	cfg := Config{
		Port:              env.str("PORT", "8080"),
		ReadTimeout:       env.dur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: env.dur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      env.dur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       env.dur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    env.integer("MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:      int64(env.integer("MAX_BODY_BYTES", 1<<20)),
		GinMode:           strings.ToLower(env.str("GIN_MODE", gin.ReleaseMode)),

		LogLevel:        strings.ToLower(strings.TrimSpace(env.str("LOG_LEVEL", "info"))),
		LogPretty:       env.flag("LOG_PRETTY", false),
		SwaggerEnabled:  env.flag("SWAGGER_ENABLED", false),
		GatewayBasePath: normalizeBasePath(env.str("GATEWAY_BASE_PATH", "/gateway")),

		Upstream: UpstreamConfig{
			BaseURL:    strings.TrimSpace(env.str("UPSTREAM_BASE_URL", "")),
			Services:   serviceURLs(env.environ()),
			Timeout:    env.dur("UPSTREAM_TIMEOUT", 15*time.Second),
			UserAgent:  env.str("UPSTREAM_USER_AGENT", "storefront-gateway"),
			RoutesFile: env.str("ROUTES_FILE", ""),
		},

		JWTSecret: env.str("JWT_SECRET", ""),

		Journal: JournalConfig{
			Enabled:   env.flag("JOURNAL_ENABLED", true),
			DBPath:    env.str("DB_PATH", "gateway.db"),
			Retention: env.dur("JOURNAL_RETENTION", 7*24*time.Hour),
		},

		RateRPS:   env.float("RATE_RPS", 10),
		RateBurst: env.integer("RATE_BURST", 20),

		CORS: CORSConfig{
			AllowedOrigins: splitCSV(env.str("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: env.flag("ENABLE_HSTS", false),
			HSTSMaxAge: env.dur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		OTEL: OTELConfig{
			Enabled:     env.flag("OTEL_ENABLED", false),
			Endpoint:    env.str("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    env.flag("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: env.str("OTEL_SERVICE_NAME", sysutil.ServiceName),
			SampleRatio: env.float("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if !slices.Contains([]string{gin.DebugMode, gin.ReleaseMode, gin.TestMode}, cfg.GinMode) {
		cfg.GinMode = gin.ReleaseMode
	}
	return cfg, cfg.validate()
}

var logLevels = []string{"debug", "info", "warn", "error", "fatal", "panic"}

func (cfg Config) validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	check(slices.Contains(logLevels, cfg.LogLevel), "LOG_LEVEL must be one of: "+strings.Join(logLevels, ", "))
	check(strings.TrimSpace(cfg.Port) != "", "PORT must not be empty")
	check(cfg.ReadTimeout > 0 && cfg.ReadHeaderTimeout > 0 && cfg.WriteTimeout > 0 && cfg.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(cfg.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")
	check(cfg.MaxBodyBytes > 0, "MAX_BODY_BYTES must be > 0")
	check(cfg.GatewayBasePath != "/", "GATEWAY_BASE_PATH must not be the root path")

	check(cfg.Upstream.Timeout > 0, "UPSTREAM_TIMEOUT must be > 0")
	check(!cfg.Journal.Enabled || strings.TrimSpace(cfg.Journal.DBPath) != "", "DB_PATH must not be empty when JOURNAL_ENABLED")
	check(cfg.Journal.Retention >= 0, "JOURNAL_RETENTION must be >= 0")

	check(cfg.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(cfg.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(cfg.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(cfg.OTEL.SampleRatio >= 0 && cfg.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

// ServiceNames returns the service names with an explicit URL, sorted.
func (u UpstreamConfig) ServiceNames() []string {
	names := make([]string, 0, len(u.Services))
	for k := range u.Services {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// serviceURLs collects SERVICE_<NAME>_URL entries from environ.
func serviceURLs(environ []string) map[string]string {
	out := map[string]string{}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(k, "SERVICE_")
		if !ok {
			continue
		}
		name, ok = strings.CutSuffix(name, "_URL")
		if v = strings.TrimSpace(v); !ok || name == "" || v == "" {
			continue
		}
		out[strings.ToLower(name)] = v
	}
	return out
}

// source reads typed values from an environment. Unset, empty and
// unparsable values all yield the default.
type source struct {
	lookup  func(string) (string, bool)
	environ func() []string
}

func (e source) raw(k string) (string, bool) {
	v, ok := e.lookup(k)
	return v, ok && v != ""
}

func (e source) str(k, def string) string {
	if v, ok := e.raw(k); ok {
		return v
	}
	return def
}

func (e source) integer(k string, def int) int {
	return parsed(e, k, def, strconv.Atoi)
}

func (e source) float(k string, def float64) float64 {
	return parsed(e, k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func (e source) dur(k string, def time.Duration) time.Duration {
	return parsed(e, k, def, time.ParseDuration)
}

// flag accepts the sysutil.IsTruthy spellings and their negations
// (0/false/no/n/off); anything else keeps def.
func (e source) flag(k string, def bool) bool {
	v, ok := e.raw(k)
	switch {
	case !ok:
		return def
	case sysutil.IsTruthy(v):
		return true
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

func parsed[T any](e source, k string, def T, parse func(string) (T, error)) T {
	v, ok := e.raw(k)
	if !ok {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns p with one leading slash and no trailing slash.
// Blank input is "/".
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
