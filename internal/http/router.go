// Package httpapi wires the HTTP transport (Gin) to the gateway handlers and
// middleware. It centralizes cross-cutting concerns such as tracing,
// correlation IDs, logging/redaction, panic recovery, metrics, CORS, security
// headers, bearer token decoding and rate limiting, then mounts every route
// of the registry at its own path.
package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/tbourn/go-storefront-gateway/docs"
	"github.com/tbourn/go-storefront-gateway/internal/config"
	"github.com/tbourn/go-storefront-gateway/internal/http/handlers"
	"github.com/tbourn/go-storefront-gateway/internal/http/middleware"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

// Deps are the collaborators the HTTP layer needs. Notifier and Journal may
// be nil.
type Deps struct {
	Registry *routes.Registry
	Upstream handlers.Upstream
	Notifier handlers.Notifier
	Journal  handlers.NotificationPager
}

var corsMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
var corsHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip
//  7. Metrics
//  8. CORS and security headers, so rejections below stay readable by browsers
//  9. BearerAuth: decode the session token
//  10. Rate limiter (per user/IP, after auth so users get their own bucket)
//
// An error is returned when the registry contains paths gin cannot mount
// side by side.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) error {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	r.Use(limitBody(maxBody))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	useCORS(r, cfg.CORS.AllowedOrigins)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:        cfg.Security.EnableHSTS,
		HSTSMaxAge:        cfg.Security.HSTSMaxAge,
		NoStore:           true,
		CacheablePrefixes: []string{"/swagger/"},
		EnablePolicy:      true,
		Expose:            []string{"X-Request-ID", "Retry-After"},
	}))

	r.Use(middleware.BearerAuth(cfg.JWTSecret))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP(), middleware.WithExemptPaths("/health"))
	r.Use(rl.Handler())

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "routes": deps.Registry.Len()})
	})
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Registry, deps.Upstream, deps.Notifier, deps.Journal)

	gw := groupWithPrefix(r, cfg.GatewayBasePath)
	{
		gw.GET("/routes", h.ListRoutes)
		gw.GET("/session", h.Session)
		gw.GET("/notifications", h.ListNotifications)
		gw.GET("/notifications/:id", h.GetNotification)
	}

	return mountRegistry(r, deps.Registry, h)
}

// mountRegistry mounts every registry route. gin panics on conflicting
// wildcards; the panic is turned into an error naming the route.
func mountRegistry(r *gin.Engine, reg *routes.Registry, h *handlers.Handlers) (err error) {
	var current routes.Route
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("mount route %s (%s %s): %v", current.Key(), current.Method, current.Path, rec)
		}
	}()
	for _, rt := range reg.All() {
		current = rt
		r.Handle(rt.Method, rt.GinPath(), h.Forward(rt))
	}
	return nil
}

// useCORS installs gin-contrib/cors. With no allowlist every origin is
// allowed (without credentials); otherwise only listed origins are echoed.
func useCORS(r *gin.Engine, origins []string) {
	if len(origins) == 0 {
		// Force ACAO even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
		return
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h := c.Writer.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     corsMethods,
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// limitBody caps the request body size using http.MaxBytesReader. Requests
// exceeding the cap cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
