package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-storefront-gateway/internal/config"
	"github.com/tbourn/go-storefront-gateway/internal/dispatch"
	httpapi "github.com/tbourn/go-storefront-gateway/internal/http"
	"github.com/tbourn/go-storefront-gateway/internal/notify"
	"github.com/tbourn/go-storefront-gateway/internal/observability"
	"github.com/tbourn/go-storefront-gateway/internal/repo"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
	"github.com/tbourn/go-storefront-gateway/internal/sysutil"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	sysutil.ConfigureLogger(os.Stdout, cfg.LogPretty, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	reg, err := routes.Load(cfg.Upstream.RoutesFile)
	if err != nil {
		return err
	}
	client, err := newDispatchClient(cfg, reg)
	if err != nil {
		return err
	}

	deps := httpapi.Deps{Registry: reg, Upstream: client}
	sinks := []notify.Sink{notify.NewLogSink()}
	if cfg.Journal.Enabled {
		journal, closeDB, err := openJournal(ctx, cfg.Journal)
		if err != nil {
			return err
		}
		defer closeDB()
		deps.Journal = journal
		sinks = append(sinks, notify.JournalSink{Journal: journal})
	}
	deps.Notifier = notify.New(notify.Multi(sinks...))

	r := gin.New()
	if err := httpapi.RegisterRoutes(r, deps, cfg); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Int("routes", reg.Len()).
			Strs("services", cfg.Upstream.ServiceNames()).
			Str("default_upstream", cfg.Upstream.BaseURL).
			Msg("gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func newDispatchClient(cfg config.Config, reg *routes.Registry) (*dispatch.Client, error) {
	return dispatch.New(dispatch.Config{
		Services:       cfg.Upstream.Services,
		DefaultBaseURL: cfg.Upstream.BaseURL,
		Timeout:        cfg.Upstream.Timeout,
		UserAgent:      cfg.Upstream.UserAgent,
	}, dispatch.WithRegistry(reg))
}

// openJournal opens and migrates the journal database and prunes entries
// older than the retention window.
func openJournal(ctx context.Context, jc config.JournalConfig) (repo.Journal, func(), error) {
	db, err := repo.OpenSQLite(jc.DBPath)
	if err != nil {
		return repo.Journal{}, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		closeDB()
		return repo.Journal{}, nil, err
	}
	if jc.Retention > 0 {
		n, err := repo.PruneNotifications(ctx, db, time.Now().UTC().Add(-jc.Retention))
		if err != nil {
			log.Warn().Err(err).Msg("journal prune failed")
		} else if n > 0 {
			log.Info().Int64("deleted", n).Dur("retention", jc.Retention).Msg("journal pruned")
		}
	}
	return repo.Journal{DB: db}, closeDB, nil
}
