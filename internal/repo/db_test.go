package repo

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
)

func TestOpenSQLite_MissingDir(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "journal.db")

	db, err := OpenSQLite(bad)
	if db != nil || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want fs.ErrNotExist for %q, got db=%v err=%v", bad, db, err)
	}
	if !strings.HasPrefix(err.Error(), "journal dir:") {
		t.Fatalf("error should name the journal dir: %v", err)
	}
}

func TestOpenSQLite_PragmasPoolAndSchema(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	var mode string
	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&mode); err != nil || strings.ToLower(mode) != "wal" {
		t.Fatalf("journal_mode = %q (err %v)", mode, err)
	}
	var busy int
	if err := db.Raw("PRAGMA busy_timeout;").Row().Scan(&busy); err != nil || busy != busyTimeoutMS {
		t.Fatalf("busy_timeout = %d (err %v)", busy, err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != maxConns {
		t.Fatalf("MaxOpenConnections = %d; want %d", got, maxConns)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, idx := range []string{"idx_notifications_level", "idx_notifications_created", "idx_notifications_request"} {
		if !m.HasIndex(&domain.Notification{}, idx) {
			t.Fatalf("missing index %s", idx)
		}
	}

	n := &domain.Notification{ID: "n1", Level: "error", Message: "x", CreatedAt: time.Now().UTC()}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestGormLogger_RoutesToZerologAndSkipsNotFound(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	db := newJournalDB(t)
	if _, err := GetNotification(context.Background(), db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if strings.Contains(buf.String(), "record not found") {
		t.Fatalf("not-found lookups should not be logged: %s", buf.String())
	}

	gormWriter{}.Printf("slow sql %dms", 250)
	if !strings.Contains(buf.String(), `"component":"journal"`) || !strings.Contains(buf.String(), "slow sql 250ms") {
		t.Fatalf("gorm line not routed to zerolog: %s", buf.String())
	}
}
