package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MarcoPoloResearchLab/giftlist/internal/storage"
	"go.uber.org/zap"
)

func TestOpenSQLitePersistsAcrossReopen(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "profile.db")

	first, err := OpenSQLite(databasePath, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	store, err := storage.NewSQL(storage.SQLConfig{Database: first})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	if err := store.Set(context.Background(), storage.CreatorTokenKey, "creator_1_abc"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	sqlDB, err := first.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("failed to close sqlite: %v", err)
	}

	second, err := OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("failed to reopen sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := second.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	reopened, err := storage.NewSQL(storage.SQLConfig{Database: second})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	value, ok, err := reopened.Get(context.Background(), storage.CreatorTokenKey)
	if err != nil || !ok {
		t.Fatalf("expected persisted token, ok=%v err=%v", ok, err)
	}
	if value != "creator_1_abc" {
		t.Fatalf("unexpected token %q", value)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("", nil); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
