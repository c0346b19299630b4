package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/depressurize/internal/model"
	"github.com/Veraticus/depressurize/internal/storage"
)

// TestDB is a migrated in-memory metadata store scoped to one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates an in-memory store seeded with entries. It is closed when the
// test ends.
func SetupTestDB(t *testing.T, entries ...model.GameMetadata) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, t: t}
	if len(entries) > 0 {
		db.Seed(entries...)
	}
	return db
}

// Seed stores more entries, failing the test on error.
func (db *TestDB) Seed(entries ...model.GameMetadata) {
	db.t.Helper()
	if err := db.Storage.SaveMetadata(context.Background(), entries); err != nil {
		db.t.Fatalf("failed to seed metadata: %v", err)
	}
}

// MustLoad returns a snapshot of the stored metadata.
func (db *TestDB) MustLoad() *model.GameDB {
	db.t.Helper()
	snapshot, err := db.Storage.LoadDatabase(context.Background())
	if err != nil {
		db.t.Fatalf("failed to load metadata: %v", err)
	}
	return snapshot
}
