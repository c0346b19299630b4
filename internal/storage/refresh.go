package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/depressurize/internal/model"
)

// Refresher reloads entries from the store into a live GameDB snapshot. It only finds
// rows written after the snapshot was loaded, such as a metadata import running
// alongside a categorization run.
type Refresher struct {
	store  *SQLiteStorage
	db     *model.GameDB
	logger *slog.Logger
}

// NewRefresher creates a Refresher that updates db from store. A nil logger uses
// slog.Default().
func NewRefresher(store *SQLiteStorage, db *model.GameDB, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{store: store, db: db, logger: logger}
}

// Refresh reloads the given ids. Ids with no stored entry stay missing.
func (r *Refresher) Refresh(ctx context.Context, ids []int) error {
	entries, err := r.store.GetMetadataByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("refresh metadata: %w", err)
	}
	for i := range entries {
		r.db.Put(&entries[i])
	}
	r.logger.Debug("Refreshed metadata", "requested", len(ids), "found", len(entries))
	return nil
}
