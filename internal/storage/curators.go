package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/depressurize/internal/model"
)

// SaveCuratorRecommendations replaces the cached recommendation set of one curator.
func (s *SQLiteStorage) SaveCuratorRecommendations(ctx context.Context, curatorID int64, recs map[int]model.CuratorRecommendation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if curatorID <= 0 {
		return fmt.Errorf("%w: curator id %d", ErrInvalidGameID, curatorID)
	}
	for appID, rec := range recs {
		if !rec.Valid() {
			return fmt.Errorf("%w: %q for app %d", ErrInvalidRecommendation, rec, appID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM curator_recommendations WHERE curator_id = ?`, curatorID); err != nil {
		return fmt.Errorf("failed to clear curator %d: %w", curatorID, err)
	}

	now := time.Now().UTC()
	for appID, rec := range recs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO curator_recommendations (curator_id, app_id, recommendation, fetched_at)
			VALUES (?, ?, ?, ?)
		`, curatorID, appID, string(rec), now); err != nil {
			return fmt.Errorf("failed to cache recommendation for app %d: %w", appID, err)
		}
	}

	return tx.Commit()
}

// GetCuratorRecommendations returns the cached recommendations of one curator and the
// time they were fetched. An unknown curator yields an empty map and a zero time.
func (s *SQLiteStorage) GetCuratorRecommendations(ctx context.Context, curatorID int64) (map[int]model.CuratorRecommendation, time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, time.Time{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT app_id, recommendation, fetched_at
		FROM curator_recommendations
		WHERE curator_id = ?
	`, curatorID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query curator %d: %w", curatorID, err)
	}
	defer func() { _ = rows.Close() }()

	recs := make(map[int]model.CuratorRecommendation)
	var fetched time.Time
	for rows.Next() {
		var (
			appID int
			rec   string
			at    time.Time
		)
		if err := rows.Scan(&appID, &rec, &at); err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to scan curator recommendation: %w", err)
		}
		recs[appID] = model.CuratorRecommendation(rec)
		if at.After(fetched) {
			fetched = at
		}
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read curator recommendations: %w", err)
	}
	return recs, fetched, nil
}
