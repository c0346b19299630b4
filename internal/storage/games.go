package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/model"
)

const metadataColumns = `id, name, app_type, steam_release_date, genres, flags, tags,
	developers, publishers, languages, vr_support, review_total, review_positive_percentage,
	hltb_main, hltb_extras, hltb_completionist, last_store_scrape, last_app_info_update`

// MetadataStats summarizes the stored metadata.
type MetadataStats struct {
	Total    int
	Scraped  int
	WithHltb int
	Genres   int
	Tags     int
}

// SaveMetadata inserts or replaces metadata entries in a single transaction.
func (s *SQLiteStorage) SaveMetadata(ctx context.Context, entries []model.GameMetadata) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMetadataList(entries); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (`+metadataColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			app_type = excluded.app_type,
			steam_release_date = excluded.steam_release_date,
			genres = excluded.genres,
			flags = excluded.flags,
			tags = excluded.tags,
			developers = excluded.developers,
			publishers = excluded.publishers,
			languages = excluded.languages,
			vr_support = excluded.vr_support,
			review_total = excluded.review_total,
			review_positive_percentage = excluded.review_positive_percentage,
			hltb_main = excluded.hltb_main,
			hltb_extras = excluded.hltb_extras,
			hltb_completionist = excluded.hltb_completionist,
			last_store_scrape = excluded.last_store_scrape,
			last_app_info_update = excluded.last_app_info_update,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range entries {
		args, err := metadataArgs(&entries[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to save metadata for game %d: %w", entries[i].ID, err)
		}
	}

	return tx.Commit()
}

// GetMetadata returns the metadata for one game, or common.ErrNotFound.
func (s *SQLiteStorage) GetMetadata(ctx context.Context, id int) (*model.GameMetadata, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateGameID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+metadataColumns+` FROM games WHERE id = ?`, id)
	m, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetMetadataByIDs returns the stored entries among ids. Missing ids are skipped.
func (s *SQLiteStorage) GetMetadataByIDs(ctx context.Context, ids []int) ([]model.GameMetadata, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	// #nosec G202 - only placeholders are concatenated
	return s.queryMetadata(ctx, s.db, `SELECT `+metadataColumns+` FROM games WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
}

// LoadDatabase reads every stored entry into an in-memory snapshot.
func (s *SQLiteStorage) LoadDatabase(ctx context.Context) (*model.GameDB, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	entries, err := s.queryMetadata(ctx, s.db, `SELECT `+metadataColumns+` FROM games ORDER BY id`)
	if err != nil {
		return nil, err
	}

	db := model.NewGameDB()
	for i := range entries {
		db.Put(&entries[i])
	}
	return db, nil
}

// CountMetadata returns the number of stored entries.
func (s *SQLiteStorage) CountMetadata(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count metadata: %w", err)
	}
	return count, nil
}

// DeleteMetadata removes the entry for id. Deleting a missing entry is not an error.
func (s *SQLiteStorage) DeleteMetadata(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGameID(id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete metadata for game %d: %w", id, err)
	}
	return nil
}

// Stats summarizes the stored metadata.
func (s *SQLiteStorage) Stats(ctx context.Context) (*MetadataStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var stats MetadataStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN last_store_scrape > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN hltb_main > 0 OR hltb_extras > 0 OR hltb_completionist > 0 THEN 1 ELSE 0 END), 0)
		FROM games
	`).Scan(&stats.Total, &stats.Scraped, &stats.WithHltb)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize metadata: %w", err)
	}

	db, err := s.LoadDatabase(ctx)
	if err != nil {
		return nil, err
	}
	stats.Genres = len(db.AllGenres())
	stats.Tags = len(db.AllTags())
	return &stats, nil
}

func (s *SQLiteStorage) queryMetadata(ctx context.Context, q queryable, query string, args ...any) ([]model.GameMetadata, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.GameMetadata
	for rows.Next() {
		m, err := scanMetadata(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata rows: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMetadata(row scanner) (*model.GameMetadata, error) {
	var (
		m                               model.GameMetadata
		genres, flags, tags, devs, pubs sql.NullString
		languages, vrSupport            sql.NullString
	)
	err := row.Scan(
		&m.ID, &m.Name, &m.AppType, &m.SteamReleaseDate,
		&genres, &flags, &tags, &devs, &pubs, &languages, &vrSupport,
		&m.ReviewTotal, &m.ReviewPositivePercentage,
		&m.HltbMain, &m.HltbExtras, &m.HltbCompletionist,
		&m.LastStoreScrape, &m.LastAppInfoUpdate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan metadata: %w", err)
	}

	columns := []struct {
		raw  sql.NullString
		dest any
		name string
	}{
		{genres, &m.Genres, "genres"},
		{flags, &m.Flags, "flags"},
		{tags, &m.Tags, "tags"},
		{devs, &m.Developers, "developers"},
		{pubs, &m.Publishers, "publishers"},
		{languages, &m.Languages, "languages"},
		{vrSupport, &m.VRSupport, "vr_support"},
	}
	for _, c := range columns {
		if !c.raw.Valid || c.raw.String == "" {
			continue
		}
		if err := json.Unmarshal([]byte(c.raw.String), c.dest); err != nil {
			return nil, fmt.Errorf("%w: game %d column %s: %w", common.ErrDatabaseCorrupted, m.ID, c.name, err)
		}
	}
	return &m, nil
}

func metadataArgs(m *model.GameMetadata) ([]any, error) {
	encoded := make([]any, 0, 7)
	for _, v := range []any{m.Genres, m.Flags, m.Tags, m.Developers, m.Publishers, m.Languages, m.VRSupport} {
		s, err := encodeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata for game %d: %w", m.ID, err)
		}
		encoded = append(encoded, s)
	}

	return []any{
		m.ID, m.Name, m.AppType, m.SteamReleaseDate,
		encoded[0], encoded[1], encoded[2], encoded[3], encoded[4], encoded[5], encoded[6],
		m.ReviewTotal, m.ReviewPositivePercentage,
		m.HltbMain, m.HltbExtras, m.HltbCompletionist,
		m.LastStoreScrape, m.LastAppInfoUpdate,
	}, nil
}

// encodeJSON stores empty lists as NULL.
func encodeJSON(v any) (any, error) {
	if s, ok := v.([]string); ok && len(s) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
