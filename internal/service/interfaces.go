// Package service defines the interfaces for the collaborators the categorization core depends on.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/depressurize/internal/model"
)

// Database is the external metadata source consulted by AutoCat rules.
// Lookups are synchronous; implementations are expected to be in-memory snapshots.
type Database interface {
	Contains(id int) bool
	Get(id int) (*model.GameMetadata, bool)
	IDs() []int
	AllGenres() []string
	AllTags() []string
}

// CuratorFetcher downloads the recommendation set published by a Steam curator.
type CuratorFetcher interface {
	FetchRecommendations(ctx context.Context, curatorID int64) (map[int]model.CuratorRecommendation, error)
}

// Refresher updates metadata for the given game ids in place, so that games reported as
// not in the database can be categorized again within the same run.
type Refresher interface {
	Refresh(ctx context.Context, ids []int) error
}

// MetadataStore persists game metadata and produces Database snapshots.
type MetadataStore interface {
	SaveMetadata(ctx context.Context, entries []model.GameMetadata) error
	GetMetadata(ctx context.Context, id int) (*model.GameMetadata, error)
	LoadDatabase(ctx context.Context) (*model.GameDB, error)
	CountMetadata(ctx context.Context) (int, error)
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
