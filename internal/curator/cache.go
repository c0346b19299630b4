package curator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/model"
	"github.com/Veraticus/depressurize/internal/service"
)

// RecommendationStore persists fetched recommendation sets.
type RecommendationStore interface {
	SaveCuratorRecommendations(ctx context.Context, curatorID int64, recs map[int]model.CuratorRecommendation) error
	GetCuratorRecommendations(ctx context.Context, curatorID int64) (map[int]model.CuratorRecommendation, time.Time, error)
}

// CachingFetcher serves recommendations from a store while they are younger than
// MaxAge, fetches otherwise, and falls back to stale entries when fetching fails.
type CachingFetcher struct {
	next   service.CuratorFetcher
	store  RecommendationStore
	logger *slog.Logger
	now    func() time.Time
	maxAge time.Duration
}

// NewCachingFetcher wraps next with a cache in store. A zero maxAge always fetches.
func NewCachingFetcher(next service.CuratorFetcher, store RecommendationStore, maxAge time.Duration) *CachingFetcher {
	return &CachingFetcher{
		next:   next,
		store:  store,
		maxAge: maxAge,
		logger: slog.Default(),
		now:    time.Now,
	}
}

// FetchRecommendations implements service.CuratorFetcher.
func (f *CachingFetcher) FetchRecommendations(ctx context.Context, curatorID int64) (map[int]model.CuratorRecommendation, error) {
	cached, fetchedAt, cacheErr := f.store.GetCuratorRecommendations(ctx, curatorID)
	if cacheErr != nil {
		f.logger.Warn("Curator cache unavailable", "curator_id", curatorID, "error", cacheErr)
	}
	if cacheErr == nil && len(cached) > 0 && f.maxAge > 0 && f.now().Sub(fetchedAt) < f.maxAge {
		f.logger.Debug("Using cached curator recommendations", "curator_id", curatorID, "count", len(cached))
		return cached, nil
	}

	recs, err := f.next.FetchRecommendations(ctx, curatorID)
	if err != nil {
		if len(cached) > 0 && ctx.Err() == nil {
			f.logger.Warn("Curator fetch failed; using cached recommendations",
				"curator_id", curatorID,
				"fetched_at", fetchedAt,
				"error", err)
			return cached, nil
		}
		return nil, err
	}

	if len(recs) > 0 {
		if err := f.store.SaveCuratorRecommendations(ctx, curatorID, recs); err != nil {
			return recs, fmt.Errorf("cache curator %d recommendations: %w", curatorID, err)
		}
	}
	return recs, nil
}

// Offline is a fetcher that never reaches the store. Behind a CachingFetcher it
// serves whatever was cached.
type Offline struct{}

// FetchRecommendations always fails with common.ErrSteamUnavailable.
func (Offline) FetchRecommendations(context.Context, int64) (map[int]model.CuratorRecommendation, error) {
	return nil, fmt.Errorf("offline: %w", common.ErrSteamUnavailable)
}
