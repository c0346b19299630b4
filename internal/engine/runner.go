// Package engine drives AutoCat rules over a game list.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/depressurize/internal/autocat"
	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/Veraticus/depressurize/internal/service"
)

// ErrNoRule is returned when a run is requested without a rule.
var ErrNoRule = errors.New("no autocat to run")

// ProgressReporter is notified as a run advances through its target games.
type ProgressReporter interface {
	Start(rule string, total int)
	Advance(n int)
	Finish()
}

// Runner applies AutoCat rules to one GameList. Only one run binds the list at a time.
type Runner struct {
	games     *gamelist.GameList
	db        service.Database
	curators  service.CuratorFetcher
	refresher service.Refresher
	filters   *gamelist.FilterSet
	rules     autocat.Lookup
	progress  ProgressReporter
	logger    *slog.Logger
	mu        sync.Mutex
}

// Option configures a Runner.
type Option func(*Runner)

// WithCurators sets the fetcher Curator rules use.
func WithCurators(f service.CuratorFetcher) Option {
	return func(r *Runner) { r.curators = f }
}

// WithRefresher enables re-categorizing games that were missing metadata.
func WithRefresher(f service.Refresher) Option {
	return func(r *Runner) { r.refresher = f }
}

// WithFilters sets the filters rule filter names are resolved against.
func WithFilters(fs *gamelist.FilterSet) Option {
	return func(r *Runner) { r.filters = fs }
}

// WithRules sets the rule set Group rules resolve their members from.
func WithRules(l autocat.Lookup) Option {
	return func(r *Runner) { r.rules = l }
}

// WithProgress sets the progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(r *Runner) { r.progress = p }
}

// WithLogger sets the logger handed to the runner and every bound rule.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New creates a Runner over games, reading metadata from db.
func New(games *gamelist.GameList, db service.Database, opts ...Option) *Runner {
	r := &Runner{games: games, db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	if r.progress == nil {
		r.progress = noopProgress{}
	}
	return r
}

// Request describes a single rule run.
type Request struct {
	Rule autocat.AutoCat
	// Games lists target ids in processing order. Nil targets every game with a positive id.
	Games []int
}

// AllRequest describes a run of several rules in order over the same targets.
type AllRequest struct {
	Rules []autocat.AutoCat
	Games []int
}

// Stats summarizes one rule run.
type Stats struct {
	ConfigErr     error
	Rule          string
	NotFound      []int
	Total         int
	Succeeded     int
	Filtered      int
	NotInDatabase int
	Failed        int
	Refreshed     int
	Duration      time.Duration
	Canceled      bool
}

func (s *Stats) record(id int, res autocat.Result) {
	switch res {
	case autocat.Success:
		s.Succeeded++
	case autocat.Filtered:
		s.Filtered++
	case autocat.NotInDatabase:
		s.NotInDatabase++
		s.NotFound = append(s.NotFound, id)
	default:
		s.Failed++
	}
}

// Run applies one rule to the requested games.
//
// A usage error from the rule aborts the run and is returned. Cancellation is checked
// between games; the partial stats are returned with ctx.Err(). Configuration errors
// from PreProcess are recorded in Stats.ConfigErr and the run continues.
func (r *Runner) Run(ctx context.Context, req Request) (*Stats, error) {
	if req.Rule == nil {
		return nil, ErrNoRule
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run(ctx, req.Rule, req.Games)
}

// RunAll applies each rule in order. It stops at the first usage error or cancellation
// and returns the stats gathered so far.
func (r *Runner) RunAll(ctx context.Context, req AllRequest) ([]Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]Stats, 0, len(req.Rules))
	for _, rule := range req.Rules {
		if rule == nil {
			continue
		}
		stats, err := r.run(ctx, rule, req.Games)
		if stats != nil {
			all = append(all, *stats)
		}
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

func (r *Runner) run(ctx context.Context, rule autocat.AutoCat, ids []int) (*Stats, error) {
	if ctx == nil {
		return nil, fmt.Errorf("run %s: nil context", rule.Meta().Name)
	}

	start := time.Now()
	name := rule.Meta().Name
	stats := &Stats{Rule: name}
	defer func() { stats.Duration = time.Since(start) }()

	targets := r.targets(ids)
	stats.Total = len(targets)
	filter := r.filterFor(rule)
	log := r.logger.With("autocat", name, "type", string(rule.Type()))
	log.Info("Starting autocat run", "games", len(targets))

	binding := autocat.Binding{
		Games:    r.games,
		DB:       r.db,
		Curators: r.curators,
		Rules:    r.rules,
		Filters:  r.filters,
		Logger:   log,
	}
	if err := rule.PreProcess(ctx, binding); err != nil {
		stats.ConfigErr = err
		log.Warn("Autocat configuration error; continuing", "error", err)
	}
	defer rule.DeProcess()

	r.progress.Start(name, len(targets))
	defer r.progress.Finish()

	if err := r.categorize(ctx, rule, filter, targets, stats, r.progress); err != nil {
		return stats, r.abort(log, stats, err)
	}

	if len(stats.NotFound) > 0 && r.refresher != nil {
		if err := r.retry(ctx, rule, filter, stats, log); err != nil {
			return stats, r.abort(log, stats, err)
		}
	}

	log.Info("Autocat run complete",
		"succeeded", stats.Succeeded,
		"filtered", stats.Filtered,
		"not_in_database", stats.NotInDatabase,
		"failed", stats.Failed)
	return stats, nil
}

func (r *Runner) abort(log *slog.Logger, stats *Stats, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		stats.Canceled = true
		log.Info("Autocat run canceled",
			"succeeded", stats.Succeeded,
			"remaining", stats.Total-stats.Succeeded-stats.Filtered-stats.NotInDatabase-stats.Failed)
		return err
	}
	log.Error("Autocat run aborted", "error", err)
	return fmt.Errorf("run %s: %w", stats.Rule, err)
}

func (r *Runner) categorize(ctx context.Context, rule autocat.AutoCat, filter *gamelist.Filter, targets []*gamelist.Game, stats *Stats, progress ProgressReporter) error {
	for _, game := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := rule.CategorizeGame(game, filter)
		if err != nil {
			return err
		}
		stats.record(game.ID(), res)
		progress.Advance(1)
	}
	return nil
}

// retry refreshes metadata for the games reported missing and runs the rule over them again.
func (r *Runner) retry(ctx context.Context, rule autocat.AutoCat, filter *gamelist.Filter, stats *Stats, log *slog.Logger) error {
	ids := stats.NotFound
	log.Info("Refreshing metadata for games not in database", "count", len(ids))
	if err := r.refresher.Refresh(ctx, ids); err != nil {
		log.Warn("Metadata refresh failed", "error", err)
		return nil
	}

	targets := make([]*gamelist.Game, 0, len(ids))
	for _, id := range ids {
		if g, ok := r.games.Game(id); ok {
			targets = append(targets, g)
		}
	}

	stats.NotInDatabase -= len(ids)
	stats.NotFound = nil
	stats.Refreshed = len(targets)
	return r.categorize(ctx, rule, filter, targets, stats, noopProgress{})
}

// targets resolves ids to games. Nil ids selects every game with a positive id, by id.
func (r *Runner) targets(ids []int) []*gamelist.Game {
	if ids == nil {
		all := r.games.Games()
		out := make([]*gamelist.Game, 0, len(all))
		for _, g := range all {
			if g.ID() > 0 {
				out = append(out, g)
			}
		}
		return out
	}

	out := make([]*gamelist.Game, 0, len(ids))
	for _, id := range ids {
		g, ok := r.games.Game(id)
		if !ok {
			r.logger.Warn("Skipping unknown game", "id", id)
			continue
		}
		out = append(out, g)
	}
	return out
}

func (r *Runner) filterFor(rule autocat.AutoCat) *gamelist.Filter {
	name := rule.Meta().FilterName()
	if name == "" {
		return nil
	}
	f, ok := r.filters.Get(name)
	if !ok {
		r.logger.Warn("Unknown filter; running without it", "autocat", rule.Meta().Name, "filter", name)
		return nil
	}
	return f
}

type noopProgress struct{}

func (noopProgress) Start(string, int) {}
func (noopProgress) Advance(int)       {}
func (noopProgress) Finish()           {}
