package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/depressurize/internal/autocat"
	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/Veraticus/depressurize/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRule returns preset results per game id and records its lifecycle calls.
type scriptedRule struct {
	autocat.Common
	results     map[int]autocat.Result
	err         error
	onGame      func(id int)
	seen        []int
	preErr      error
	preCalls    int
	deCalls     int
	boundFilter *gamelist.Filter
}

func (s *scriptedRule) Type() autocat.Type { return "AutoCatScripted" }

func (s *scriptedRule) PreProcess(context.Context, autocat.Binding) error {
	s.preCalls++
	return s.preErr
}

func (s *scriptedRule) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (autocat.Result, error) {
	s.seen = append(s.seen, game.ID())
	s.boundFilter = filter
	if s.onGame != nil {
		s.onGame(game.ID())
	}
	if s.err != nil {
		return autocat.Failure, s.err
	}
	if res, ok := s.results[game.ID()]; ok {
		return res, nil
	}
	return autocat.Success, nil
}

func (s *scriptedRule) DeProcess()             { s.deCalls++ }
func (s *scriptedRule) Clone() autocat.AutoCat { c := *s; return &c }

type recordingProgress struct {
	rule     string
	total    int
	advanced int
	finished bool
}

func (p *recordingProgress) Start(rule string, total int) { p.rule, p.total = rule, total }
func (p *recordingProgress) Advance(n int)                { p.advanced += n }
func (p *recordingProgress) Finish()                      { p.finished = true }

type fakeRefresher struct {
	db    *model.GameDB
	calls [][]int
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context, ids []int) error {
	f.calls = append(f.calls, append([]int(nil), ids...))
	if f.err != nil {
		return f.err
	}
	for _, id := range ids {
		f.db.Put(&model.GameMetadata{ID: id, LastStoreScrape: 1700000000})
	}
	return nil
}

func newLibrary(t *testing.T, ids ...int) *gamelist.GameList {
	t.Helper()
	gl := gamelist.New()
	for _, id := range ids {
		_, err := gl.AddGame(id, "Game")
		require.NoError(t, err)
	}
	return gl
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name     string
		ids      []int
		results  map[int]autocat.Result
		wantSeen []int
		want     Stats
	}{
		{
			name:     "default targets skip shortcuts in id order",
			results:  map[int]autocat.Result{3: autocat.Filtered},
			wantSeen: []int{1, 2, 3},
			want:     Stats{Total: 3, Succeeded: 2, Filtered: 1},
		},
		{
			name:     "explicit targets keep caller order and skip unknown ids",
			ids:      []int{3, 99, 1},
			wantSeen: []int{3, 1},
			want:     Stats{Total: 2, Succeeded: 2},
		},
		{
			name:     "tally every outcome",
			results:  map[int]autocat.Result{1: autocat.NotInDatabase, 2: autocat.Failure, 3: autocat.Filtered},
			wantSeen: []int{1, 2, 3},
			want:     Stats{Total: 3, NotInDatabase: 1, Failed: 1, Filtered: 1, NotFound: []int{1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &scriptedRule{Common: autocat.Common{Name: "scripted"}, results: tt.results}
			progress := &recordingProgress{}
			r := New(newLibrary(t, -5, 1, 2, 3), model.NewGameDB(), WithProgress(progress))

			stats, err := r.Run(context.Background(), Request{Rule: rule, Games: tt.ids})
			require.NoError(t, err)

			assert.Equal(t, tt.wantSeen, rule.seen)
			assert.Equal(t, tt.want.Total, stats.Total)
			assert.Equal(t, tt.want.Succeeded, stats.Succeeded)
			assert.Equal(t, tt.want.Filtered, stats.Filtered)
			assert.Equal(t, tt.want.NotInDatabase, stats.NotInDatabase)
			assert.Equal(t, tt.want.Failed, stats.Failed)
			assert.Equal(t, tt.want.NotFound, stats.NotFound)
			assert.Equal(t, "scripted", stats.Rule)

			assert.Equal(t, 1, rule.preCalls)
			assert.Equal(t, 1, rule.deCalls)
			assert.Equal(t, progress.total, progress.advanced)
			assert.True(t, progress.finished)
		})
	}
}

func TestRunner_NoRule(t *testing.T) {
	r := New(newLibrary(t), model.NewGameDB())
	_, err := r.Run(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNoRule)
}

func TestRunner_ConfigErrorIsRecordedAndRunContinues(t *testing.T) {
	gl := newLibrary(t, 1, 2)
	curator := autocat.NewCurator("curator")
	curator.CuratorURL = "not-a-url"

	r := New(gl, model.NewGameDB())
	stats, err := r.Run(context.Background(), Request{Rule: curator})
	require.NoError(t, err)

	assert.ErrorIs(t, stats.ConfigErr, autocat.ErrInvalidCuratorURL)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 0, stats.Succeeded)
}

func TestRunner_UsageErrorAborts(t *testing.T) {
	rule := &scriptedRule{Common: autocat.Common{Name: "broken"}, err: autocat.ErrNotBound}
	r := New(newLibrary(t, 1, 2), model.NewGameDB())

	stats, err := r.Run(context.Background(), Request{Rule: rule})
	require.Error(t, err)
	assert.ErrorIs(t, err, autocat.ErrNotBound)
	assert.Equal(t, []int{1}, rule.seen, "run stops at the first usage error")
	assert.Equal(t, 1, rule.deCalls)
	assert.False(t, stats.Canceled)
}

func TestRunner_CancellationBetweenGames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rule := &scriptedRule{Common: autocat.Common{Name: "slow"}}
	rule.onGame = func(id int) {
		if id == 2 {
			cancel()
		}
	}
	gl := newLibrary(t, 1, 2, 3, 4)
	r := New(gl, model.NewGameDB())

	stats, err := r.Run(ctx, Request{Rule: rule})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, stats)
	assert.True(t, stats.Canceled)
	assert.Equal(t, []int{1, 2}, rule.seen, "the game in progress completes")
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 1, rule.deCalls)
	require.NoError(t, gl.Verify())
}

func TestRunner_RefreshRerunsMissingGames(t *testing.T) {
	gl := newLibrary(t, 1, 2)
	db := model.NewGameDB()
	db.Put(&model.GameMetadata{ID: 1, LastStoreScrape: 1700000000})

	manual := autocat.NewManual("manual")
	manual.Add = []string{"Done"}
	refresher := &fakeRefresher{db: db}

	r := New(gl, db, WithRefresher(refresher))
	stats, err := r.Run(context.Background(), Request{Rule: manual})
	require.NoError(t, err)

	assert.Equal(t, [][]int{{2}}, refresher.calls)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 0, stats.NotInDatabase)
	assert.Empty(t, stats.NotFound)
	assert.Equal(t, 1, stats.Refreshed)

	g2, _ := gl.Game(2)
	assert.Equal(t, []string{"Done"}, g2.CategoryNames())
}

func TestRunner_RefreshFailureKeepsNotFound(t *testing.T) {
	gl := newLibrary(t, 1)
	db := model.NewGameDB()
	refresher := &fakeRefresher{db: db, err: errors.New("offline")}

	r := New(gl, db, WithRefresher(refresher))
	stats, err := r.Run(context.Background(), Request{Rule: autocat.NewManual("manual")})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, stats.NotFound)
	assert.Equal(t, 1, stats.NotInDatabase)
}

func TestRunner_ResolvesFilterByName(t *testing.T) {
	filter := &gamelist.Filter{Name: "played"}
	rule := &scriptedRule{Common: autocat.Common{Name: "r", Filter: "played"}}
	r := New(newLibrary(t, 1), model.NewGameDB(), WithFilters(gamelist.NewFilterSet(filter)))

	_, err := r.Run(context.Background(), Request{Rule: rule})
	require.NoError(t, err)
	assert.Same(t, filter, rule.boundFilter)

	rule.Filter = "missing"
	_, err = r.Run(context.Background(), Request{Rule: rule})
	require.NoError(t, err)
	assert.Nil(t, rule.boundFilter)
}

func TestRunner_RunAll(t *testing.T) {
	gl := newLibrary(t, 1, 2)
	db := model.NewGameDB()
	db.Put(&model.GameMetadata{ID: 1, SteamReleaseDate: "2011", Genres: []string{"RPG"}, LastStoreScrape: 1})
	db.Put(&model.GameMetadata{ID: 2, SteamReleaseDate: "1998"})

	rules := autocat.List{autocat.NewGenre("Genre"), autocat.NewYear("Year")}
	r := New(gl, db, WithRules(rules))

	all, err := r.RunAll(context.Background(), AllRequest{Rules: rules})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Genre", all[0].Rule)
	assert.Equal(t, 1, all[0].Succeeded)
	assert.Equal(t, 1, all[0].NotInDatabase)
	assert.Equal(t, 2, all[1].Succeeded)

	g1, _ := gl.Game(1)
	g2, _ := gl.Game(2)
	assert.Equal(t, []string{"2011", "RPG"}, g1.CategoryNames())
	assert.Equal(t, []string{"1998"}, g2.CategoryNames())
}

func TestRunner_RunAllStopsOnUsageError(t *testing.T) {
	broken := &scriptedRule{Common: autocat.Common{Name: "broken"}, err: autocat.ErrNotBound}
	after := &scriptedRule{Common: autocat.Common{Name: "after"}}
	r := New(newLibrary(t, 1), model.NewGameDB())

	all, err := r.RunAll(context.Background(), AllRequest{Rules: []autocat.AutoCat{broken, after}})
	assert.ErrorIs(t, err, autocat.ErrNotBound)
	assert.Len(t, all, 1)
	assert.Zero(t, after.preCalls)
}
