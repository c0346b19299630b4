package autocat

import (
	"context"
	"testing"

	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/Veraticus/depressurize/internal/model"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	games *gamelist.GameList
	db    *model.GameDB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{games: gamelist.New(), db: model.NewGameDB()}
}

// game adds a game with the given categories and returns it.
func (f *fixture) game(t *testing.T, id int, name string, categories ...string) *gamelist.Game {
	t.Helper()
	g, err := f.games.AddGame(id, name)
	require.NoError(t, err)
	for _, c := range categories {
		cat, err := f.games.GetCategory(c)
		require.NoError(t, err)
		require.True(t, g.AddCategory(cat))
	}
	return g
}

// scraped stores metadata for m.ID marked as scraped.
func (f *fixture) scraped(m model.GameMetadata) {
	if m.LastStoreScrape == 0 {
		m.LastStoreScrape = 1700000000
	}
	f.db.Put(&m)
}

func (f *fixture) binding() Binding {
	return Binding{Games: f.games, DB: f.db}
}

func (f *fixture) run(t *testing.T, ac AutoCat, g *gamelist.Game) Result {
	t.Helper()
	require.NoError(t, ac.PreProcess(context.Background(), f.binding()))
	defer ac.DeProcess()
	res, err := ac.CategorizeGame(g, nil)
	require.NoError(t, err)
	return res
}

func (f *fixture) count(name string) int {
	c, ok := f.games.Category(name)
	if !ok {
		return 0
	}
	return c.Count()
}

type fakeCurators struct {
	recs  map[int]model.CuratorRecommendation
	err   error
	calls []int64
}

func (f *fakeCurators) FetchRecommendations(_ context.Context, id int64) (map[int]model.CuratorRecommendation, error) {
	f.calls = append(f.calls, id)
	return f.recs, f.err
}
