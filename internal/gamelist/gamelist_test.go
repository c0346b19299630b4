package gamelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestList(t *testing.T, ids ...int) *GameList {
	t.Helper()
	gl := New()
	for _, id := range ids {
		_, err := gl.AddGame(id, "")
		require.NoError(t, err)
	}
	return gl
}

func mustCategory(t *testing.T, gl *GameList, name string) *Category {
	t.Helper()
	c, err := gl.GetCategory(name)
	require.NoError(t, err)
	return c
}

func mustGame(t *testing.T, gl *GameList, id int) *Game {
	t.Helper()
	g, ok := gl.Game(id)
	require.True(t, ok, "game %d", id)
	return g
}

func TestGameList_AddCategory(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		input   string
	}{
		{name: "new category", input: "RPG"},
		{name: "empty name", input: "", wantErr: ErrEmptyCategoryName},
		{name: "whitespace name", input: "   ", wantErr: ErrEmptyCategoryName},
		{name: "existing category", input: "Action", wantErr: ErrCategoryExists},
		{name: "favorite already exists", input: FavoriteCategoryName, wantErr: ErrCategoryExists},
		{name: "case sensitive", input: "action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl := New()
			_, err := gl.AddCategory("Action")
			require.NoError(t, err)

			c, err := gl.AddCategory(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, c.Name())
			assert.Equal(t, 0, c.Count())
			require.NoError(t, gl.Verify())
		})
	}
}

func TestGameList_GetCategoryIsGetOrCreate(t *testing.T) {
	gl := New()

	first := mustCategory(t, gl, "Backlog")
	second := mustCategory(t, gl, "Backlog")
	assert.Same(t, first, second)
	assert.Equal(t, 2, gl.CategoryCount())

	_, err := gl.GetCategory("")
	require.ErrorIs(t, err, ErrEmptyCategoryName)
}

func TestGameList_RenameCategory(t *testing.T) {
	t.Run("target name taken", func(t *testing.T) {
		gl := newTestList(t, 10)
		old := mustCategory(t, gl, "Old")
		mustCategory(t, gl, "New")
		mustGame(t, gl, 10).AddCategory(old)

		err := gl.RenameCategory(old, "New")
		require.ErrorIs(t, err, ErrCategoryExists)
		assert.Equal(t, "Old", old.Name())
		found, ok := gl.Category("Old")
		require.True(t, ok)
		assert.Same(t, old, found)
		assert.True(t, mustGame(t, gl, 10).ContainsCategory(old))
	})

	t.Run("renames in place", func(t *testing.T) {
		gl := newTestList(t, 10, 20)
		old := mustCategory(t, gl, "Old")
		mustGame(t, gl, 10).AddCategory(old)
		mustGame(t, gl, 20).AddCategory(old)

		require.NoError(t, gl.RenameCategory(old, "New"))

		renamed, ok := gl.Category("New")
		require.True(t, ok)
		assert.Same(t, old, renamed)
		_, ok = gl.Category("Old")
		assert.False(t, ok)
		assert.Equal(t, []string{"New"}, mustGame(t, gl, 10).CategoryNames())
		assert.Equal(t, []string{"New"}, mustGame(t, gl, 20).CategoryNames())
		assert.Equal(t, 2, renamed.Count())
		require.NoError(t, gl.Verify())
	})

	t.Run("same name is a no-op", func(t *testing.T) {
		gl := New()
		c := mustCategory(t, gl, "Same")
		require.NoError(t, gl.RenameCategory(c, "Same"))
		assert.Equal(t, "Same", c.Name())
	})

	t.Run("favorite is protected", func(t *testing.T) {
		gl := New()
		err := gl.RenameCategory(gl.Favorite(), "Loved")
		require.ErrorIs(t, err, ErrProtectedCategory)
		assert.Equal(t, FavoriteCategoryName, gl.Favorite().Name())
	})

	t.Run("foreign category", func(t *testing.T) {
		gl := New()
		other := New()
		c := mustCategory(t, other, "Elsewhere")
		require.ErrorIs(t, gl.RenameCategory(c, "Here"), ErrCategoryNotFound)
	})
}

func TestGameList_RemoveCategory(t *testing.T) {
	gl := newTestList(t, 1, 2, 3)
	rpg := mustCategory(t, gl, "RPG")
	for _, id := range []int{1, 2} {
		mustGame(t, gl, id).AddCategory(rpg)
	}
	require.Equal(t, 2, rpg.Count())

	require.NoError(t, gl.RemoveCategory(rpg))

	assert.True(t, rpg.Removed())
	_, ok := gl.Category("RPG")
	assert.False(t, ok)
	for _, g := range gl.Games() {
		assert.False(t, g.HasCategories(), "game %d", g.ID())
	}
	require.NoError(t, gl.Verify())

	// A stale handle is rejected everywhere.
	assert.ErrorIs(t, gl.RemoveCategory(rpg), ErrCategoryNotFound)
	assert.False(t, mustGame(t, gl, 3).AddCategory(rpg))
	assert.ErrorIs(t, gl.RemoveCategory(gl.Favorite()), ErrProtectedCategory)
}

func TestGameList_MergeCategory(t *testing.T) {
	gl := newTestList(t, 1, 2, 3)
	from := mustCategory(t, gl, "Shooter")
	into := mustCategory(t, gl, "Action")
	mustGame(t, gl, 1).AddCategory(from)
	mustGame(t, gl, 2).AddCategory(from)
	mustGame(t, gl, 2).AddCategory(into)
	mustGame(t, gl, 3).AddCategory(into)

	require.NoError(t, gl.MergeCategory(from, into))

	assert.True(t, from.Removed())
	assert.Equal(t, 3, into.Count())
	assert.Equal(t, []string{"Action"}, mustGame(t, gl, 2).CategoryNames())
	require.NoError(t, gl.Verify())

	assert.ErrorIs(t, gl.MergeCategory(gl.Favorite(), into), ErrProtectedCategory)
}

func TestGameList_RemoveEmptyCategories(t *testing.T) {
	gl := newTestList(t, 1)
	used := mustCategory(t, gl, "Used")
	mustCategory(t, gl, "Empty A")
	mustCategory(t, gl, "Empty B")
	mustGame(t, gl, 1).AddCategory(used)

	assert.Equal(t, 2, gl.RemoveEmptyCategories())
	assert.Equal(t, 0, gl.RemoveEmptyCategories(), "second pass must be a no-op")

	_, ok := gl.Category("Used")
	assert.True(t, ok)
	assert.Same(t, gl.Favorite(), mustCategoryLookup(t, gl, FavoriteCategoryName))
	require.NoError(t, gl.Verify())
}

func mustCategoryLookup(t *testing.T, gl *GameList, name string) *Category {
	t.Helper()
	c, ok := gl.Category(name)
	require.True(t, ok, "category %q", name)
	return c
}

func TestGameList_AddGameRejectsDuplicateIDs(t *testing.T) {
	gl := newTestList(t, 42)
	_, err := gl.AddGame(42, "again")
	require.ErrorIs(t, err, ErrDuplicateGame)

	shortcut, err := gl.AddGame(-7, "Emulator")
	require.NoError(t, err)
	assert.True(t, shortcut.IsShortcut())
	assert.Equal(t, 2, gl.Len())
}

func TestGameList_RemoveGameReleasesCategories(t *testing.T) {
	gl := newTestList(t, 1, 2)
	c := mustCategory(t, gl, "Puzzle")
	mustGame(t, gl, 1).AddCategory(c)
	mustGame(t, gl, 2).AddCategory(c)

	require.True(t, gl.RemoveGame(1))
	assert.False(t, gl.RemoveGame(1))
	assert.Equal(t, 1, c.Count())
	require.NoError(t, gl.Verify())

	// Empty categories are never removed automatically.
	require.True(t, gl.RemoveGame(2))
	assert.Equal(t, 0, c.Count())
	_, ok := gl.Category("Puzzle")
	assert.True(t, ok)
}

func TestGame_CategoryMutationsAreIdempotent(t *testing.T) {
	gl := newTestList(t, 1)
	g := mustGame(t, gl, 1)
	c := mustCategory(t, gl, "Indie")

	assert.True(t, g.AddCategory(c))
	assert.False(t, g.AddCategory(c))
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, []string{"Indie"}, g.CategoryNames())

	assert.True(t, g.RemoveCategory(c))
	assert.False(t, g.RemoveCategory(c))
	assert.Equal(t, 0, c.Count())
	require.NoError(t, gl.Verify())
}

func TestGame_RejectsForeignCategory(t *testing.T) {
	gl := newTestList(t, 1)
	other := New()
	foreign := mustCategory(t, other, "Foreign")

	g := mustGame(t, gl, 1)
	assert.False(t, g.AddCategory(foreign))
	assert.False(t, g.AddCategory(nil))
	assert.False(t, g.ContainsCategory(foreign))
	assert.Equal(t, 0, foreign.Count())
	require.NoError(t, gl.Verify())
}

func TestGame_Favorite(t *testing.T) {
	gl := newTestList(t, 1)
	g := mustGame(t, gl, 1)

	assert.True(t, g.Uncategorized())
	g.SetFavorite(true)
	assert.True(t, g.IsFavorite())
	assert.True(t, g.Uncategorized(), "favorite does not count as a category")

	g.AddCategory(mustCategory(t, gl, "Strategy"))
	assert.False(t, g.Uncategorized())
	assert.Equal(t, "Strategy", g.CategoryString(gl.Favorite(), "Uncategorized"))

	g.ClearCategoriesExcept(gl.Favorite())
	assert.True(t, g.IsFavorite())
	assert.Equal(t, "Uncategorized", g.CategoryString(gl.Favorite(), "Uncategorized"))

	g.SetFavorite(false)
	assert.False(t, g.HasCategories())
	require.NoError(t, gl.Verify())
}

func TestGameList_CountDerivationAfterMixedOperations(t *testing.T) {
	gl := newTestList(t, 1, 2, 3, 4, 5)
	names := []string{"A", "B", "C"}
	cats := make([]*Category, len(names))
	for i, n := range names {
		cats[i] = mustCategory(t, gl, n)
	}

	_, err := gl.AddGameCategory([]int{1, 2, 3}, cats[0])
	require.NoError(t, err)
	_, err = gl.AddGameCategory([]int{3, 4, 5, 99}, cats[1])
	require.NoError(t, err)
	_, err = gl.RemoveGameCategory([]int{1, 4}, cats[0])
	require.NoError(t, err)
	_, err = gl.SetGameCategories([]int{5}, cats[2], true)
	require.NoError(t, err)
	mustGame(t, gl, 2).SetFavorite(true)
	require.NoError(t, gl.RenameCategory(cats[1], "B2"))
	require.NoError(t, gl.RemoveCategory(cats[2]))

	require.NoError(t, gl.Verify())
	for _, c := range gl.Categories() {
		held := 0
		for _, g := range gl.Games() {
			if g.ContainsCategory(c) {
				held++
			}
		}
		assert.Equal(t, held, c.Count(), "category %q", c.Name())
	}
}
