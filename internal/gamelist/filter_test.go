package gamelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncludeGame(t *testing.T) {
	gl := New()
	visible, err := gl.AddGame(1, "Portal 2")
	require.NoError(t, err)
	hidden, err := gl.AddGame(2, "Hidden Gem")
	require.NoError(t, err)
	hidden.Hidden = true
	bare, err := gl.AddGame(3, "Bare Game")
	require.NoError(t, err)
	bare.SetFavorite(true)

	puzzle := mustCategory(t, gl, "Puzzle")
	coop := mustCategory(t, gl, "Co-op")
	visible.AddCategory(puzzle)
	visible.AddCategory(coop)
	hidden.AddCategory(puzzle)

	tests := []struct {
		filter *Filter
		name   string
		want   []int
	}{
		{name: "nil filter includes everything", filter: nil, want: []int{1, 2, 3}},
		{name: "empty filter includes everything", filter: &Filter{Name: "empty"}, want: []int{1, 2, 3}},
		{name: "not hidden", filter: &Filter{Hidden: No}, want: []int{1, 3}},
		{name: "only hidden", filter: &Filter{Hidden: Yes}, want: []int{2}},
		{name: "uncategorized ignores favorite", filter: &Filter{Uncategorized: Yes}, want: []int{3}},
		{name: "categorized", filter: &Filter{Uncategorized: No}, want: []int{1, 2}},
		{name: "allow any of", filter: &Filter{Allow: []string{"Co-op", "Missing"}}, want: []int{1}},
		{name: "require all of", filter: &Filter{Require: []string{"Puzzle", "Co-op"}}, want: []int{1}},
		{name: "exclude", filter: &Filter{Exclude: []string{"Co-op"}}, want: []int{2, 3}},
		{name: "require unknown category", filter: &Filter{Require: []string{"Nope"}}, want: nil},
		{name: "name substring is case insensitive", filter: &Filter{NameContains: "PORTAL"}, want: []int{1}},
		{
			name:   "conditions are combined with and",
			filter: &Filter{Require: []string{"Puzzle"}, Hidden: No},
			want:   []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int
			for _, g := range gl.Games() {
				if IncludeGame(g, tt.filter) {
					got = append(got, g.ID())
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIncludeGame_NilGame(t *testing.T) {
	assert.False(t, IncludeGame(nil, &Filter{}))
}

func TestFilterSet(t *testing.T) {
	set := NewFilterSet(&Filter{Name: "Visible", Hidden: No}, &Filter{Name: "Visible"})
	assert.Equal(t, 1, set.Len(), "duplicate names are dropped")

	require.ErrorIs(t, set.Add(&Filter{}), ErrEmptyFilterName)
	require.ErrorIs(t, set.Add(&Filter{Name: "Visible"}), ErrDuplicateFilter)
	require.NoError(t, set.Add(&Filter{Name: "Backlog", Require: []string{"Backlog"}}))

	f, ok := set.Get("Visible")
	require.True(t, ok)
	assert.Equal(t, No, f.Hidden)

	names := make([]string, 0)
	for _, f := range set.All() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Visible", "Backlog"}, names)

	assert.True(t, set.Remove("Visible"))
	assert.False(t, set.Remove("Visible"))
	assert.Equal(t, 1, set.Len())

	var nilSet *FilterSet
	_, ok = nilSet.Get("anything")
	assert.False(t, ok)
}

func TestFilter_CloneIsDeep(t *testing.T) {
	f := &Filter{Name: "f", Allow: []string{"A"}}
	c := f.Clone()
	c.Allow[0] = "B"
	assert.Equal(t, "A", f.Allow[0])
	assert.Nil(t, (*Filter)(nil).Clone())
}
