package gamelist

import (
	"sort"
	"strings"

	"github.com/Veraticus/depressurize/internal/model"
)

// Game is one entry in a GameList. It holds handles to categories owned by the same list.
type Game struct {
	list         *GameList
	categories   map[CategoryID]struct{}
	Name         string
	LaunchString string
	id           int
	Source       model.Source
	Hidden       bool
}

// ID returns the game's identity. Positive ids come from the store catalog, negative
// ids are local shortcuts.
func (g *Game) ID() int {
	return g.id
}

// IsShortcut reports whether the game is a locally added shortcut.
func (g *Game) IsShortcut() bool {
	return g.id < 0
}

// AddCategory links c to the game. It returns false when c is already present, nil,
// removed, or owned by another GameList.
func (g *Game) AddCategory(c *Category) bool {
	if g.list == nil || !g.list.owns(c) {
		return false
	}
	if _, ok := g.categories[c.id]; ok {
		return false
	}
	g.categories[c.id] = struct{}{}
	c.count++
	return true
}

// RemoveCategory unlinks c from the game. It returns false when c was not present.
func (g *Game) RemoveCategory(c *Category) bool {
	if c == nil || g.list == nil || c.list != g.list {
		return false
	}
	if _, ok := g.categories[c.id]; !ok {
		return false
	}
	delete(g.categories, c.id)
	c.count--
	return true
}

// ContainsCategory reports whether the game holds c.
func (g *Game) ContainsCategory(c *Category) bool {
	if c == nil || c.list != g.list || g.list == nil {
		return false
	}
	_, ok := g.categories[c.id]
	return ok
}

// ClearCategories removes every category from the game, including the favorite.
func (g *Game) ClearCategories() {
	g.ClearCategoriesExcept(nil)
}

// ClearCategoriesExcept removes every category except keep.
func (g *Game) ClearCategoriesExcept(keep *Category) {
	for id := range g.categories {
		if keep != nil && keep.list == g.list && id == keep.id {
			continue
		}
		if c, ok := g.list.categories[id]; ok {
			c.count--
		}
		delete(g.categories, id)
	}
}

// Categories returns the game's categories sorted by name.
func (g *Game) Categories() []*Category {
	out := make([]*Category, 0, len(g.categories))
	for id := range g.categories {
		if c, ok := g.list.categories[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// CategoryNames returns the names of the game's categories, sorted.
func (g *Game) CategoryNames() []string {
	cats := g.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.name
	}
	return names
}

// HasCategories reports whether the game holds any category.
func (g *Game) HasCategories() bool {
	return len(g.categories) > 0
}

// HasCategoriesExcept reports whether the game holds any category other than c.
func (g *Game) HasCategoriesExcept(c *Category) bool {
	for id := range g.categories {
		if c == nil || id != c.id {
			return true
		}
	}
	return false
}

// IsFavorite reports whether the game holds the favorite category.
func (g *Game) IsFavorite() bool {
	return g.list != nil && g.ContainsCategory(g.list.favorite)
}

// SetFavorite adds or removes the favorite category.
func (g *Game) SetFavorite(fav bool) {
	if g.list == nil {
		return
	}
	if fav {
		g.AddCategory(g.list.favorite)
	} else {
		g.RemoveCategory(g.list.favorite)
	}
}

// Uncategorized reports whether the game has no category besides the favorite.
func (g *Game) Uncategorized() bool {
	if g.list == nil {
		return !g.HasCategories()
	}
	return !g.HasCategoriesExcept(g.list.favorite)
}

// CategoryString joins the game's category names, skipping except. It returns
// ifEmpty when nothing remains.
func (g *Game) CategoryString(except *Category, ifEmpty string) string {
	var names []string
	for _, c := range g.Categories() {
		if except != nil && c == except {
			continue
		}
		names = append(names, c.name)
	}
	if len(names) == 0 {
		return ifEmpty
	}
	return strings.Join(names, ", ")
}

// IncludeGame reports whether the game passes f. A nil filter includes every game.
func (g *Game) IncludeGame(f *Filter) bool {
	return IncludeGame(g, f)
}
