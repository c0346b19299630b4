package gamelist

// BulkMode selects how ApplyCategory changes each game's category set.
type BulkMode int

// Bulk assignment modes.
const (
	// BulkAdd adds the category to each game.
	BulkAdd BulkMode = iota
	// BulkRemove removes the category from each game.
	BulkRemove
	// BulkSetExclusive replaces each game's set with just the category.
	BulkSetExclusive
)

func (m BulkMode) String() string {
	switch m {
	case BulkAdd:
		return "add"
	case BulkRemove:
		return "remove"
	case BulkSetExclusive:
		return "set"
	}
	return "unknown"
}

// ApplyCategory changes the category set of every listed game according to mode and
// returns how many games were found. With BulkSetExclusive a nil category clears the
// games, and preserveFavorite keeps the favorite category in place.
func (gl *GameList) ApplyCategory(ids []int, c *Category, mode BulkMode, preserveFavorite bool) (int, error) {
	if c != nil && !gl.owns(c) {
		return 0, ErrCategoryNotFound
	}
	if c == nil && mode != BulkSetExclusive {
		return 0, ErrCategoryNotFound
	}

	touched := 0
	for _, id := range ids {
		g, ok := gl.games[id]
		if !ok {
			continue
		}
		touched++

		switch mode {
		case BulkAdd:
			g.AddCategory(c)
		case BulkRemove:
			g.RemoveCategory(c)
		case BulkSetExclusive:
			if preserveFavorite {
				g.ClearCategoriesExcept(gl.favorite)
			} else {
				g.ClearCategories()
			}
			if c != nil {
				g.AddCategory(c)
			}
		}
	}
	return touched, nil
}

// AddGameCategory adds c to every listed game.
func (gl *GameList) AddGameCategory(ids []int, c *Category) (int, error) {
	return gl.ApplyCategory(ids, c, BulkAdd, false)
}

// RemoveGameCategory removes c from every listed game.
func (gl *GameList) RemoveGameCategory(ids []int, c *Category) (int, error) {
	return gl.ApplyCategory(ids, c, BulkRemove, false)
}

// SetGameCategories makes c the only category of every listed game.
func (gl *GameList) SetGameCategories(ids []int, c *Category, preserveFavorite bool) (int, error) {
	return gl.ApplyCategory(ids, c, BulkSetExclusive, preserveFavorite)
}

// ClearGameCategories removes all categories from every listed game.
func (gl *GameList) ClearGameCategories(ids []int, preserveFavorite bool) int {
	n, _ := gl.ApplyCategory(ids, nil, BulkSetExclusive, preserveFavorite)
	return n
}
