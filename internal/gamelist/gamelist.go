// Package gamelist holds the in-memory catalog of games and categories for one profile.
package gamelist

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/depressurize/internal/model"
)

// FavoriteCategoryName is the name of the protected favorite category.
const FavoriteCategoryName = "favorite"

// GameList errors.
var (
	ErrEmptyCategoryName = errors.New("category name cannot be empty")
	ErrCategoryExists    = errors.New("category already exists")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrProtectedCategory = errors.New("category is protected")
	ErrDuplicateGame     = errors.New("game already exists")
	ErrGameNotFound      = errors.New("game not found")
)

// GameList owns a set of games and the categories they reference.
type GameList struct {
	games      map[int]*Game
	categories map[CategoryID]*Category
	byName     map[string]CategoryID
	favorite   *Category
	nextID     CategoryID
}

// New creates an empty GameList holding only the favorite category.
func New() *GameList {
	gl := &GameList{
		games:      make(map[int]*Game),
		categories: make(map[CategoryID]*Category),
		byName:     make(map[string]CategoryID),
	}
	gl.favorite = gl.createCategory(FavoriteCategoryName)
	return gl
}

// Favorite returns the protected favorite category.
func (gl *GameList) Favorite() *Category {
	return gl.favorite
}

func (gl *GameList) owns(c *Category) bool {
	if c == nil || c.list != gl {
		return false
	}
	return gl.categories[c.id] == c
}

func (gl *GameList) createCategory(name string) *Category {
	gl.nextID++
	c := &Category{list: gl, name: name, id: gl.nextID}
	gl.categories[c.id] = c
	gl.byName[name] = c.id
	return c
}

func validName(name string) bool {
	return strings.TrimSpace(name) != ""
}

// AddCategory creates a new empty category.
func (gl *GameList) AddCategory(name string) (*Category, error) {
	if !validName(name) {
		return nil, ErrEmptyCategoryName
	}
	if _, exists := gl.byName[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrCategoryExists, name)
	}
	return gl.createCategory(name), nil
}

// Category looks up a category by name without creating it.
func (gl *GameList) Category(name string) (*Category, bool) {
	id, ok := gl.byName[name]
	if !ok {
		return nil, false
	}
	return gl.categories[id], true
}

// CategoryByID resolves a handle.
func (gl *GameList) CategoryByID(id CategoryID) (*Category, bool) {
	c, ok := gl.categories[id]
	return c, ok
}

// GetCategory returns the category with the given name, creating it if needed.
func (gl *GameList) GetCategory(name string) (*Category, error) {
	if c, ok := gl.Category(name); ok {
		return c, nil
	}
	if !validName(name) {
		return nil, ErrEmptyCategoryName
	}
	return gl.createCategory(name), nil
}

// RenameCategory renames c in place. Games keep their link since they hold the handle.
func (gl *GameList) RenameCategory(c *Category, newName string) error {
	if !gl.owns(c) {
		return ErrCategoryNotFound
	}
	if c == gl.favorite {
		return fmt.Errorf("%w: cannot rename %q", ErrProtectedCategory, c.name)
	}
	if !validName(newName) {
		return ErrEmptyCategoryName
	}
	if newName == c.name {
		return nil
	}
	if _, exists := gl.byName[newName]; exists {
		return fmt.Errorf("%w: %q", ErrCategoryExists, newName)
	}

	delete(gl.byName, c.name)
	c.name = newName
	gl.byName[newName] = c.id
	return nil
}

// RemoveCategory detaches c from every game and deletes it.
func (gl *GameList) RemoveCategory(c *Category) error {
	if !gl.owns(c) {
		return ErrCategoryNotFound
	}
	if c == gl.favorite {
		return fmt.Errorf("%w: cannot remove %q", ErrProtectedCategory, c.name)
	}

	for _, g := range gl.games {
		g.RemoveCategory(c)
	}
	delete(gl.categories, c.id)
	delete(gl.byName, c.name)
	c.list = nil
	return nil
}

// MergeCategory moves every game holding from into into, then removes from.
func (gl *GameList) MergeCategory(from, into *Category) error {
	if !gl.owns(from) || !gl.owns(into) {
		return ErrCategoryNotFound
	}
	if from == gl.favorite {
		return fmt.Errorf("%w: cannot merge %q", ErrProtectedCategory, from.name)
	}
	if from == into {
		return nil
	}

	for _, g := range gl.games {
		if g.ContainsCategory(from) {
			g.AddCategory(into)
		}
	}
	return gl.RemoveCategory(from)
}

// RemoveEmptyCategories removes every category no game holds, except the favorite.
func (gl *GameList) RemoveEmptyCategories() int {
	removed := 0
	for _, c := range gl.Categories() {
		if c == gl.favorite || c.count != 0 {
			continue
		}
		if err := gl.RemoveCategory(c); err == nil {
			removed++
		}
	}
	return removed
}

// Categories returns every category sorted by name.
func (gl *GameList) Categories() []*Category {
	out := make([]*Category, 0, len(gl.categories))
	for _, c := range gl.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// CategoryCount returns the number of categories, the favorite included.
func (gl *GameList) CategoryCount() int {
	return len(gl.categories)
}

// AddGame creates a game entry. Ids are unique within the list.
func (gl *GameList) AddGame(id int, name string) (*Game, error) {
	if _, exists := gl.games[id]; exists {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateGame, id)
	}
	g := &Game{
		list:       gl,
		categories: make(map[CategoryID]struct{}),
		id:         id,
		Name:       name,
		Source:     model.SourceUnknown,
	}
	gl.games[id] = g
	return g, nil
}

// Game returns the game with the given id.
func (gl *GameList) Game(id int) (*Game, bool) {
	g, ok := gl.games[id]
	return g, ok
}

// Games returns every game sorted by id.
func (gl *GameList) Games() []*Game {
	out := make([]*Game, 0, len(gl.games))
	for _, g := range gl.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// RemoveGame deletes the game, releasing its categories. Categories left empty persist.
func (gl *GameList) RemoveGame(id int) bool {
	g, ok := gl.games[id]
	if !ok {
		return false
	}
	g.ClearCategories()
	g.list = nil
	delete(gl.games, id)
	return true
}

// Len returns the number of games.
func (gl *GameList) Len() int {
	return len(gl.games)
}

// Verify checks the list's structural invariants: unique non-empty names, referential
// integrity of every game's category handles, and derived counts.
func (gl *GameList) Verify() error {
	if !gl.owns(gl.favorite) {
		return fmt.Errorf("favorite category missing")
	}
	if len(gl.byName) != len(gl.categories) {
		return fmt.Errorf("category index out of sync: %d names for %d categories", len(gl.byName), len(gl.categories))
	}

	counts := make(map[CategoryID]int, len(gl.categories))
	for id, c := range gl.categories {
		if !validName(c.name) {
			return fmt.Errorf("category %d has an empty name", id)
		}
		if gl.byName[c.name] != id {
			return fmt.Errorf("category %q is not indexed by name", c.name)
		}
		if c.list != gl {
			return fmt.Errorf("category %q belongs to another list", c.name)
		}
	}

	for gameID, g := range gl.games {
		if g.id != gameID {
			return fmt.Errorf("game %d indexed under id %d", g.id, gameID)
		}
		if g.list != gl {
			return fmt.Errorf("game %d belongs to another list", gameID)
		}
		for id := range g.categories {
			if _, ok := gl.categories[id]; !ok {
				return fmt.Errorf("game %d references missing category %d", gameID, id)
			}
			counts[id]++
		}
	}

	for id, c := range gl.categories {
		if c.count != counts[id] {
			return fmt.Errorf("category %q count %d, held by %d games", c.name, c.count, counts[id])
		}
	}
	return nil
}
