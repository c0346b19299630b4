package autocat

import (
	"context"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// Manual adds and removes fixed categories.
type Manual struct {
	Common
	bound `xml:"-"`

	Prefix    string   `xml:"Prefix,omitempty"`
	RemoveAll bool     `xml:"RemoveAll"`
	Remove    []string `xml:"Remove>Category"`
	Add       []string `xml:"Add>Category"`
}

// NewManual returns a Manual rule with default settings.
func NewManual(name string) *Manual {
	return &Manual{Common: Common{Name: name}}
}

func (m *Manual) Type() Type { return TypeManual }

func (m *Manual) PreProcess(_ context.Context, b Binding) error {
	m.bind(b)
	return nil
}

func (m *Manual) DeProcess() { m.unbind() }

// CategorizeGame applies the configured removals and additions.
//
// Games without scraped store data report NotInDatabase even though the rule does not
// read metadata; this keeps Manual consistent with the other store-backed rules.
func (m *Manual) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := m.guard(m.Name, true, game, filter); done {
		return res, err
	}
	if _, ok := m.scraped(game); !ok {
		return NotInDatabase, nil
	}

	if m.RemoveAll {
		game.ClearCategories()
	} else {
		for _, name := range m.Remove {
			c, ok := m.games.Category(name)
			if !ok || !game.RemoveCategory(c) {
				continue
			}
			if c.Count() == 0 && c != m.games.Favorite() {
				if err := m.games.RemoveCategory(c); err != nil {
					m.log().Warn("could not delete empty category", "category", name, "error", err)
				}
			}
		}
	}

	for _, name := range m.Add {
		m.assign(game, withPrefix(m.Prefix, name))
	}
	return Success, nil
}

func (m *Manual) Clone() AutoCat {
	return &Manual{
		Common:    m.Common,
		Prefix:    m.Prefix,
		RemoveAll: m.RemoveAll,
		Remove:    copyStrings(m.Remove),
		Add:       copyStrings(m.Add),
	}
}
