package autocat

import (
	"context"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// Genre assigns a category per store genre.
type Genre struct {
	Common
	bound `xml:"-"`

	Prefix            string   `xml:"Prefix,omitempty"`
	MaxCategories     int      `xml:"MaxCategories"`
	RemoveOtherGenres bool     `xml:"RemoveOthers"`
	TagFallback       bool     `xml:"TagFallback"`
	IgnoredGenres     []string `xml:"Ignored>Genre"`

	genreCategories []string
	ignored         map[string]struct{}
}

// NewGenre returns a Genre rule that falls back to tags for untagged games.
func NewGenre(name string) *Genre {
	return &Genre{Common: Common{Name: name}, TagFallback: true}
}

func (g *Genre) Type() Type { return TypeGenre }

func (g *Genre) PreProcess(_ context.Context, b Binding) error {
	g.bind(b)
	g.ignored = stringSet(g.IgnoredGenres)
	g.genreCategories = nil
	if g.RemoveOtherGenres && b.DB != nil {
		for _, genre := range b.DB.AllGenres() {
			g.genreCategories = append(g.genreCategories, withPrefix(g.Prefix, genre))
		}
	}
	return nil
}

func (g *Genre) DeProcess() {
	g.unbind()
	g.genreCategories = nil
	g.ignored = nil
}

func (g *Genre) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := g.guard(g.Name, true, game, filter); done {
		return res, err
	}
	meta, ok := g.scraped(game)
	if !ok {
		return NotInDatabase, nil
	}

	for _, name := range g.genreCategories {
		if c, ok := g.games.Category(name); ok {
			game.RemoveCategory(c)
		}
	}

	genres := meta.Genres
	if len(genres) == 0 && g.TagFallback {
		genres = meta.Tags
	}

	added := 0
	for _, genre := range genres {
		if g.MaxCategories > 0 && added >= g.MaxCategories {
			break
		}
		if _, skip := g.ignored[genre]; skip {
			continue
		}
		g.assign(game, withPrefix(g.Prefix, genre))
		added++
	}
	return Success, nil
}

func (g *Genre) Clone() AutoCat {
	return &Genre{
		Common:            g.Common,
		Prefix:            g.Prefix,
		MaxCategories:     g.MaxCategories,
		RemoveOtherGenres: g.RemoveOtherGenres,
		TagFallback:       g.TagFallback,
		IgnoredGenres:     copyStrings(g.IgnoredGenres),
	}
}
