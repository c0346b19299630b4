package autocat

import (
	"context"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// Tags assigns a category for each included user tag.
type Tags struct {
	Common
	bound `xml:"-"`

	Prefix       string   `xml:"Prefix,omitempty"`
	IncludedTags []string `xml:"Tags>Tag"`
	MaxTags      int      `xml:"MaxTags"`

	// Listing options used when presenting candidate tags.
	ListOwnedOnly     bool    `xml:"ListOwnedOnly"`
	ListWeightFactor  float64 `xml:"ListWeightFactor"`
	ListMinScore      int     `xml:"ListMinScore"`
	ListTagsPerGame   int     `xml:"ListTagsPerGame"`
	ListScoreSort     bool    `xml:"ListScoreSort"`
	ListExcludeGenres bool    `xml:"ListExcludeGenres"`

	included map[string]struct{}
}

// NewTags returns a Tags rule with the default listing options.
func NewTags(name string) *Tags {
	return &Tags{
		Common:            Common{Name: name},
		ListOwnedOnly:     true,
		ListWeightFactor:  1,
		ListScoreSort:     true,
		ListExcludeGenres: true,
	}
}

func (t *Tags) Type() Type { return TypeTags }

func (t *Tags) PreProcess(_ context.Context, b Binding) error {
	t.bind(b)
	t.included = stringSet(t.IncludedTags)
	return nil
}

func (t *Tags) DeProcess() {
	t.unbind()
	t.included = nil
}

func (t *Tags) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := t.guard(t.Name, true, game, filter); done {
		return res, err
	}
	meta, ok := t.scraped(game)
	if !ok {
		return NotInDatabase, nil
	}

	added := 0
	for _, tag := range meta.Tags {
		if t.MaxTags > 0 && added >= t.MaxTags {
			break
		}
		if _, ok := t.included[tag]; !ok {
			continue
		}
		t.assign(game, withPrefix(t.Prefix, tag))
		added++
	}
	return Success, nil
}

func (t *Tags) Clone() AutoCat {
	clone := *t
	clone.bound = bound{}
	clone.included = nil
	clone.IncludedTags = copyStrings(t.IncludedTags)
	return &clone
}
