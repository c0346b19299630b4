package autocat

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// YearGrouping controls how release years are bucketed.
type YearGrouping string

// Year grouping modes.
const (
	GroupNone       YearGrouping = "None"
	GroupDecade     YearGrouping = "Decade"
	GroupHalfDecade YearGrouping = "HalfDecade"
)

// Year assigns a category from the release year.
type Year struct {
	Common
	bound `xml:"-"`

	Prefix         string       `xml:"Prefix,omitempty"`
	IncludeUnknown bool         `xml:"IncludeUnknown"`
	UnknownText    string       `xml:"UnknownText"`
	GroupingMode   YearGrouping `xml:"GroupingMode"`
}

// NewYear returns a Year rule with one category per year.
func NewYear(name string) *Year {
	return &Year{
		Common:         Common{Name: name},
		IncludeUnknown: true,
		UnknownText:    "Unknown",
		GroupingMode:   GroupNone,
	}
}

func (y *Year) Type() Type { return TypeYear }

func (y *Year) PreProcess(_ context.Context, b Binding) error {
	y.bind(b)
	return nil
}

func (y *Year) DeProcess() { y.unbind() }

func (y *Year) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := y.guard(y.Name, true, game, filter); done {
		return res, err
	}
	meta, ok := y.metadata(game)
	if !ok {
		return NotInDatabase, nil
	}

	year := meta.ReleaseYear()
	if year == 0 {
		if y.IncludeUnknown {
			y.assign(game, withPrefix(y.Prefix, y.UnknownText))
		}
		return Success, nil
	}
	y.assign(game, withPrefix(y.Prefix, y.label(year)))
	return Success, nil
}

func (y *Year) label(year int) string {
	switch y.GroupingMode {
	case GroupDecade:
		start := year / 10 * 10
		return fmt.Sprintf("%d-%d", start, start+9)
	case GroupHalfDecade:
		start := year / 5 * 5
		return fmt.Sprintf("%d-%d", start, start+4)
	}
	return strconv.Itoa(year)
}

func (y *Year) Clone() AutoCat {
	clone := *y
	clone.bound = bound{}
	return &clone
}
