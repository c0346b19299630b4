package autocat

import (
	"context"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// Flags assigns a category for each included store feature flag.
type Flags struct {
	Common
	bound `xml:"-"`

	Prefix        string   `xml:"Prefix,omitempty"`
	IncludedFlags []string `xml:"Flags>Flag"`

	included map[string]struct{}
}

// NewFlags returns a Flags rule with no flags included.
func NewFlags(name string) *Flags {
	return &Flags{Common: Common{Name: name}}
}

func (f *Flags) Type() Type { return TypeFlags }

func (f *Flags) PreProcess(_ context.Context, b Binding) error {
	f.bind(b)
	f.included = stringSet(f.IncludedFlags)
	return nil
}

func (f *Flags) DeProcess() {
	f.unbind()
	f.included = nil
}

func (f *Flags) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := f.guard(f.Name, true, game, filter); done {
		return res, err
	}
	meta, ok := f.scraped(game)
	if !ok {
		return NotInDatabase, nil
	}
	for _, flag := range meta.Flags {
		if _, ok := f.included[flag]; ok {
			f.assign(game, withPrefix(f.Prefix, flag))
		}
	}
	return Success, nil
}

func (f *Flags) Clone() AutoCat {
	return &Flags{
		Common:        f.Common,
		Prefix:        f.Prefix,
		IncludedFlags: copyStrings(f.IncludedFlags),
	}
}
