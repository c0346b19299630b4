package autocat

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// Name assigns a category from the first letter of the game's name.
type Name struct {
	Common
	bound `xml:"-"`

	Prefix                        string `xml:"Prefix,omitempty"`
	SkipThe                       bool   `xml:"SkipThe"`
	GroupNumbers                  bool   `xml:"GroupNumbers"`
	GroupNonEnglishCharacters     bool   `xml:"GroupNonEnglishCharacters"`
	GroupNonEnglishCharactersText string `xml:"GroupNonEnglishCharactersText"`
}

// NewName returns a Name rule that ignores a leading "The".
func NewName(name string) *Name {
	return &Name{Common: Common{Name: name}, SkipThe: true, GroupNonEnglishCharactersText: "Non-English"}
}

func (n *Name) Type() Type { return TypeName }

func (n *Name) PreProcess(_ context.Context, b Binding) error {
	n.bind(b)
	return nil
}

func (n *Name) DeProcess() { n.unbind() }

func (n *Name) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := n.guard(n.Name, true, game, filter); done {
		return res, err
	}
	if label := n.label(game.Name); label != "" {
		n.assign(game, withPrefix(n.Prefix, label))
	}
	return Success, nil
}

func (n *Name) label(title string) string {
	title = strings.TrimSpace(title)
	if n.SkipThe && len(title) > 4 && strings.EqualFold(title[:4], "the ") {
		title = strings.TrimSpace(title[4:])
	}
	r, _ := utf8.DecodeRuneInString(title)
	switch {
	case r == utf8.RuneError:
		return ""
	case unicode.IsDigit(r) && n.GroupNumbers:
		return "#"
	case r < unicode.MaxASCII && unicode.IsLetter(r):
		return string(unicode.ToUpper(r))
	case unicode.IsLetter(r) && n.GroupNonEnglishCharacters:
		return n.GroupNonEnglishCharactersText
	}
	return string(unicode.ToUpper(r))
}

func (n *Name) Clone() AutoCat {
	clone := *n
	clone.bound = bound{}
	return &clone
}
