package autocat

import (
	"context"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// LanguageSelection lists the languages a Language rule categorizes by, per support type.
type LanguageSelection struct {
	Interface []string `xml:"Interface>Language"`
	Subtitles []string `xml:"Subtitles>Language"`
	FullAudio []string `xml:"FullAudio>Language"`
}

// Language assigns a category per supported language.
type Language struct {
	Common
	bound `xml:"-"`

	Prefix            string            `xml:"Prefix,omitempty"`
	IncludeTypePrefix bool              `xml:"IncludeTypePrefix"`
	TypeFallback      bool              `xml:"TypeFallback"`
	IncludedLanguages LanguageSelection `xml:"Languages"`
}

// NewLanguage returns a Language rule with no languages selected.
func NewLanguage(name string) *Language {
	return &Language{Common: Common{Name: name}}
}

func (l *Language) Type() Type { return TypeLanguage }

func (l *Language) PreProcess(_ context.Context, b Binding) error {
	l.bind(b)
	return nil
}

func (l *Language) DeProcess() { l.unbind() }

func (l *Language) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := l.guard(l.Name, true, game, filter); done {
		return res, err
	}
	meta, ok := l.metadata(game)
	if !ok {
		return NotInDatabase, nil
	}

	subtitles, audio := meta.Languages.Subtitles, meta.Languages.FullAudio
	if l.TypeFallback {
		// Games that only publish interface languages are treated as supporting them everywhere.
		if len(subtitles) == 0 {
			subtitles = meta.Languages.Interface
		}
		if len(audio) == 0 {
			audio = meta.Languages.Interface
		}
	}

	l.apply(game, "Interface", meta.Languages.Interface, l.IncludedLanguages.Interface)
	l.apply(game, "Subtitles", subtitles, l.IncludedLanguages.Subtitles)
	l.apply(game, "Full Audio", audio, l.IncludedLanguages.FullAudio)
	return Success, nil
}

func (l *Language) apply(game *gamelist.Game, kind string, supported, included []string) {
	if len(included) == 0 {
		return
	}
	want := stringSet(included)
	for _, lang := range supported {
		if _, ok := want[lang]; !ok {
			continue
		}
		name := lang
		if l.IncludeTypePrefix {
			name = kind + ": " + lang
		}
		l.assign(game, withPrefix(l.Prefix, name))
	}
}

func (l *Language) Clone() AutoCat {
	return &Language{
		Common:            l.Common,
		Prefix:            l.Prefix,
		IncludeTypePrefix: l.IncludeTypePrefix,
		TypeFallback:      l.TypeFallback,
		IncludedLanguages: LanguageSelection{
			Interface: copyStrings(l.IncludedLanguages.Interface),
			Subtitles: copyStrings(l.IncludedLanguages.Subtitles),
			FullAudio: copyStrings(l.IncludedLanguages.FullAudio),
		},
	}
}
