package autocat

import (
	"context"

	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/Veraticus/depressurize/internal/model"
)

// TimeType selects which HowLongToBeat figure a rule compares against.
type TimeType string

// HowLongToBeat time types.
const (
	TimeMain          TimeType = "Main"
	TimeExtras        TimeType = "Extras"
	TimeCompletionist TimeType = "Completionist"
)

// HltbRule maps a completion-time range in hours to a category name.
type HltbRule struct {
	Name     string  `xml:"Text"`
	MinHours float64 `xml:"MinHours"`
	// MaxHours of 0 means unlimited.
	MaxHours float64  `xml:"MaxHours"`
	TimeType TimeType `xml:"TimeType"`
}

func (r HltbRule) matches(meta *model.GameMetadata) bool {
	var minutes int
	switch r.TimeType {
	case TimeExtras:
		minutes = meta.HltbExtras
	case TimeCompletionist:
		minutes = meta.HltbCompletionist
	default:
		minutes = meta.HltbMain
	}
	if minutes <= 0 {
		return false
	}
	hours := float64(minutes) / 60
	if hours < r.MinHours {
		return false
	}
	return r.MaxHours == 0 || hours <= r.MaxHours
}

// Hltb assigns a category from HowLongToBeat completion times. The first matching rule wins.
type Hltb struct {
	Common
	bound `xml:"-"`

	Prefix         string     `xml:"Prefix,omitempty"`
	IncludeUnknown bool       `xml:"IncludeUnknown"`
	UnknownText    string     `xml:"UnknownText"`
	Rules          []HltbRule `xml:"Rule"`
}

// NewHltb returns an Hltb rule with no rules configured.
func NewHltb(name string) *Hltb {
	return &Hltb{Common: Common{Name: name}, UnknownText: "Unknown"}
}

func (h *Hltb) Type() Type { return TypeHltb }

func (h *Hltb) PreProcess(_ context.Context, b Binding) error {
	h.bind(b)
	return nil
}

func (h *Hltb) DeProcess() { h.unbind() }

func (h *Hltb) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := h.guard(h.Name, true, game, filter); done {
		return res, err
	}
	meta, ok := h.metadata(game)
	if !ok {
		return NotInDatabase, nil
	}

	if meta.HltbMain == 0 && meta.HltbExtras == 0 && meta.HltbCompletionist == 0 {
		if h.IncludeUnknown {
			h.assign(game, withPrefix(h.Prefix, h.UnknownText))
		}
		return Success, nil
	}
	for _, rule := range h.Rules {
		if rule.matches(meta) {
			h.assign(game, withPrefix(h.Prefix, rule.Name))
			break
		}
	}
	return Success, nil
}

func (h *Hltb) Clone() AutoCat {
	clone := &Hltb{
		Common:         h.Common,
		Prefix:         h.Prefix,
		IncludeUnknown: h.IncludeUnknown,
		UnknownText:    h.UnknownText,
	}
	if h.Rules != nil {
		clone.Rules = append([]HltbRule(nil), h.Rules...)
	}
	return clone
}
