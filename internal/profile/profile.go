// Package profile loads and saves the XML profile document that holds a user's game
// list, category assignments, AutoCat rules, filters and ignore list.
package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Veraticus/depressurize/internal/autocat"
	"github.com/Veraticus/depressurize/internal/gamelist"
)

// Version is the profile format written by Save.
const Version = 3

// steamID64Base converts a 32-bit account id to its 64-bit form.
const steamID64Base = 76561197960265728

var (
	// ErrInvalidProfile indicates a document that is not a profile.
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrDuplicateRule indicates two AutoCat rules share a name.
	ErrDuplicateRule = errors.New("autocat rule already exists")
)

// Options are the per-profile behavior switches.
type Options struct {
	AutoUpdate           bool
	AutoImport           bool
	AutoExport           bool
	LocalUpdate          bool
	WebUpdate            bool
	ExportDiscard        bool
	AutoIgnore           bool
	IncludeUnknown       bool
	BypassIgnoreOnImport bool
	OverwriteNames       bool
	IncludeShortcuts     bool
}

// DefaultOptions returns the options a new profile starts with.
func DefaultOptions() Options {
	return Options{
		AutoUpdate:       true,
		AutoExport:       true,
		LocalUpdate:      true,
		WebUpdate:        true,
		ExportDiscard:    true,
		AutoIgnore:       true,
		IncludeShortcuts: true,
	}
}

// Profile is one user's categorization state.
type Profile struct {
	Games     *gamelist.GameList
	Filters   *gamelist.FilterSet
	ignored   map[int]struct{}
	logger    *slog.Logger
	Path      string
	AutoCats  autocat.List
	SteamID64 int64
	Options   Options
}

// New returns an empty profile with the default AutoCat rules.
func New() *Profile {
	return &Profile{
		Games:    gamelist.New(),
		Filters:  gamelist.NewFilterSet(),
		AutoCats: autocat.DefaultList(),
		Options:  DefaultOptions(),
		ignored:  make(map[int]struct{}),
		logger:   slog.Default(),
	}
}

// Ignore adds id to the ignore list and reports whether it was newly added.
func (p *Profile) Ignore(id int) bool {
	if _, ok := p.ignored[id]; ok {
		return false
	}
	p.ignored[id] = struct{}{}
	return true
}

// Unignore removes id from the ignore list.
func (p *Profile) Unignore(id int) bool {
	if _, ok := p.ignored[id]; !ok {
		return false
	}
	delete(p.ignored, id)
	return true
}

// IsIgnored reports whether id is on the ignore list.
func (p *Profile) IsIgnored(id int) bool {
	_, ok := p.ignored[id]
	return ok
}

// Ignored returns the ignore list in ascending order.
func (p *Profile) Ignored() []int {
	out := make([]int, 0, len(p.ignored))
	for id := range p.ignored {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// AddRule appends ac to the rule list. Names must be unique.
func (p *Profile) AddRule(ac autocat.AutoCat) error {
	if _, exists := p.AutoCats.Lookup(ac.Meta().Name); exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRule, ac.Meta().Name)
	}
	p.AutoCats = append(p.AutoCats, ac)
	return nil
}

// RemoveRule deletes the named rule.
func (p *Profile) RemoveRule(name string) bool {
	for i, ac := range p.AutoCats {
		if ac.Meta().Name == name {
			p.AutoCats = append(p.AutoCats[:i], p.AutoCats[i+1:]...)
			return true
		}
	}
	return false
}

// steamID64FromAccount converts the directory-style account id used by old profiles.
func steamID64FromAccount(account int64) int64 {
	if account <= 0 {
		return 0
	}
	return account + steamID64Base
}
