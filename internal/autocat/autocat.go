// Package autocat implements rule-based automatic categorization of games.
//
// Every rule variant shares one lifecycle per run: PreProcess binds the rule to a
// GameList and a metadata Database (and performs any one-time work such as fetching
// curator recommendations), CategorizeGame is called once per target game, and
// DeProcess releases the binding so the rule can be reused or persisted.
package autocat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/Veraticus/depressurize/internal/model"
	"github.com/Veraticus/depressurize/internal/service"
)

// Type is the stable identifier a rule variant is persisted under.
type Type string

// Rule variant identifiers.
const (
	TypeGenre     Type = "AutoCatGenre"
	TypeYear      Type = "AutoCatYear"
	TypeUserScore Type = "AutoCatUserScore"
	TypeTags      Type = "AutoCatTags"
	TypeFlags     Type = "AutoCatFlags"
	TypeManual    Type = "AutoCatManual"
	TypeCurator   Type = "AutoCatCurator"
	TypeGroup     Type = "AutoCatGroup"
	TypeHltb      Type = "AutoCatHltb"
	TypeLanguage  Type = "AutoCatLanguage"
	TypeVrSupport Type = "AutoCatVrSupport"
	TypeName      Type = "AutoCatName"
	TypeDevPub    Type = "AutoCatDevPub"
)

// Result is the per-game outcome of CategorizeGame.
type Result int

// Per-game outcomes.
const (
	// Success means the rule ran and may have changed the game's categories.
	Success Result = iota
	// Failure means the game was nil or the rule could not process it.
	Failure
	// NotInDatabase means the rule needs metadata the Database does not have yet.
	NotInDatabase
	// Filtered means the game was excluded by the rule's filter.
	Filtered
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case NotInDatabase:
		return "not_in_database"
	case Filtered:
		return "filtered"
	}
	return "unknown"
}

// AutoCat errors.
var (
	// ErrNotBound is returned by CategorizeGame when PreProcess was never called or the
	// binding lacks a GameList or Database. It is a usage error, not a per-game outcome.
	ErrNotBound          = errors.New("autocat is not bound to a game list and database")
	ErrInvalidCuratorURL = errors.New("invalid curator url")
	ErrNoCuratorFetcher  = errors.New("no curator fetcher configured")
	ErrGroupCycle        = errors.New("autocat group cycle")
	ErrUnknownRule       = errors.New("unknown autocat")
	ErrUnknownType       = errors.New("unknown autocat type")
)

// AutoCat is one configured categorization rule.
type AutoCat interface {
	// Meta returns the configuration shared by every variant.
	Meta() *Common
	Type() Type
	PreProcess(ctx context.Context, b Binding) error
	CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error)
	DeProcess()
	// Clone deep-copies the configuration. Run-time binding state is not copied.
	Clone() AutoCat
}

// Lookup resolves rules by name. Group rules use it to find their members.
type Lookup interface {
	Lookup(name string) (AutoCat, bool)
}

// Binding carries the collaborators a rule is bound to for the duration of one run.
type Binding struct {
	Games    *gamelist.GameList
	DB       service.Database
	Curators service.CuratorFetcher
	Rules    Lookup
	Filters  *gamelist.FilterSet
	Logger   *slog.Logger

	groupPath []string
}

// Common is the configuration every rule variant carries.
type Common struct {
	Name     string `xml:"Name"`
	Filter   string `xml:"Filter,omitempty"`
	Selected bool   `xml:"-"`
}

// Meta returns c. Variants embed Common, so this satisfies AutoCat.Meta.
func (c *Common) Meta() *Common {
	return c
}

// FilterName returns the name of the filter applied before categorizing each game.
func (c *Common) FilterName() string {
	return c.Filter
}

// bound holds a rule's run-time binding. It is never persisted or cloned.
type bound struct {
	games  *gamelist.GameList
	db     service.Database
	logger *slog.Logger
}

func (b *bound) bind(binding Binding) {
	b.games = binding.Games
	b.db = binding.DB
	b.logger = binding.Logger
	if b.logger == nil {
		b.logger = slog.Default()
	}
}

func (b *bound) unbind() {
	b.games = nil
	b.db = nil
}

func (b *bound) log() *slog.Logger {
	if b.logger == nil {
		return slog.Default()
	}
	return b.logger
}

// guard runs the checks every variant performs before its own logic. When done is true
// the caller returns res and err unchanged.
func (b *bound) guard(rule string, needDB bool, game *gamelist.Game, filter *gamelist.Filter) (res Result, done bool, err error) {
	if b.games == nil {
		b.log().Error("autocat has no game list", "autocat", rule)
		return Failure, true, fmt.Errorf("%w: %s has no game list", ErrNotBound, rule)
	}
	if needDB && b.db == nil {
		b.log().Error("autocat has no database", "autocat", rule)
		return Failure, true, fmt.Errorf("%w: %s has no database", ErrNotBound, rule)
	}
	if game == nil {
		b.log().Error("autocat called with nil game", "autocat", rule)
		return Failure, true, nil
	}
	if !game.IncludeGame(filter) {
		return Filtered, true, nil
	}
	return Success, false, nil
}

// metadata returns the game's metadata when present.
func (b *bound) metadata(game *gamelist.Game) (*model.GameMetadata, bool) {
	if !b.db.Contains(game.ID()) {
		return nil, false
	}
	return b.db.Get(game.ID())
}

// scraped returns the game's metadata only when the store page has been scraped.
func (b *bound) scraped(game *gamelist.Game) (*model.GameMetadata, bool) {
	meta, ok := b.metadata(game)
	if !ok || !meta.Scraped() {
		return nil, false
	}
	return meta, true
}

// assign adds the named category to game, creating it when needed.
func (b *bound) assign(game *gamelist.Game, name string) bool {
	c, err := b.games.GetCategory(name)
	if err != nil {
		b.log().Warn("skipping category", "name", name, "error", err)
		return false
	}
	return game.AddCategory(c)
}

func withPrefix(prefix, s string) string {
	if prefix == "" {
		return s
	}
	return prefix + s
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func stringSet(in []string) map[string]struct{} {
	set := make(map[string]struct{}, len(in))
	for _, s := range in {
		set[s] = struct{}{}
	}
	return set
}
