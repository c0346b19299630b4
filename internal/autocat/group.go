package autocat

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// Group runs other rules, by name, as a single rule.
type Group struct {
	Common
	bound `xml:"-"`

	Autocats []string `xml:"Autocats>Autocat"`

	members []groupMember
}

type groupMember struct {
	rule   AutoCat
	filter *gamelist.Filter
}

// NewGroup returns a Group rule with the given members.
func NewGroup(name string, members ...string) *Group {
	return &Group{Common: Common{Name: name}, Autocats: members}
}

func (g *Group) Type() Type { return TypeGroup }

// PreProcess resolves every member through the binding's Lookup and pre-processes a
// private clone of it. Members that cannot be resolved are skipped and reported.
func (g *Group) PreProcess(ctx context.Context, b Binding) error {
	g.bind(b)
	g.members = nil

	if len(g.Autocats) == 0 {
		return nil
	}
	if b.Rules == nil {
		return fmt.Errorf("%w: group %s has no rule lookup", ErrUnknownRule, g.Name)
	}

	path := append(append([]string(nil), b.groupPath...), g.Name)
	memberBinding := b
	memberBinding.groupPath = path

	var errs []error
	for _, name := range g.Autocats {
		if slices.Contains(path, name) {
			errs = append(errs, fmt.Errorf("%w: %s -> %s", ErrGroupCycle, g.Name, name))
			continue
		}
		rule, ok := b.Rules.Lookup(name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s in group %s", ErrUnknownRule, name, g.Name))
			continue
		}

		member := groupMember{rule: rule.Clone()}
		if err := member.rule.PreProcess(ctx, memberBinding); err != nil {
			errs = append(errs, fmt.Errorf("group %s member %s: %w", g.Name, name, err))
		}
		if fn := member.rule.Meta().FilterName(); fn != "" {
			f, ok := b.Filters.Get(fn)
			if !ok {
				g.log().Warn("unknown filter for group member", "group", g.Name, "autocat", name, "filter", fn)
			}
			member.filter = f
		}
		g.members = append(g.members, member)
	}
	return errors.Join(errs...)
}

func (g *Group) DeProcess() {
	for _, m := range g.members {
		m.rule.DeProcess()
	}
	g.members = nil
	g.unbind()
}

// CategorizeGame runs every member in order. The result is Success when any member
// succeeded, otherwise the first member's result.
func (g *Group) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := g.guard(g.Name, true, game, filter); done {
		return res, err
	}
	if len(g.members) == 0 {
		return Success, nil
	}

	var first Result
	succeeded := false
	for i, m := range g.members {
		res, err := m.rule.CategorizeGame(game, m.filter)
		if err != nil {
			return Failure, fmt.Errorf("group %s: %w", g.Name, err)
		}
		if i == 0 {
			first = res
		}
		if res == Success {
			succeeded = true
		}
	}
	if succeeded {
		return Success, nil
	}
	return first, nil
}

func (g *Group) Clone() AutoCat {
	return &Group{Common: g.Common, Autocats: copyStrings(g.Autocats)}
}
