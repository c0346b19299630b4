package gamelist

import (
	"errors"
	"fmt"
	"strings"
)

// TriState is a filter condition that can be ignored, required, or excluded.
// It persists as 0, 1 and -1.
type TriState int

// TriState values.
const (
	Any TriState = 0
	Yes TriState = 1
	No  TriState = -1
)

func (t TriState) matches(v bool) bool {
	switch t {
	case Yes:
		return v
	case No:
		return !v
	}
	return true
}

// Filter is a named predicate over games. All configured conditions must hold.
type Filter struct {
	Name          string   `xml:"Name"`
	NameContains  string   `xml:"NameContains,omitempty"`
	Allow         []string `xml:"Allow>Category"`
	Require       []string `xml:"Require>Category"`
	Exclude       []string `xml:"Exclude>Category"`
	Uncategorized TriState `xml:"Uncategorized"`
	Hidden        TriState `xml:"Hidden"`
}

// Clone returns a deep copy of f.
func (f *Filter) Clone() *Filter {
	if f == nil {
		return nil
	}
	c := *f
	c.Allow = append([]string(nil), f.Allow...)
	c.Require = append([]string(nil), f.Require...)
	c.Exclude = append([]string(nil), f.Exclude...)
	return &c
}

// IncludeGame reports whether g passes f. A nil filter includes every game.
func IncludeGame(g *Game, f *Filter) bool {
	if f == nil {
		return true
	}
	if g == nil {
		return false
	}

	if !f.Hidden.matches(g.Hidden) {
		return false
	}
	if !f.Uncategorized.matches(g.Uncategorized()) {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(f.NameContains)) {
		return false
	}

	if len(f.Allow) > 0 {
		found := false
		for _, name := range f.Allow {
			if g.hasCategoryNamed(name) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, name := range f.Require {
		if !g.hasCategoryNamed(name) {
			return false
		}
	}
	for _, name := range f.Exclude {
		if g.hasCategoryNamed(name) {
			return false
		}
	}
	return true
}

func (g *Game) hasCategoryNamed(name string) bool {
	if g.list == nil {
		return false
	}
	c, ok := g.list.Category(name)
	return ok && g.ContainsCategory(c)
}

// Filter set errors.
var (
	ErrEmptyFilterName = errors.New("filter name cannot be empty")
	ErrDuplicateFilter = errors.New("filter already exists")
)

// FilterSet is an ordered collection of named filters.
type FilterSet struct {
	filters map[string]*Filter
	order   []string
}

// NewFilterSet creates a set from filters, skipping duplicates.
func NewFilterSet(filters ...*Filter) *FilterSet {
	s := &FilterSet{filters: make(map[string]*Filter)}
	for _, f := range filters {
		_ = s.Add(f)
	}
	return s
}

// Add appends f to the set.
func (s *FilterSet) Add(f *Filter) error {
	if f == nil || strings.TrimSpace(f.Name) == "" {
		return ErrEmptyFilterName
	}
	if _, exists := s.filters[f.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateFilter, f.Name)
	}
	s.filters[f.Name] = f
	s.order = append(s.order, f.Name)
	return nil
}

// Get returns the filter with the given name. It is safe on a nil set.
func (s *FilterSet) Get(name string) (*Filter, bool) {
	if s == nil || name == "" {
		return nil, false
	}
	f, ok := s.filters[name]
	return f, ok
}

// Remove deletes the named filter.
func (s *FilterSet) Remove(name string) bool {
	if _, ok := s.filters[name]; !ok {
		return false
	}
	delete(s.filters, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns the filters in insertion order.
func (s *FilterSet) All() []*Filter {
	if s == nil {
		return nil
	}
	out := make([]*Filter, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.filters[name])
	}
	return out
}

// Len returns the number of filters.
func (s *FilterSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
