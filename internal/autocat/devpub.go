package autocat

import (
	"context"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// DevPub assigns categories for a game's developers and publishers.
type DevPub struct {
	Common
	bound `xml:"-"`

	Prefix        string   `xml:"Prefix,omitempty"`
	AllDevelopers bool     `xml:"AllDevelopers"`
	AllPublishers bool     `xml:"AllPublishers"`
	OwnedOnly     bool     `xml:"OwnedOnly"`
	MinCount      int      `xml:"MinCount"`
	Developers    []string `xml:"Developers>Developer"`
	Publishers    []string `xml:"Publishers>Publisher"`

	developers   map[string]struct{}
	publishers   map[string]struct{}
	devCounts    map[string]int
	publishCount map[string]int
}

// NewDevPub returns a DevPub rule that only counts owned games. With OwnedOnly false,
// MinCount is measured against every game in the database.
func NewDevPub(name string) *DevPub {
	return &DevPub{Common: Common{Name: name}, OwnedOnly: true}
}

func (d *DevPub) Type() Type { return TypeDevPub }

// PreProcess counts how many games share each developer and publisher, so that
// MinCount can be applied per game.
func (d *DevPub) PreProcess(_ context.Context, b Binding) error {
	d.bind(b)
	d.developers = stringSet(d.Developers)
	d.publishers = stringSet(d.Publishers)
	d.devCounts = make(map[string]int)
	d.publishCount = make(map[string]int)

	if b.Games == nil || b.DB == nil {
		return nil
	}
	var ids []int
	if d.OwnedOnly {
		for _, game := range b.Games.Games() {
			ids = append(ids, game.ID())
		}
	} else {
		ids = b.DB.IDs()
	}
	for _, id := range ids {
		meta, ok := b.DB.Get(id)
		if !ok {
			continue
		}
		for _, dev := range meta.Developers {
			d.devCounts[dev]++
		}
		for _, pub := range meta.Publishers {
			d.publishCount[pub]++
		}
	}
	return nil
}

func (d *DevPub) DeProcess() {
	d.unbind()
	d.developers, d.publishers = nil, nil
	d.devCounts, d.publishCount = nil, nil
}

func (d *DevPub) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := d.guard(d.Name, true, game, filter); done {
		return res, err
	}
	meta, ok := d.scraped(game)
	if !ok {
		return NotInDatabase, nil
	}

	for _, dev := range meta.Developers {
		if d.wanted(dev, d.AllDevelopers, d.developers, d.devCounts) {
			d.assign(game, withPrefix(d.Prefix, dev))
		}
	}
	for _, pub := range meta.Publishers {
		if d.wanted(pub, d.AllPublishers, d.publishers, d.publishCount) {
			d.assign(game, withPrefix(d.Prefix, pub))
		}
	}
	return Success, nil
}

func (d *DevPub) wanted(name string, all bool, selected map[string]struct{}, counts map[string]int) bool {
	if !all {
		if _, ok := selected[name]; !ok {
			return false
		}
	}
	return counts[name] >= d.MinCount
}

func (d *DevPub) Clone() AutoCat {
	return &DevPub{
		Common:        d.Common,
		Prefix:        d.Prefix,
		AllDevelopers: d.AllDevelopers,
		AllPublishers: d.AllPublishers,
		OwnedOnly:     d.OwnedOnly,
		MinCount:      d.MinCount,
		Developers:    copyStrings(d.Developers),
		Publishers:    copyStrings(d.Publishers),
	}
}
