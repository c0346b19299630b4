package autocat

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/depressurize/internal/gamelist"
	"github.com/Veraticus/depressurize/internal/model"
)

var curatorURLPattern = regexp.MustCompile(`(?:https?://)?store\.steampowered\.com/curator/(\d+)([^/]*)/?`)

// ParseCuratorID extracts the numeric curator id from a Steam curator page URL.
func ParseCuratorID(url string) (int64, error) {
	m := curatorURLPattern.FindStringSubmatch(strings.TrimSpace(url))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCuratorURL, url)
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidCuratorURL, url, err)
	}
	return id, nil
}

// Curator categorizes games by a Steam curator's recommendation.
type Curator struct {
	Common
	bound `xml:"-"`

	// CategoryName is a template; "{type}" is replaced by the recommendation text.
	CategoryName string `xml:"CategoryName"`
	CuratorURL   string `xml:"CuratorUrl"`
	// Recommendations is the include-set: only games whose recommendation kind is
	// listed get a category. An empty set categorizes nothing.
	Recommendations []model.CuratorRecommendation `xml:"-"`

	recommendations map[int]model.CuratorRecommendation
	include         map[model.CuratorRecommendation]bool
}

// NewCurator returns a Curator rule that includes every recommendation kind.
func NewCurator(name string) *Curator {
	return &Curator{
		Common:       Common{Name: name},
		CategoryName: "Curator: {type}",
		Recommendations: []model.CuratorRecommendation{
			model.RecommendationRecommended,
			model.RecommendationNotRecommended,
			model.RecommendationInformational,
		},
	}
}

type recommendationSet struct {
	Items []model.CuratorRecommendation `xml:"Recommendation"`
}

// curatorXML is the persisted form. Recommendations is a pointer so an empty
// include-set survives a round trip instead of falling back to the default.
type curatorXML struct {
	Common
	CategoryName    string             `xml:"CategoryName"`
	CuratorURL      string             `xml:"CuratorUrl"`
	Recommendations *recommendationSet `xml:"Recommendations"`
}

// MarshalXML implements xml.Marshaler.
func (c *Curator) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(curatorXML{
		Common:          c.Common,
		CategoryName:    c.CategoryName,
		CuratorURL:      c.CuratorURL,
		Recommendations: &recommendationSet{Items: c.Recommendations},
	}, start)
}

// UnmarshalXML implements xml.Unmarshaler. A missing Recommendations element keeps
// the current include-set; a present one replaces it, even when empty.
func (c *Curator) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	doc := curatorXML{Common: c.Common, CategoryName: c.CategoryName, CuratorURL: c.CuratorURL}
	if err := d.DecodeElement(&doc, &start); err != nil {
		return err
	}
	c.Common = doc.Common
	c.CategoryName = doc.CategoryName
	c.CuratorURL = doc.CuratorURL
	if doc.Recommendations != nil {
		c.Recommendations = doc.Recommendations.Items
	}
	return nil
}

func (c *Curator) Type() Type { return TypeCurator }

// PreProcess parses the curator URL and fetches the recommendation set once.
func (c *Curator) PreProcess(ctx context.Context, b Binding) error {
	c.bind(b)
	c.recommendations = nil
	c.include = nil

	id, err := ParseCuratorID(c.CuratorURL)
	if err != nil {
		return err
	}
	if b.Curators == nil {
		return ErrNoCuratorFetcher
	}

	recs, err := b.Curators.FetchRecommendations(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch recommendations for curator %d: %w", id, err)
	}
	c.recommendations = recs
	c.include = make(map[model.CuratorRecommendation]bool, len(c.Recommendations))
	for _, r := range c.Recommendations {
		c.include[r] = true
	}
	c.log().Info("fetched curator recommendations", "autocat", c.Name, "curator_id", id, "count", len(recs))
	return nil
}

func (c *Curator) DeProcess() {
	c.unbind()
	c.recommendations = nil
	c.include = nil
}

func (c *Curator) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := c.guard(c.Name, true, game, filter); done {
		return res, err
	}
	if len(c.recommendations) == 0 {
		return Failure, nil
	}

	rec, ok := c.recommendations[game.ID()]
	if !ok {
		return Success, nil
	}
	if !c.include[rec] {
		return Success, nil
	}
	c.assign(game, c.categoryFor(rec))
	return Success, nil
}

func (c *Curator) categoryFor(rec model.CuratorRecommendation) string {
	text := rec.DisplayText()
	if c.CategoryName == "" {
		return text
	}
	return strings.ReplaceAll(c.CategoryName, "{type}", text)
}

func (c *Curator) Clone() AutoCat {
	clone := &Curator{
		Common:       c.Common,
		CategoryName: c.CategoryName,
		CuratorURL:   c.CuratorURL,
	}
	if c.Recommendations != nil {
		clone.Recommendations = append([]model.CuratorRecommendation(nil), c.Recommendations...)
	}
	return clone
}
