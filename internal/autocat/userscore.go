package autocat

import (
	"context"
	"math"

	"github.com/Veraticus/depressurize/internal/gamelist"
)

// wilsonZ is the z-score for a 95% confidence interval.
const wilsonZ = 1.96

// UserScoreRule maps a review score range to a category name.
type UserScoreRule struct {
	Name       string `xml:"Text"`
	MinScore   int    `xml:"MinScore"`
	MaxScore   int    `xml:"MaxScore"`
	MinReviews int    `xml:"MinReviews"`
	// MaxReviews of 0 means unlimited.
	MaxReviews int `xml:"MaxReviews"`
}

func (r UserScoreRule) matches(score, reviews int) bool {
	if score < r.MinScore || score > r.MaxScore {
		return false
	}
	if reviews < r.MinReviews {
		return false
	}
	return r.MaxReviews == 0 || reviews <= r.MaxReviews
}

// SteamRules returns the review bands the Steam store displays.
func SteamRules() []UserScoreRule {
	return []UserScoreRule{
		{Name: "Overwhelmingly Positive", MinScore: 95, MaxScore: 100, MinReviews: 500},
		{Name: "Very Positive", MinScore: 80, MaxScore: 100, MinReviews: 50},
		{Name: "Positive", MinScore: 80, MaxScore: 100, MinReviews: 1},
		{Name: "Mostly Positive", MinScore: 70, MaxScore: 79, MinReviews: 1},
		{Name: "Mixed", MinScore: 40, MaxScore: 69, MinReviews: 1},
		{Name: "Mostly Negative", MinScore: 20, MaxScore: 39, MinReviews: 1},
		{Name: "Overwhelmingly Negative", MinScore: 0, MaxScore: 19, MinReviews: 500},
		{Name: "Very Negative", MinScore: 0, MaxScore: 19, MinReviews: 50},
		{Name: "Negative", MinScore: 0, MaxScore: 19, MinReviews: 1},
	}
}

// UserScore assigns a category from the store review score. The first matching rule wins.
type UserScore struct {
	Common
	bound `xml:"-"`

	Prefix         string          `xml:"Prefix,omitempty"`
	UseWilsonScore bool            `xml:"UseWilsonScore"`
	Rules          []UserScoreRule `xml:"Rule"`
}

// NewUserScore returns a UserScore rule with no bands configured.
func NewUserScore(name string) *UserScore {
	return &UserScore{Common: Common{Name: name}}
}

func (u *UserScore) Type() Type { return TypeUserScore }

func (u *UserScore) PreProcess(_ context.Context, b Binding) error {
	u.bind(b)
	return nil
}

func (u *UserScore) DeProcess() { u.unbind() }

func (u *UserScore) CategorizeGame(game *gamelist.Game, filter *gamelist.Filter) (Result, error) {
	if res, done, err := u.guard(u.Name, true, game, filter); done {
		return res, err
	}
	meta, ok := u.metadata(game)
	if !ok {
		return NotInDatabase, nil
	}

	score := meta.ReviewPositivePercentage
	reviews := meta.ReviewTotal
	if u.UseWilsonScore && reviews > 0 {
		score = WilsonScore(score, reviews)
	}

	for _, rule := range u.Rules {
		if rule.matches(score, reviews) {
			u.assign(game, withPrefix(u.Prefix, rule.Name))
			break
		}
	}
	return Success, nil
}

// WilsonScore returns the lower bound of the Wilson score interval, as a percentage,
// for a positive percentage observed over the given number of reviews.
func WilsonScore(percent, reviews int) int {
	if reviews <= 0 {
		return percent
	}
	n := float64(reviews)
	positive := math.Round(n * float64(percent) / 100)
	phat := positive / n
	z2 := wilsonZ * wilsonZ
	lower := (phat + z2/(2*n) - wilsonZ*math.Sqrt((phat*(1-phat)+z2/(4*n))/n)) / (1 + z2/n)
	return int(math.Round(lower * 100))
}

func (u *UserScore) Clone() AutoCat {
	clone := &UserScore{
		Common:         u.Common,
		Prefix:         u.Prefix,
		UseWilsonScore: u.UseWilsonScore,
	}
	if u.Rules != nil {
		clone.Rules = append([]UserScoreRule(nil), u.Rules...)
	}
	return clone
}
