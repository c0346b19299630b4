package model

import "strings"

// CuratorRecommendation is the verdict a Steam curator attached to a game.
type CuratorRecommendation string

// Curator recommendation kinds.
const (
	RecommendationRecommended    CuratorRecommendation = "Recommended"
	RecommendationNotRecommended CuratorRecommendation = "NotRecommended"
	RecommendationInformational  CuratorRecommendation = "Informational"
)

// DisplayText is the user-facing label substituted into curator category templates.
func (r CuratorRecommendation) DisplayText() string {
	switch r {
	case RecommendationRecommended:
		return "Recommended"
	case RecommendationNotRecommended:
		return "Not Recommended"
	case RecommendationInformational:
		return "Informational"
	}
	return string(r)
}

// Valid reports whether r is a known recommendation kind.
func (r CuratorRecommendation) Valid() bool {
	switch r {
	case RecommendationRecommended, RecommendationNotRecommended, RecommendationInformational:
		return true
	}
	return false
}

// ParseCuratorRecommendation accepts either the persisted name or the display text.
func ParseCuratorRecommendation(s string) (CuratorRecommendation, bool) {
	s = strings.TrimSpace(s)
	for _, r := range []CuratorRecommendation{RecommendationRecommended, RecommendationNotRecommended, RecommendationInformational} {
		if strings.EqualFold(s, string(r)) || strings.EqualFold(s, r.DisplayText()) {
			return r, true
		}
	}
	return "", false
}
