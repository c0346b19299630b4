// Package model defines the plain data records shared across the application.
package model

import (
	"strconv"
	"strings"
	"time"
)

// LanguageSupport lists the languages a game supports per support type.
type LanguageSupport struct {
	Interface []string `json:"interface,omitempty" yaml:"interface,omitempty"`
	Subtitles []string `json:"subtitles,omitempty" yaml:"subtitles,omitempty"`
	FullAudio []string `json:"full_audio,omitempty" yaml:"full_audio,omitempty"`
}

// VRSupport lists the VR hardware a game supports.
type VRSupport struct {
	Headsets []string `json:"headsets,omitempty" yaml:"headsets,omitempty"`
	Input    []string `json:"input,omitempty" yaml:"input,omitempty"`
	PlayArea []string `json:"play_area,omitempty" yaml:"play_area,omitempty"`
}

// GameMetadata is the store metadata known for one game id.
type GameMetadata struct {
	Languages                LanguageSupport `json:"languages" yaml:"languages"`
	VRSupport                VRSupport       `json:"vr_support" yaml:"vr_support"`
	Name                     string          `json:"name" yaml:"name"`
	AppType                  string          `json:"app_type,omitempty" yaml:"app_type,omitempty"`
	SteamReleaseDate         string          `json:"steam_release_date,omitempty" yaml:"steam_release_date,omitempty"`
	Genres                   []string        `json:"genres,omitempty" yaml:"genres,omitempty"`
	Flags                    []string        `json:"flags,omitempty" yaml:"flags,omitempty"`
	Tags                     []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
	Developers               []string        `json:"developers,omitempty" yaml:"developers,omitempty"`
	Publishers               []string        `json:"publishers,omitempty" yaml:"publishers,omitempty"`
	LastStoreScrape          int64           `json:"last_store_scrape" yaml:"last_store_scrape"`
	LastAppInfoUpdate        int64           `json:"last_app_info_update" yaml:"last_app_info_update"`
	ID                       int             `json:"id" yaml:"id"`
	ReviewTotal              int             `json:"review_total" yaml:"review_total"`
	ReviewPositivePercentage int             `json:"review_positive_percentage" yaml:"review_positive_percentage"`
	HltbMain                 int             `json:"hltb_main" yaml:"hltb_main"`
	HltbExtras               int             `json:"hltb_extras" yaml:"hltb_extras"`
	HltbCompletionist        int             `json:"hltb_completionist" yaml:"hltb_completionist"`
}

// Scraped reports whether the store page has been scraped at least once.
func (m *GameMetadata) Scraped() bool {
	return m != nil && m.LastStoreScrape != 0
}

var releaseDateLayouts = []string{
	"2 Jan, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"January 2, 2006",
	"Jan 2006",
	"January 2006",
	"2006-01-02",
}

// ReleaseYear extracts the release year from SteamReleaseDate, or 0 when unknown.
func (m *GameMetadata) ReleaseYear() int {
	if m == nil {
		return 0
	}
	raw := strings.TrimSpace(m.SteamReleaseDate)
	if raw == "" {
		return 0
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Year()
		}
	}
	// Fall back to the last four-digit run, e.g. "Q3 2019" or "Coming 2021".
	for i := len(raw) - 4; i >= 0; i-- {
		if year, err := strconv.Atoi(raw[i : i+4]); err == nil && year > 1900 {
			return year
		}
	}
	return 0
}
