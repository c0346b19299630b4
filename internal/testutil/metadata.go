// Package testutil provides fixtures for tests that need a seeded metadata store.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewMetadata(400, "Portal").WithGenres("Puzzle").Scraped().Build(),
//	)
//	snapshot := db.MustLoad()
package testutil

import (
	"github.com/Veraticus/depressurize/internal/model"
)

// ScrapeTime is the scrape timestamp fixtures are stamped with.
const ScrapeTime int64 = 1700000000

// MetadataBuilder builds a model.GameMetadata fluently.
type MetadataBuilder struct {
	m model.GameMetadata
}

// NewMetadata starts an unscraped entry.
func NewMetadata(id int, name string) *MetadataBuilder {
	return &MetadataBuilder{m: model.GameMetadata{ID: id, Name: name, AppType: "game"}}
}

// Scraped marks the store page as scraped.
func (b *MetadataBuilder) Scraped() *MetadataBuilder {
	b.m.LastStoreScrape = ScrapeTime
	return b
}

// WithGenres sets the genres.
func (b *MetadataBuilder) WithGenres(genres ...string) *MetadataBuilder {
	b.m.Genres = genres
	return b
}

// WithTags sets the user tags.
func (b *MetadataBuilder) WithTags(tags ...string) *MetadataBuilder {
	b.m.Tags = tags
	return b
}

// WithFlags sets the store feature flags.
func (b *MetadataBuilder) WithFlags(flags ...string) *MetadataBuilder {
	b.m.Flags = flags
	return b
}

// Released sets the release date text.
func (b *MetadataBuilder) Released(date string) *MetadataBuilder {
	b.m.SteamReleaseDate = date
	return b
}

// WithReviews sets the review count and positive percentage.
func (b *MetadataBuilder) WithReviews(total, positivePercent int) *MetadataBuilder {
	b.m.ReviewTotal = total
	b.m.ReviewPositivePercentage = positivePercent
	return b
}

// WithHltb sets the play times in minutes.
func (b *MetadataBuilder) WithHltb(main, extras, completionist int) *MetadataBuilder {
	b.m.HltbMain = main
	b.m.HltbExtras = extras
	b.m.HltbCompletionist = completionist
	return b
}

// WithDevelopers sets developers and publishers.
func (b *MetadataBuilder) WithDevelopers(developers []string, publishers []string) *MetadataBuilder {
	b.m.Developers = developers
	b.m.Publishers = publishers
	return b
}

// Build returns a copy of the entry.
func (b *MetadataBuilder) Build() model.GameMetadata {
	m := b.m
	return m
}

// Library returns a small scraped catalog covering most rule inputs.
func Library() []model.GameMetadata {
	return []model.GameMetadata{
		NewMetadata(400, "Portal").Scraped().
			WithGenres("Action", "Puzzle").
			WithTags("Puzzle", "First-Person", "Sci-fi").
			WithFlags("Single-player", "Steam Achievements").
			Released("10 Oct, 2007").
			WithReviews(90000, 98).
			WithHltb(180, 240, 330).
			WithDevelopers([]string{"Valve"}, []string{"Valve"}).
			Build(),
		NewMetadata(220, "Half-Life 2").Scraped().
			WithGenres("Action").
			WithTags("FPS", "Sci-fi", "Classic").
			WithFlags("Single-player").
			Released("16 Nov, 2004").
			WithReviews(150000, 97).
			WithHltb(780, 960, 1140).
			WithDevelopers([]string{"Valve"}, []string{"Valve"}).
			Build(),
		NewMetadata(105600, "Terraria").Scraped().
			WithGenres("Action", "Adventure", "Indie", "RPG").
			WithTags("Open World Survival Craft", "Sandbox", "Crafting").
			WithFlags("Single-player", "Online Co-op").
			Released("16 May, 2011").
			WithReviews(900000, 97).
			WithDevelopers([]string{"Re-Logic"}, []string{"Re-Logic"}).
			Build(),
		NewMetadata(9000, "Unscraped Game").
			Released("2015").
			Build(),
	}
}
