package autocat

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/depressurize/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCuratorID(t *testing.T) {
	tests := []struct {
		url     string
		want    int64
		wantErr bool
	}{
		{url: "https://store.steampowered.com/curator/12345-Some-Curator/", want: 12345},
		{url: "http://store.steampowered.com/curator/12345/", want: 12345},
		{url: "store.steampowered.com/curator/987", want: 987},
		{url: "  https://store.steampowered.com/curator/42-X  ", want: 42},
		{url: "not-a-url", wantErr: true},
		{url: "https://store.steampowered.com/app/620/", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseCuratorID(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCuratorURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurator(t *testing.T) {
	f := newFixture(t)
	rec := f.game(t, 1, "Recommended Game")
	info := f.game(t, 2, "Info Game")
	unknown := f.game(t, 3, "Unlisted Game")

	fetcher := &fakeCurators{recs: map[int]model.CuratorRecommendation{
		1: model.RecommendationRecommended,
		2: model.RecommendationInformational,
	}}
	c := NewCurator("curator")
	c.CuratorURL = "https://store.steampowered.com/curator/12345-Some-Curator/"
	c.CategoryName = "Curator: {type}"

	b := f.binding()
	b.Curators = fetcher
	require.NoError(t, c.PreProcess(context.Background(), b))
	defer c.DeProcess()
	assert.Equal(t, []int64{12345}, fetcher.calls)

	for _, g := range []int{1, 2, 3} {
		game, _ := f.games.Game(g)
		res, err := c.CategorizeGame(game, nil)
		require.NoError(t, err)
		assert.Equal(t, Success, res)
	}
	assert.Equal(t, []string{"Curator: Recommended"}, rec.CategoryNames())
	assert.Equal(t, []string{"Curator: Informational"}, info.CategoryNames())
	assert.Empty(t, unknown.CategoryNames())
}

func TestCurator_RecommendationSubset(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")

	c := NewCurator("curator")
	c.CuratorURL = "https://store.steampowered.com/curator/1/"
	c.CategoryName = ""
	c.Recommendations = []model.CuratorRecommendation{model.RecommendationNotRecommended}

	b := f.binding()
	b.Curators = &fakeCurators{recs: map[int]model.CuratorRecommendation{1: model.RecommendationRecommended, 2: model.RecommendationNotRecommended}}
	require.NoError(t, c.PreProcess(context.Background(), b))
	defer c.DeProcess()

	res, err := c.CategorizeGame(g, nil)
	require.NoError(t, err)
	assert.Equal(t, Success, res)
	assert.Empty(t, g.CategoryNames())
	assert.Equal(t, "Not Recommended", c.categoryFor(model.RecommendationNotRecommended))
}

func TestCurator_InvalidURLFailsEveryGame(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")
	fetcher := &fakeCurators{}

	c := NewCurator("curator")
	c.CuratorURL = "not-a-url"
	b := f.binding()
	b.Curators = fetcher

	err := c.PreProcess(context.Background(), b)
	assert.ErrorIs(t, err, ErrInvalidCuratorURL)
	assert.Empty(t, fetcher.calls)
	defer c.DeProcess()

	res, err := c.CategorizeGame(g, nil)
	require.NoError(t, err)
	assert.Equal(t, Failure, res)
	assert.Empty(t, g.CategoryNames())
}

func TestCurator_FetchErrorOrEmptyFails(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeCurators
		wantErr bool
	}{
		{name: "fetch error", fetcher: &fakeCurators{err: errors.New("boom")}, wantErr: true},
		{name: "empty recommendations", fetcher: &fakeCurators{recs: map[int]model.CuratorRecommendation{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.game(t, 1, "Game")
			c := NewCurator("curator")
			c.CuratorURL = "https://store.steampowered.com/curator/5/"
			b := f.binding()
			b.Curators = tt.fetcher

			err := c.PreProcess(context.Background(), b)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			defer c.DeProcess()

			res, err := c.CategorizeGame(g, nil)
			require.NoError(t, err)
			assert.Equal(t, Failure, res)
		})
	}
}

func TestCurator_EmptyIncludeSetCategorizesNothing(t *testing.T) {
	c := NewCurator("curator")
	c.CuratorURL = "https://store.steampowered.com/curator/7/"
	c.Recommendations = nil

	data, err := Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<Recommendations></Recommendations>")

	ac, err := Unmarshal(data)
	require.NoError(t, err)
	decoded, ok := ac.(*Curator)
	require.True(t, ok)
	assert.Empty(t, decoded.Recommendations)

	f := newFixture(t)
	g := f.game(t, 1, "Game")
	b := f.binding()
	b.Curators = &fakeCurators{recs: map[int]model.CuratorRecommendation{1: model.RecommendationNotRecommended}}
	require.NoError(t, decoded.PreProcess(context.Background(), b))
	defer decoded.DeProcess()

	res, err := decoded.CategorizeGame(g, nil)
	require.NoError(t, err)
	assert.Equal(t, Success, res)
	assert.Empty(t, g.CategoryNames())
}

func TestCurator_DecodeRecommendations(t *testing.T) {
	all := []model.CuratorRecommendation{
		model.RecommendationRecommended,
		model.RecommendationNotRecommended,
		model.RecommendationInformational,
	}
	tests := []struct {
		name string
		body string
		want []model.CuratorRecommendation
	}{
		{
			name: "missing element keeps defaults",
			body: "",
			want: all,
		},
		{
			name: "listed kinds replace defaults",
			body: "<Recommendations><Recommendation>Informational</Recommendation></Recommendations>",
			want: []model.CuratorRecommendation{model.RecommendationInformational},
		},
		{
			name: "empty element clears",
			body: "<Recommendations/>",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac, err := Unmarshal([]byte("<AutoCatCurator><Name>c</Name>" + tt.body + "</AutoCatCurator>"))
			require.NoError(t, err)
			c, ok := ac.(*Curator)
			require.True(t, ok)
			assert.Equal(t, "c", c.Name)
			assert.Equal(t, "Curator: {type}", c.CategoryName)
			assert.Equal(t, tt.want, c.Recommendations)
		})
	}
}

func TestGenre(t *testing.T) {
	tests := []struct {
		name      string
		configure func(g *Genre)
		meta      model.GameMetadata
		start     []string
		want      []string
	}{
		{
			name: "all genres",
			meta: model.GameMetadata{Genres: []string{"Action", "RPG"}},
			want: []string{"Action", "RPG"},
		},
		{
			name:      "max categories",
			configure: func(g *Genre) { g.MaxCategories = 1 },
			meta:      model.GameMetadata{Genres: []string{"Action", "RPG"}},
			want:      []string{"Action"},
		},
		{
			name:      "ignored genres do not count toward max",
			configure: func(g *Genre) { g.MaxCategories = 1; g.IgnoredGenres = []string{"Action"} },
			meta:      model.GameMetadata{Genres: []string{"Action", "RPG"}},
			want:      []string{"RPG"},
		},
		{
			name: "tag fallback",
			meta: model.GameMetadata{Tags: []string{"Roguelike"}},
			want: []string{"Roguelike"},
		},
		{
			name:      "no tag fallback",
			configure: func(g *Genre) { g.TagFallback = false },
			meta:      model.GameMetadata{Tags: []string{"Roguelike"}},
			want:      []string{},
		},
		{
			name:      "prefix and remove other genres",
			configure: func(g *Genre) { g.Prefix = "G-"; g.RemoveOtherGenres = true },
			meta:      model.GameMetadata{Genres: []string{"RPG"}},
			start:     []string{"G-Strategy", "Backlog"},
			want:      []string{"Backlog", "G-RPG"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.game(t, 1, "Game", tt.start...)
			tt.meta.ID = 1
			f.scraped(tt.meta)
			// Another game contributes a genre known to the database.
			f.scraped(model.GameMetadata{ID: 99, Genres: []string{"Strategy"}})

			rule := NewGenre("genre")
			if tt.configure != nil {
				tt.configure(rule)
			}
			assert.Equal(t, Success, f.run(t, rule, g))
			assert.Equal(t, tt.want, g.CategoryNames())
		})
	}
}

func TestGenre_NotScraped(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")
	f.db.Put(&model.GameMetadata{ID: 1, Genres: []string{"RPG"}})

	assert.Equal(t, NotInDatabase, f.run(t, NewGenre("genre"), g))
}

func TestYear(t *testing.T) {
	tests := []struct {
		name      string
		configure func(y *Year)
		date      string
		want      []string
	}{
		{name: "plain year", date: "19 Apr, 2011", want: []string{"2011"}},
		{name: "decade", configure: func(y *Year) { y.GroupingMode = GroupDecade }, date: "Apr 19, 2011", want: []string{"2010-2019"}},
		{name: "half decade", configure: func(y *Year) { y.GroupingMode = GroupHalfDecade }, date: "2017-03-03", want: []string{"2015-2019"}},
		{name: "unknown included", date: "Coming soon", want: []string{"Unknown"}},
		{name: "unknown excluded", configure: func(y *Year) { y.IncludeUnknown = false }, date: "", want: []string{}},
		{name: "prefix", configure: func(y *Year) { y.Prefix = "Year - " }, date: "2004", want: []string{"Year - 2004"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.game(t, 1, "Game")
			f.db.Put(&model.GameMetadata{ID: 1, SteamReleaseDate: tt.date})

			rule := NewYear("year")
			if tt.configure != nil {
				tt.configure(rule)
			}
			assert.Equal(t, Success, f.run(t, rule, g))
			assert.Equal(t, tt.want, g.CategoryNames())
		})
	}
}

func TestYear_NotInDatabase(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")
	assert.Equal(t, NotInDatabase, f.run(t, NewYear("year"), g))
}

func TestUserScore_SteamRules(t *testing.T) {
	tests := []struct {
		score   int
		reviews int
		want    []string
	}{
		{score: 97, reviews: 12000, want: []string{"Overwhelmingly Positive"}},
		{score: 97, reviews: 120, want: []string{"Very Positive"}},
		{score: 85, reviews: 10, want: []string{"Positive"}},
		{score: 75, reviews: 10, want: []string{"Mostly Positive"}},
		{score: 50, reviews: 10, want: []string{"Mixed"}},
		{score: 30, reviews: 10, want: []string{"Mostly Negative"}},
		{score: 10, reviews: 5, want: []string{"Negative"}},
		{score: 10, reviews: 60, want: []string{"Very Negative"}},
		{score: 10, reviews: 600, want: []string{"Overwhelmingly Negative"}},
		{score: 90, reviews: 0, want: []string{}},
	}

	for _, tt := range tests {
		f := newFixture(t)
		g := f.game(t, 1, "Game")
		f.db.Put(&model.GameMetadata{ID: 1, ReviewPositivePercentage: tt.score, ReviewTotal: tt.reviews})

		rule := NewUserScore("score")
		rule.Rules = SteamRules()
		assert.Equal(t, Success, f.run(t, rule, g))
		assert.Equal(t, tt.want, g.CategoryNames(), "score %d reviews %d", tt.score, tt.reviews)
	}
}

func TestUserScore_Wilson(t *testing.T) {
	assert.Equal(t, 50, WilsonScore(50, 0))
	assert.Less(t, WilsonScore(100, 3), 100)
	assert.Greater(t, WilsonScore(95, 100000), 94)

	f := newFixture(t)
	g := f.game(t, 1, "Game")
	f.db.Put(&model.GameMetadata{ID: 1, ReviewPositivePercentage: 100, ReviewTotal: 2})

	rule := NewUserScore("score")
	rule.UseWilsonScore = true
	rule.Rules = []UserScoreRule{
		{Name: "Top", MinScore: 90, MaxScore: 100},
		{Name: "Rest", MinScore: 0, MaxScore: 89},
	}
	assert.Equal(t, Success, f.run(t, rule, g))
	assert.Equal(t, []string{"Rest"}, g.CategoryNames())
}

func TestTagsAndFlags(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")
	f.scraped(model.GameMetadata{
		ID:    1,
		Tags:  []string{"Roguelike", "Indie", "Pixel Graphics"},
		Flags: []string{"Single-player", "Steam Achievements"},
	})

	tags := NewTags("tags")
	tags.Prefix = "Tag - "
	tags.IncludedTags = []string{"Roguelike", "Pixel Graphics"}
	tags.MaxTags = 1
	assert.Equal(t, Success, f.run(t, tags, g))

	flags := NewFlags("flags")
	flags.IncludedFlags = []string{"Steam Achievements"}
	assert.Equal(t, Success, f.run(t, flags, g))

	assert.Equal(t, []string{"Steam Achievements", "Tag - Roguelike"}, g.CategoryNames())
}

func TestHltb(t *testing.T) {
	rules := []HltbRule{
		{Name: "Short", MinHours: 0, MaxHours: 5, TimeType: TimeMain},
		{Name: "Long", MinHours: 5, MaxHours: 0, TimeType: TimeMain},
		{Name: "Completionist", MinHours: 100, TimeType: TimeCompletionist},
	}
	tests := []struct {
		name string
		meta model.GameMetadata
		want []string
	}{
		{name: "short", meta: model.GameMetadata{HltbMain: 180}, want: []string{"Short"}},
		{name: "long", meta: model.GameMetadata{HltbMain: 600}, want: []string{"Long"}},
		{name: "completionist only", meta: model.GameMetadata{HltbCompletionist: 7200}, want: []string{"Completionist"}},
		{name: "unknown", meta: model.GameMetadata{}, want: []string{"Unknown"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.game(t, 1, "Game")
			tt.meta.ID = 1
			f.db.Put(&tt.meta)

			rule := NewHltb("hltb")
			rule.IncludeUnknown = true
			rule.Rules = rules
			assert.Equal(t, Success, f.run(t, rule, g))
			assert.Equal(t, tt.want, g.CategoryNames())
		})
	}
}

func TestLanguage(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")
	f.db.Put(&model.GameMetadata{ID: 1, Languages: model.LanguageSupport{
		Interface: []string{"English", "German"},
		FullAudio: []string{"English"},
	}})

	rule := NewLanguage("lang")
	rule.IncludeTypePrefix = true
	rule.TypeFallback = true
	rule.IncludedLanguages = LanguageSelection{
		Interface: []string{"German"},
		Subtitles: []string{"German"},
		FullAudio: []string{"English", "German"},
	}
	assert.Equal(t, Success, f.run(t, rule, g))
	assert.Equal(t, []string{"Full Audio: English", "Interface: German", "Subtitles: German"}, g.CategoryNames())
}

func TestVrSupport(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")
	f.db.Put(&model.GameMetadata{ID: 1, VRSupport: model.VRSupport{
		Headsets: []string{"Valve Index", "HTC Vive"},
		PlayArea: []string{"Room-Scale"},
	}})

	rule := NewVrSupport("vr")
	rule.Prefix = "VR: "
	rule.IncludedVRSupportFlags = VRSelection{Headsets: []string{"Valve Index"}, PlayArea: []string{"Room-Scale"}}
	assert.Equal(t, Success, f.run(t, rule, g))
	assert.Equal(t, []string{"VR: Room-Scale", "VR: Valve Index"}, g.CategoryNames())
}

func TestName(t *testing.T) {
	tests := []struct {
		title     string
		configure func(n *Name)
		want      string
	}{
		{title: "portal", want: "P"},
		{title: "The Witcher 3", want: "W"},
		{title: "The Witcher 3", configure: func(n *Name) { n.SkipThe = false }, want: "T"},
		{title: "7 Days to Die", configure: func(n *Name) { n.GroupNumbers = true }, want: "#"},
		{title: "7 Days to Die", want: "7"},
		{title: "Ōkami", configure: func(n *Name) { n.GroupNonEnglishCharacters = true }, want: "Non-English"},
		{title: "", want: ""},
	}

	for _, tt := range tests {
		rule := NewName("name")
		if tt.configure != nil {
			tt.configure(rule)
		}
		assert.Equal(t, tt.want, rule.label(tt.title), tt.title)
	}
}

func TestDevPub(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")
	f.game(t, 2, "Other")
	f.scraped(model.GameMetadata{ID: 1, Developers: []string{"Valve", "Solo Dev"}, Publishers: []string{"Valve"}})
	f.scraped(model.GameMetadata{ID: 2, Developers: []string{"Valve"}, Publishers: []string{"Valve"}})

	rule := NewDevPub("devpub")
	rule.AllDevelopers = true
	rule.Publishers = []string{"Valve"}
	rule.MinCount = 2
	rule.Prefix = "By "
	assert.Equal(t, Success, f.run(t, rule, g))
	assert.Equal(t, []string{"By Valve"}, g.CategoryNames())
}

func TestDevPub_OwnedOnly(t *testing.T) {
	tests := []struct {
		name      string
		ownedOnly bool
		want      []string
	}{
		{name: "owned games only", ownedOnly: true, want: []string{}},
		{name: "whole database", ownedOnly: false, want: []string{"Valve"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.game(t, 1, "Owned")
			f.scraped(model.GameMetadata{ID: 1, Developers: []string{"Valve"}})
			// Only known to the database, not in the library.
			f.scraped(model.GameMetadata{ID: 2, Developers: []string{"Valve"}})

			rule := NewDevPub("devpub")
			rule.AllDevelopers = true
			rule.MinCount = 2
			rule.OwnedOnly = tt.ownedOnly
			assert.Equal(t, Success, f.run(t, rule, g))
			assert.Equal(t, tt.want, g.CategoryNames())
		})
	}
}

func TestGroup(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")
	f.db.Put(&model.GameMetadata{ID: 1, SteamReleaseDate: "2011"})

	genre := NewGenre("Genre")
	year := NewYear("Year")
	rules := List{genre, year, NewGroup("Both", "Genre", "Year")}

	b := f.binding()
	b.Rules = rules
	group := rules[2]
	require.NoError(t, group.PreProcess(context.Background(), b))
	defer group.DeProcess()

	// Genre reports NotInDatabase (never scraped) but Year succeeds.
	res, err := group.CategorizeGame(g, nil)
	require.NoError(t, err)
	assert.Equal(t, Success, res)
	assert.Equal(t, []string{"2011"}, g.CategoryNames())

	// Members are private clones; the listed rules stay unbound.
	_, err = year.CategorizeGame(g, nil)
	assert.ErrorIs(t, err, ErrNotBound)
}

func TestGroup_FirstResultWhenNoneSucceed(t *testing.T) {
	f := newFixture(t)
	g := f.game(t, 1, "Game")
	rules := List{NewGenre("Genre"), NewTags("Tags"), NewGroup("Both", "Genre", "Tags")}

	b := f.binding()
	b.Rules = rules
	require.NoError(t, rules[2].PreProcess(context.Background(), b))
	defer rules[2].DeProcess()

	res, err := rules[2].CategorizeGame(g, nil)
	require.NoError(t, err)
	assert.Equal(t, NotInDatabase, res)
}

func TestGroup_ResolutionErrors(t *testing.T) {
	rules := List{
		NewGroup("A", "B"),
		NewGroup("B", "A"),
		NewGroup("Self", "Self"),
		NewGroup("Missing", "Nope"),
	}

	tests := []struct {
		group string
		want  error
	}{
		{group: "A", want: ErrGroupCycle},
		{group: "Self", want: ErrGroupCycle},
		{group: "Missing", want: ErrUnknownRule},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			f := newFixture(t)
			b := f.binding()
			b.Rules = rules
			g, ok := rules.Lookup(tt.group)
			require.True(t, ok)

			err := g.PreProcess(context.Background(), b)
			assert.ErrorIs(t, err, tt.want)
			g.DeProcess()
		})
	}
}
