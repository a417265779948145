package ranking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/idresolve/internal/config"
	"github.com/agenthands/idresolve/internal/core/enrich"
	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/core/network"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

type MockLookup struct {
	Profiles map[string]model.ExternalProfile
	Failing  map[string]bool
	Panics   map[string]bool
	Calls    int
}

func (m *MockLookup) Lookup(ctx context.Context, id string) (*model.ExternalProfile, error) {
	m.Calls++
	if m.Panics[id] {
		panic("lookup exploded")
	}
	if m.Failing[id] {
		return nil, errors.New("registry unavailable")
	}
	p, ok := m.Profiles[id]
	if !ok {
		return nil, enrich.ErrNotFound
	}
	return &p, nil
}

type MockSimilarity struct {
	Score float64
}

func (m MockSimilarity) Similarity(ctx context.Context, a, b string) (float64, bool) {
	return m.Score, true
}

func newTestEngine(lookup enrich.ProfileLookup) *Engine {
	e := NewEngine(enrich.NewEnricher(lookup, nil), nil, nil)
	e.Now = func() time.Time { return now }
	return e
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestWeights_NormalizedPerContext(t *testing.T) {
	base := BaseWeights()
	assert.InDelta(t, 1.0, base.Sum(), 1e-9)

	for _, tag := range []model.ContextTag{"", model.ContextAcademic, model.ContextCorporate, model.ContextPersonal, "unknown"} {
		w := Adapt(base, ContextModifiers(), tag)
		assert.InDelta(t, 1.0, w.Sum(), 1e-9, "context %q", tag)
		for _, f := range model.Factors {
			assert.GreaterOrEqual(t, w[f], 0.0)
		}
	}

	academic := Adapt(base, ContextModifiers(), model.ContextAcademic)
	assert.Greater(t, academic[model.FactorCitation], base[model.FactorCitation])
	assert.Less(t, academic[model.FactorPosition], base[model.FactorPosition])

	unknown := Adapt(base, ContextModifiers(), "unknown")
	assert.InDelta(t, base[model.FactorNameSimilarity], unknown[model.FactorNameSimilarity], 1e-9)
}

func TestWeightsFromConfig(t *testing.T) {
	base, mods := WeightsFromConfig(config.RankingConfig{
		Weights:  map[string]float64{model.FactorNameSimilarity: 1.4, "bogus": 5},
		Contexts: map[string]map[string]float64{"grant": {model.FactorCitation: 2}},
	})
	assert.InDelta(t, 1.0, base.Sum(), 1e-9)
	assert.Greater(t, base[model.FactorNameSimilarity], 0.6)
	assert.NotContains(t, base, "bogus")
	assert.Equal(t, 2.0, mods["grant"][model.FactorCitation])
	assert.Contains(t, mods, model.ContextAcademic)
}

func TestPositionScore_Monotonic(t *testing.T) {
	assert.Equal(t, 1.0, PositionScore(0))
	assert.InDelta(t, 0.0, PositionScore(100), 1e-9)
	assert.Equal(t, 0.0, PositionScore(500))
	prev := PositionScore(0)
	for p := 1; p <= 120; p++ {
		s := PositionScore(p)
		assert.LessOrEqual(t, s, prev)
		prev = s
	}
}

func TestURLAndDomainScores(t *testing.T) {
	assert.Equal(t, 1.0, URLQualityScore("https://orcid.org/0000-0001"))
	assert.InDelta(t, 0.1, URLQualityScore("http://x.com/?a=1&b=2"), 1e-9)
	assert.Equal(t, 0.0, URLQualityScore("http://x.com/?a=1&b=2&c=3&d=4&e=5"))
	assert.Equal(t, 0.0, URLQualityScore(""))

	assert.Equal(t, 1.0, DomainQualityScore("https://orcid.org/0000-0001"))
	assert.Equal(t, 0.8, DomainQualityScore("https://cs.stanford.edu/~ip"))
	assert.Equal(t, 0.6, DomainQualityScore("https://wikimedia.org/ip"))
	assert.Equal(t, 0.3, DomainQualityScore("https://example.com/ip"))
	assert.Equal(t, 0.0, DomainQualityScore(""))

	assert.Equal(t, 1.0, DomainAffinityScore("https://msu.ru/people", "ip@msu.ru"))
	assert.Equal(t, 0.7, DomainAffinityScore("https://phys.msu.ru/people", "ip@msu.ru"))
	assert.Equal(t, 0.5, DomainAffinityScore("https://phys.msu.ru/people", "ip@cmc.msu.ru"))
	assert.Equal(t, 0.7, DomainAffinityScore("https://msu.ru/people", "ip@phys.msu.ru"))
	assert.Equal(t, 0.0, DomainAffinityScore("https://notmsu.ru/people", "ip@msu.ru"))
	assert.Equal(t, 0.0, DomainAffinityScore("https://orcid.org/x", "ip@msu.ru"))
	assert.Equal(t, 0.0, DomainAffinityScore("https://orcid.org/x", ""))
}

func TestTemporalAndCitationScores(t *testing.T) {
	assert.Equal(t, NeutralScore, TemporalScore(nil, now))
	assert.Equal(t, 1.0, TemporalScore(timePtr(now.AddDate(0, 0, -10)), now))
	assert.Equal(t, 0.8, TemporalScore(timePtr(now.AddDate(0, 0, -60)), now))
	assert.Equal(t, 0.6, TemporalScore(timePtr(now.AddDate(0, 0, -200)), now))
	assert.Equal(t, 0.4, TemporalScore(timePtr(now.AddDate(-2, 0, 0)), now))
	assert.Equal(t, 0.2, TemporalScore(timePtr(now.AddDate(-5, 0, 0)), now))

	assert.Equal(t, NeutralScore, CitationScore(nil, 0))
	assert.InDelta(t, 0.7*0.5+0.3*0.4, CitationScore(intPtr(25), 40), 1e-9)
	assert.InDelta(t, 1.0, CitationScore(intPtr(80), 300), 1e-9)
	assert.InDelta(t, 0.3*0.2, CitationScore(nil, 20), 1e-9)
}

func TestPotentialNames(t *testing.T) {
	names := PotentialNames("Ivan Petrov", "ivan.petrov@msu.ru")
	assert.Equal(t, []string{"Ivan Petrov", "ivan.petrov"}, names)

	assert.Empty(t, PotentialNames("", ""))
}

func TestLevelFor_TotalAndMonotonic(t *testing.T) {
	order := map[model.ConfidenceLevel]int{
		model.LevelVeryLow: 0, model.LevelLow: 1, model.LevelMedium: 2, model.LevelHigh: 3, model.LevelVeryHigh: 4,
	}
	prev := -1
	for s := 0.0; s <= 1.0; s += 0.01 {
		lvl, ok := order[model.LevelFor(s)]
		require.True(t, ok)
		assert.GreaterOrEqual(t, lvl, prev)
		prev = lvl
	}
}

func TestLevelFor_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  model.ConfidenceLevel
	}{
		{0.8, model.LevelVeryHigh},
		{0.7999, model.LevelHigh},
		{0.65, model.LevelHigh},
		{0.6499, model.LevelMedium},
		{0.5, model.LevelMedium},
		{0.4999, model.LevelLow},
		{0.3, model.LevelLow},
		{0.2999, model.LevelVeryLow},
		{0, model.LevelVeryLow},
		{1, model.LevelVeryHigh},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, model.LevelFor(c.score), "%v", c.score)
	}
}

func TestRank_ScoresAndOrders(t *testing.T) {
	lookup := &MockLookup{Profiles: map[string]model.ExternalProfile{
		"0000-0001": {
			ExtractedNames:   []string{"Ivan Petrov"},
			PublicationCount: 40,
			HIndex:           intPtr(25),
			LastActivity:     timePtr(now.AddDate(0, 0, -5)),
		},
		"0000-0002": {ExtractedNames: []string{"Anna Smith"}, PublicationCount: 3},
	}}
	e := newTestEngine(lookup)

	ranked, err := e.Rank(context.Background(), RankRequest{
		Hints: model.TargetHints{Name: "Ivan Petrov", ContactAddress: "ivan.petrov@msu.ru", Context: model.ContextAcademic},
		Candidates: []model.IdentifierCandidate{
			{Identifier: "0000-0002", SourceURL: "https://orcid.org/0000-0002", SearchPosition: 0},
			{Identifier: "0000-0001", SourceURL: "https://orcid.org/0000-0001", SearchPosition: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "0000-0001", ranked[0].Identifier)
	assert.Equal(t, 1.0, ranked[0].Factors.NameSimilarity)
	assert.True(t, ranked[0].Enriched)
	assert.Greater(t, ranked[0].RelevanceScore, ranked[1].RelevanceScore)
	for _, rc := range ranked {
		assert.GreaterOrEqual(t, rc.RelevanceScore, 0.0)
		assert.LessOrEqual(t, rc.RelevanceScore, 1.0)
		assert.Equal(t, model.LevelFor(rc.RelevanceScore), rc.ConfidenceLevel)
		assert.Equal(t, NeutralScore, rc.Factors.Network)
	}
}

func TestRank_EnrichmentFailureKeepsCandidate(t *testing.T) {
	lookup := &MockLookup{
		Profiles: map[string]model.ExternalProfile{"ok": {ExtractedNames: []string{"Ivan Petrov"}}},
		Failing:  map[string]bool{"broken": true},
		Panics:   map[string]bool{"explodes": true},
	}
	e := newTestEngine(lookup)

	ranked, err := e.Rank(context.Background(), RankRequest{
		Hints: model.TargetHints{Name: "Ivan Petrov"},
		Candidates: []model.IdentifierCandidate{
			{Identifier: "broken", SourceURL: "https://orcid.org/broken"},
			{Identifier: "explodes", SourceURL: "https://orcid.org/explodes"},
			{Identifier: "ok", SourceURL: "https://orcid.org/ok"},
		},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, 3, lookup.Calls)

	byID := map[string]model.RankingCandidate{}
	for _, rc := range ranked {
		byID[rc.Identifier] = rc
	}
	for _, id := range []string{"broken", "explodes"} {
		rc := byID[id]
		assert.False(t, rc.Enriched)
		assert.Equal(t, NeutralScore, rc.Factors.Temporal)
		assert.Equal(t, NeutralScore, rc.Factors.Citation)
		assert.Equal(t, NeutralScore, rc.Factors.Semantic)
		assert.Equal(t, 0.0, rc.Factors.NameSimilarity)
	}
	assert.Equal(t, "ok", ranked[0].Identifier)
}

func TestSortAndGroup_TieBreakWithinGroup(t *testing.T) {
	ranked := []model.RankingCandidate{
		{Identifier: "a", RelevanceScore: 0.71, Factors: model.FactorScores{NameSimilarity: 0.5}},
		{Identifier: "b", RelevanceScore: 0.70, Factors: model.FactorScores{NameSimilarity: 0.9}},
		{Identifier: "c", RelevanceScore: 0.40, Factors: model.FactorScores{NameSimilarity: 1.0}},
	}
	SortAndGroup(ranked, DefaultGroupGap)
	assert.Equal(t, []string{"b", "a", "c"}, ids(ranked))
}

func TestSortAndGroup_GapStartsNewGroup(t *testing.T) {
	ranked := []model.RankingCandidate{
		{Identifier: "low", RelevanceScore: 0.60, Factors: model.FactorScores{NameSimilarity: 1.0}},
		{Identifier: "high", RelevanceScore: 0.70, Factors: model.FactorScores{NameSimilarity: 0.1}},
	}
	SortAndGroup(ranked, DefaultGroupGap)
	assert.Equal(t, []string{"high", "low"}, ids(ranked))
}

func TestSortAndGroup_ExactGapStartsNewGroup(t *testing.T) {
	for _, pair := range [][2]float64{{0.35, 0.30}, {0.75, 0.70}, {0.55, 0.50}} {
		ranked := []model.RankingCandidate{
			{Identifier: "low", RelevanceScore: pair[1], Factors: model.FactorScores{NameSimilarity: 1.0}},
			{Identifier: "high", RelevanceScore: pair[0], Factors: model.FactorScores{NameSimilarity: 0.1}},
		}
		SortAndGroup(ranked, DefaultGroupGap)
		assert.Equal(t, []string{"high", "low"}, ids(ranked), "%v", pair)
	}

	// Just inside the gap the tie-break applies.
	ranked := []model.RankingCandidate{
		{Identifier: "low", RelevanceScore: 0.301, Factors: model.FactorScores{NameSimilarity: 1.0}},
		{Identifier: "high", RelevanceScore: 0.35, Factors: model.FactorScores{NameSimilarity: 0.1}},
	}
	SortAndGroup(ranked, DefaultGroupGap)
	assert.Equal(t, []string{"low", "high"}, ids(ranked))
}

func TestSortAndGroup_Deterministic(t *testing.T) {
	mk := func() []model.RankingCandidate {
		return []model.RankingCandidate{
			{Identifier: "z", RelevanceScore: 0.5},
			{Identifier: "m", RelevanceScore: 0.5},
			{Identifier: "a", RelevanceScore: 0.5},
		}
	}
	first, second := mk(), mk()
	second[0], second[2] = second[2], second[0]
	SortAndGroup(first, DefaultGroupGap)
	SortAndGroup(second, DefaultGroupGap)
	assert.Equal(t, []string{"a", "m", "z"}, ids(first))
	assert.Equal(t, ids(first), ids(second))
}

func TestApplyContextRules(t *testing.T) {
	ranked := []model.RankingCandidate{
		{Identifier: "a", RelevanceScore: 0.9, Factors: model.FactorScores{NameSimilarity: 0.95}},
		{Identifier: "b", RelevanceScore: 0.5, Factors: model.FactorScores{NameSimilarity: 0.5}},
	}
	ApplyContextRules(ranked, model.ContextPersonal)
	assert.Equal(t, 1.0, ranked[0].RelevanceScore)
	assert.Equal(t, model.LevelVeryHigh, ranked[0].ConfidenceLevel)
	assert.Equal(t, 0.5, ranked[1].RelevanceScore)

	academic := []model.RankingCandidate{
		{RelevanceScore: 0.6, HIndex: intPtr(30), Factors: model.FactorScores{Temporal: 0.8}},
		{RelevanceScore: 0.6, HIndex: intPtr(30), Factors: model.FactorScores{Temporal: 0.6}},
		{RelevanceScore: 0.6, Factors: model.FactorScores{Temporal: 1}},
	}
	ApplyContextRules(academic, model.ContextAcademic)
	assert.InDelta(t, 0.66, academic[0].RelevanceScore, 1e-9)
	assert.Equal(t, model.LevelHigh, academic[0].ConfidenceLevel)
	assert.Equal(t, 0.6, academic[1].RelevanceScore)
	assert.Equal(t, 0.6, academic[2].RelevanceScore)

	corporate := []model.RankingCandidate{{RelevanceScore: 0.6, Factors: model.FactorScores{DomainAffinity: 1}}}
	ApplyContextRules(corporate, model.ContextCorporate)
	assert.InDelta(t, 0.69, corporate[0].RelevanceScore, 1e-9)
}

func TestRank_NetworkAndSemantic(t *testing.T) {
	lookup := &MockLookup{Profiles: map[string]model.ExternalProfile{
		"hub": {ExtractedNames: []string{"Ivan Petrov"}, ResearchAreas: []string{"optics"}},
	}}
	e := newTestEngine(lookup)
	e.Semantic = MockSimilarity{Score: 0.9}
	graph := network.NewGraph([]network.Edge{{Source: "hub", Target: "x"}, {Source: "hub", Target: "y"}})

	ranked, err := e.Rank(context.Background(), RankRequest{
		Hints:      model.TargetHints{Name: "Anna Smith", ContactAddress: "asmith@msu.edu"},
		Candidates: []model.IdentifierCandidate{{Identifier: "hub", SourceURL: "https://orcid.org/hub"}},
		Network:    graph,
	})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.InDelta(t, graph.Score("hub"), ranked[0].Factors.Network, 1e-9)
	assert.Equal(t, 0.9, ranked[0].Factors.Semantic)
	assert.GreaterOrEqual(t, ranked[0].Factors.NameSimilarity, 0.9, "semantic name similarity joins the max")
}

func TestRank_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lookup := &MockLookup{}
	_, err := newTestEngine(lookup).Rank(ctx, RankRequest{
		Candidates: []model.IdentifierCandidate{{Identifier: "a"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, lookup.Calls)
}

func TestRank_Empty(t *testing.T) {
	ranked, err := newTestEngine(nil).Rank(context.Background(), RankRequest{})
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestBest(t *testing.T) {
	lookup := &MockLookup{Profiles: map[string]model.ExternalProfile{
		"good": {ExtractedNames: []string{"Ivan Petrov"}, HIndex: intPtr(30), LastActivity: timePtr(now)},
	}}
	e := newTestEngine(lookup)

	best, ok, err := e.Best(context.Background(), RankRequest{
		Hints:      model.TargetHints{Name: "Ivan Petrov"},
		Candidates: []model.IdentifierCandidate{{Identifier: "good", SourceURL: "https://orcid.org/good"}},
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "good", best.Identifier)

	_, ok, err = e.Best(context.Background(), RankRequest{
		Candidates: []model.IdentifierCandidate{{Identifier: "weak", SearchPosition: 99}},
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func ids(ranked []model.RankingCandidate) []string {
	out := make([]string, len(ranked))
	for i, rc := range ranked {
		out[i] = rc.Identifier
	}
	return out
}
