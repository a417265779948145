// Package ranking scores external identifier candidates against a target
// identity.
//
// Each candidate gets nine factor scores in [0,1]:
//
//	position         max(0, 1 - ln(pos+1)/ln(101))
//	url_quality      +0.8 registry link, +0.1 https, +0.1 few query parameters
//	name_similarity  best name score over extracted x potential owner names
//	domain_quality   1 scientific platform, 0.8 academic, 0.6 .org/.gov, else 0.3
//	domain_affinity  1 same host, 0.7 subdomain, 0.5 same root, else 0
//	temporal         freshness buckets 30/90/365/1095 days, unknown 0.5
//	network          0.7 degree + 0.3 betweenness, unknown 0.5
//	citation         0.7 min(1, h/50) + 0.3 min(1, pubs/100)
//	semantic         research areas vs domain context, unavailable 0.5
//
// The relevance score is their weighted sum under context-adapted weights.
package ranking

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/idresolve/internal/core/enrich"
	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/core/network"
	"github.com/agenthands/idresolve/internal/core/semantic"
	"github.com/agenthands/idresolve/internal/core/textsim"
	"github.com/agenthands/idresolve/internal/logging"
	"github.com/agenthands/idresolve/internal/metrics"
)

// DefaultGroupGap separates score groups during post-processing.
const DefaultGroupGap = 0.05

// RankRequest is one ranking run.
type RankRequest struct {
	Hints      model.TargetHints
	Candidates []model.IdentifierCandidate
	// Network is the co-occurrence graph around the candidates; nil scores
	// every candidate neutral.
	Network *network.Graph
}

type Engine struct {
	Weights   Weights
	Modifiers map[model.ContextTag]Weights
	GroupGap  float64
	Enricher  *enrich.Enricher
	Semantic  semantic.Similarity
	Phraser   *semantic.ContextPhraser
	Logger    *zap.Logger
	Now       func() time.Time
}

func NewEngine(enricher *enrich.Enricher, sim semantic.Similarity, logger *zap.Logger) *Engine {
	if sim == nil {
		sim = semantic.Neutral{}
	}
	return &Engine{
		Weights:   BaseWeights(),
		Modifiers: ContextModifiers(),
		GroupGap:  DefaultGroupGap,
		Enricher:  enricher,
		Semantic:  sim,
		Phraser:   semantic.NewContextPhraser(nil, logger),
		Logger:    logging.OrNop(logger),
		Now:       time.Now,
	}
}

// Rank scores and orders the candidates. Enrichment failures never drop a
// candidate. The context error is returned if ctx is cancelled between
// candidates.
func (e *Engine) Rank(ctx context.Context, req RankRequest) ([]model.RankingCandidate, error) {
	logger := logging.OrNop(e.Logger).With(zap.String("context", string(req.Hints.Context)))
	tag := string(req.Hints.Context)

	// 1. Collect and enrich
	ranked := make([]model.RankingCandidate, 0, len(req.Candidates))
	profiles := make([]*model.ExternalProfile, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if err := ctx.Err(); err != nil {
			metrics.RankingRuns.WithLabelValues(tag, "cancelled").Inc()
			return nil, err
		}
		rc := model.RankingCandidate{
			Identifier:     c.Identifier,
			SourceURL:      c.SourceURL,
			SearchPosition: c.SearchPosition,
		}
		p, err := e.Enricher.Enrich(ctx, c.Identifier)
		if err == nil {
			rc.Enriched = true
			rc.ExtractedNameVariants = p.ExtractedNames
			rc.PublicationCount = p.PublicationCount
			rc.HIndex = p.HIndex
			rc.LastActivity = p.LastActivity
			rc.ResearchAreas = p.ResearchAreas
		}
		ranked = append(ranked, rc)
		profiles = append(profiles, p)
	}

	// 2. Adapt weights
	weights := Adapt(e.baseWeights(), e.Modifiers, req.Hints.Context)

	// 3. Score
	run := e.newRun(req)
	for i := range ranked {
		if err := ctx.Err(); err != nil {
			metrics.RankingRuns.WithLabelValues(tag, "cancelled").Inc()
			return nil, err
		}
		ranked[i].Factors = run.score(ctx, ranked[i], profiles[i] != nil)
		ranked[i].RelevanceScore = weights.Relevance(ranked[i].Factors)
		ranked[i].ConfidenceLevel = model.LevelFor(ranked[i].RelevanceScore)
		logger.Debug("candidate scored",
			zap.String("identifier", ranked[i].Identifier),
			zap.Float64("relevance", ranked[i].RelevanceScore),
			zap.String("level", string(ranked[i].ConfidenceLevel)))
	}

	// 4. Post-process
	ApplyContextRules(ranked, req.Hints.Context)
	SortAndGroup(ranked, e.groupGap())

	e.checkTop(logger, ranked)
	metrics.RankingRuns.WithLabelValues(tag, "ok").Inc()
	return ranked, nil
}

// Best returns the top identifier of a run, or false when there is none or
// its confidence is very low.
func (e *Engine) Best(ctx context.Context, req RankRequest) (model.RankingCandidate, bool, error) {
	ranked, err := e.Rank(ctx, req)
	if err != nil {
		return model.RankingCandidate{}, false, err
	}
	if len(ranked) == 0 || ranked[0].ConfidenceLevel == model.LevelVeryLow {
		return model.RankingCandidate{}, false, nil
	}
	return ranked[0], true, nil
}

// ApplyContextRules boosts candidates that fit the context tag, clamps the
// result to 1 and reclassifies them.
func ApplyContextRules(ranked []model.RankingCandidate, tag model.ContextTag) {
	for i := range ranked {
		f := ranked[i].Factors
		boost := 1.0
		switch tag {
		case model.ContextAcademic:
			if ranked[i].HIndex != nil && *ranked[i].HIndex > 20 && f.Temporal > 0.7 {
				boost = 1.1
			}
		case model.ContextCorporate:
			if f.DomainAffinity > 0.7 {
				boost = 1.15
			}
		case model.ContextPersonal:
			if f.NameSimilarity > 0.8 {
				boost = 1.2
			}
		}
		if boost != 1 {
			ranked[i].RelevanceScore = model.Clamp01(ranked[i].RelevanceScore * boost)
			ranked[i].ConfidenceLevel = model.LevelFor(ranked[i].RelevanceScore)
		}
	}
}

// SortAndGroup orders candidates by relevance, then re-sorts each run of
// near-equal scores (adjacent gap below gap) by name similarity, citation and
// temporal scores. Identifier breaks any remaining tie.
func SortAndGroup(ranked []model.RankingCandidate, gap float64) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RelevanceScore != ranked[j].RelevanceScore {
			return ranked[i].RelevanceScore > ranked[j].RelevanceScore
		}
		return ranked[i].Identifier < ranked[j].Identifier
	})

	start := 0
	for i := 1; i <= len(ranked); i++ {
		if i < len(ranked) && sameGroup(ranked[i-1].RelevanceScore, ranked[i].RelevanceScore, gap) {
			continue
		}
		if i-start > 1 {
			tieBreak(ranked[start:i])
		}
		start = i
	}
}

// gapEpsilon absorbs float error so that 0.35 and 0.30 sit a full 0.05 apart.
const gapEpsilon = 1e-9

func sameGroup(higher, lower, gap float64) bool {
	return gap-(higher-lower) > gapEpsilon
}

func tieBreak(group []model.RankingCandidate) {
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i].Factors, group[j].Factors
		switch {
		case a.NameSimilarity != b.NameSimilarity:
			return a.NameSimilarity > b.NameSimilarity
		case a.Citation != b.Citation:
			return a.Citation > b.Citation
		case a.Temporal != b.Temporal:
			return a.Temporal > b.Temporal
		case group[i].RelevanceScore != group[j].RelevanceScore:
			return group[i].RelevanceScore > group[j].RelevanceScore
		}
		return group[i].Identifier < group[j].Identifier
	})
}

func (e *Engine) checkTop(logger *zap.Logger, ranked []model.RankingCandidate) {
	if len(ranked) == 0 {
		logger.Info("no candidates to rank")
		return
	}
	top := ranked[0]
	metrics.TopRelevance.Observe(top.RelevanceScore)
	if top.ConfidenceLevel == model.LevelVeryLow || top.ConfidenceLevel == model.LevelLow {
		logger.Warn("top candidate has low confidence",
			zap.String("identifier", top.Identifier),
			zap.Float64("relevance", top.RelevanceScore))
	}
	if len(ranked) > 1 && top.RelevanceScore-ranked[1].RelevanceScore > 0.3 {
		logger.Info("clear leader",
			zap.String("identifier", top.Identifier),
			zap.Float64("gap", top.RelevanceScore-ranked[1].RelevanceScore))
	}
}

func (e *Engine) baseWeights() Weights {
	if len(e.Weights) == 0 {
		return BaseWeights()
	}
	return e.Weights
}

func (e *Engine) groupGap() float64 {
	if e.GroupGap <= 0 {
		return DefaultGroupGap
	}
	return e.GroupGap
}

// scoringRun holds the per-request inputs shared by all candidates.
type scoringRun struct {
	engine         *Engine
	hints          model.TargetHints
	potentialNames []string
	graph          *network.Graph
	now            time.Time

	phrase     string
	phraseDone bool
}

func (e *Engine) newRun(req RankRequest) *scoringRun {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	return &scoringRun{
		engine:         e,
		hints:          req.Hints,
		potentialNames: PotentialNames(req.Hints.Name, req.Hints.ContactAddress),
		graph:          req.Network,
		now:            now,
	}
}

func (r *scoringRun) score(ctx context.Context, c model.RankingCandidate, enriched bool) model.FactorScores {
	f := model.FactorScores{
		Position:       PositionScore(c.SearchPosition),
		URLQuality:     URLQualityScore(c.SourceURL),
		NameSimilarity: r.nameSimilarity(ctx, c.ExtractedNameVariants),
		DomainQuality:  DomainQualityScore(c.SourceURL),
		DomainAffinity: DomainAffinityScore(c.SourceURL, r.hints.ContactAddress),
		Network:        r.graph.Score(c.Identifier),
		Temporal:       NeutralScore,
		Citation:       NeutralScore,
		Semantic:       NeutralScore,
	}
	if enriched {
		f.Temporal = TemporalScore(c.LastActivity, r.now)
		f.Citation = CitationScore(c.HIndex, c.PublicationCount)
		f.Semantic = r.semanticScore(ctx, c.ResearchAreas)
	}
	return f
}

func (r *scoringRun) nameSimilarity(ctx context.Context, extracted []string) float64 {
	best := 0.0
	for _, ext := range extracted {
		for _, pot := range r.potentialNames {
			best = max(best, textsim.NameScore(ext, pot))
			if s, ok := r.semantic().Similarity(ctx, ext, pot); ok {
				best = max(best, s)
			}
		}
	}
	return model.Clamp01(best)
}

func (r *scoringRun) semanticScore(ctx context.Context, areas []string) float64 {
	if len(areas) == 0 {
		return NeutralScore
	}
	phrase := r.contextPhrase(ctx)
	s, ok := r.semantic().Similarity(ctx, strings.Join(areas, " "), phrase)
	if !ok {
		return NeutralScore
	}
	return model.Clamp01(s)
}

func (r *scoringRun) contextPhrase(ctx context.Context) string {
	if !r.phraseDone {
		r.phrase = r.engine.Phraser.Phrase(ctx, textsim.Domain(r.hints.ContactAddress))
		r.phraseDone = true
	}
	return r.phrase
}

func (r *scoringRun) semantic() semantic.Similarity {
	if r.engine.Semantic == nil {
		return semantic.Neutral{}
	}
	return r.engine.Semantic
}
