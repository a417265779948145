package model

import "time"

type ContextTag string

const (
	ContextAcademic  ContextTag = "academic"
	ContextCorporate ContextTag = "corporate"
	ContextPersonal  ContextTag = "personal"
)

// TargetHints describe the identity being resolved.
type TargetHints struct {
	Name           string     `json:"name,omitempty"`
	ContactAddress string     `json:"contact_address,omitempty"`
	Context        ContextTag `json:"context_tag,omitempty"`
}

// Factor names, in relevance-sum order.
const (
	FactorPosition       = "position"
	FactorURLQuality     = "url_quality"
	FactorNameSimilarity = "name_similarity"
	FactorDomainQuality  = "domain_quality"
	FactorDomainAffinity = "domain_affinity"
	FactorTemporal       = "temporal"
	FactorNetwork        = "network"
	FactorCitation       = "citation"
	FactorSemantic       = "semantic"
)

var Factors = []string{
	FactorPosition, FactorURLQuality, FactorNameSimilarity, FactorDomainQuality,
	FactorDomainAffinity, FactorTemporal, FactorNetwork, FactorCitation, FactorSemantic,
}

// FactorScores holds the nine ranking factors, each in [0,1].
type FactorScores struct {
	Position       float64 `json:"position"`
	URLQuality     float64 `json:"url_quality"`
	NameSimilarity float64 `json:"name_similarity"`
	DomainQuality  float64 `json:"domain_quality"`
	DomainAffinity float64 `json:"domain_affinity"`
	Temporal       float64 `json:"temporal"`
	Network        float64 `json:"network"`
	Citation       float64 `json:"citation"`
	Semantic       float64 `json:"semantic"`
}

// Get returns the factor by name; unknown names yield 0.
func (f FactorScores) Get(name string) float64 {
	switch name {
	case FactorPosition:
		return f.Position
	case FactorURLQuality:
		return f.URLQuality
	case FactorNameSimilarity:
		return f.NameSimilarity
	case FactorDomainQuality:
		return f.DomainQuality
	case FactorDomainAffinity:
		return f.DomainAffinity
	case FactorTemporal:
		return f.Temporal
	case FactorNetwork:
		return f.Network
	case FactorCitation:
		return f.Citation
	case FactorSemantic:
		return f.Semantic
	}
	return 0
}

type ConfidenceLevel string

const (
	LevelVeryLow  ConfidenceLevel = "very_low"
	LevelLow      ConfidenceLevel = "low"
	LevelMedium   ConfidenceLevel = "medium"
	LevelHigh     ConfidenceLevel = "high"
	LevelVeryHigh ConfidenceLevel = "very_high"
)

// LevelFor maps a relevance score to its band. Boundaries belong to the
// higher band.
func LevelFor(score float64) ConfidenceLevel {
	switch {
	case score >= 0.8:
		return LevelVeryHigh
	case score >= 0.65:
		return LevelHigh
	case score >= 0.5:
		return LevelMedium
	case score >= 0.3:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

// IdentifierCandidate is one external identifier found by upstream search.
type IdentifierCandidate struct {
	Identifier     string `json:"identifier"`
	SourceURL      string `json:"source_url"`
	SearchPosition int    `json:"search_position"`
}

// ExternalProfile is what an identifier registry returns for a candidate.
type ExternalProfile struct {
	ExtractedNames   []string   `json:"extracted_names"`
	PublicationCount int        `json:"publication_count"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
	ResearchAreas    []string   `json:"research_areas,omitempty"`
	HIndex           *int       `json:"h_index,omitempty"`
}

// RankingCandidate is a scored identifier candidate.
type RankingCandidate struct {
	Identifier            string          `json:"identifier"`
	SourceURL             string          `json:"source_url"`
	SearchPosition        int             `json:"search_position"`
	Factors               FactorScores    `json:"factor_scores"`
	RelevanceScore        float64         `json:"relevance_score"`
	ConfidenceLevel       ConfidenceLevel `json:"confidence_level"`
	ExtractedNameVariants []string        `json:"extracted_name_variants,omitempty"`
	PublicationCount      int             `json:"publication_count"`
	HIndex                *int            `json:"h_index,omitempty"`
	LastActivity          *time.Time      `json:"last_activity,omitempty"`
	ResearchAreas         []string        `json:"research_areas,omitempty"`
	Enriched              bool            `json:"enriched"`
}
