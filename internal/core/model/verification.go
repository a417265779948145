package model

import "sort"

// Cluster groups near-duplicate values of one field. Members keep input order,
// the seed first.
type Cluster struct {
	Field   FieldType        `json:"field"`
	Members []CandidateValue `json:"-"`
}

// Size is the number of members.
func (c Cluster) Size() int { return len(c.Members) }

// MeanConfidence is the average overall confidence of the members.
func (c Cluster) MeanConfidence() float64 {
	if len(c.Members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range c.Members {
		sum += m.Confidence()
	}
	return sum / float64(len(c.Members))
}

// DistinctSources counts members with different source IDs.
func (c Cluster) DistinctSources() int {
	return len(c.Sources())
}

// Sources returns the distinct source IDs in first-seen order.
func (c Cluster) Sources() []string {
	seen := make(map[string]bool, len(c.Members))
	var out []string
	for _, m := range c.Members {
		if seen[m.SourceID()] {
			continue
		}
		seen[m.SourceID()] = true
		out = append(out, m.SourceID())
	}
	return out
}

// Consensus picks the plurality value. A value seen more than once wins;
// otherwise, or on a tie, the member with the highest confidence wins and
// input order decides between equal confidences.
func (c Cluster) Consensus() string {
	if len(c.Members) == 0 {
		return ""
	}
	counts := make(map[string]int, len(c.Members))
	best := make(map[string]float64, len(c.Members))
	var order []string
	for _, m := range c.Members {
		if _, ok := counts[m.Value()]; !ok {
			order = append(order, m.Value())
		}
		counts[m.Value()]++
		if m.Confidence() > best[m.Value()] {
			best[m.Value()] = m.Confidence()
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return best[order[i]] > best[order[j]]
	})
	return order[0]
}

// Conflict is a non-accepted cluster reported for information.
type Conflict struct {
	Value       string   `json:"value"`
	SourceCount int      `json:"source_count"`
	Severity    float64  `json:"severity"`
	Sources     []string `json:"sources,omitempty"`
}

const (
	MethodFuzzyClustering = "fuzzy_clustering"
	MethodNoData          = "no_data"
	MethodNoReliableData  = "no_reliable_data"
)

// VerificationResult is the outcome of resolving one field.
//
// Components are the values clustering produced. A cross-field consistency
// boost scales Confidence only and is recorded in ConsistencyBoost, so
// Confidence == Clamp01(Components.Overall() * ConsistencyBoost) when a boost
// was applied and Components.Overall() otherwise.
type VerificationResult struct {
	Field               FieldType            `json:"field"`
	VerifiedValue       string               `json:"verified_value"`
	Components          ConfidenceComponents `json:"confidence_components"`
	Confidence          float64              `json:"confidence"`
	ConsistencyBoost    float64              `json:"consistency_boost,omitempty"`
	SupportingSources   []string             `json:"supporting_sources"`
	ConflictingClusters []Conflict           `json:"conflicting_clusters"`
	Method              string               `json:"method"`
}

// Resolved reports whether a value was accepted.
func (r VerificationResult) Resolved() bool { return r.VerifiedValue != "" }

// HasCriticalConflicts reports a conflict with severity above 0.7.
func (r VerificationResult) HasCriticalConflicts() bool {
	for _, c := range r.ConflictingClusters {
		if c.Severity > 0.7 {
			return true
		}
	}
	return false
}

// ConsistencyCheck is the result of a cross-field check.
type ConsistencyCheck struct {
	IsConsistent   bool    `json:"is_consistent"`
	MatchedPattern string  `json:"matched_pattern,omitempty"`
	Similarity     float64 `json:"similarity,omitempty"`
	Method         string  `json:"method,omitempty"`
	Family         string  `json:"family,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

const (
	CheckNameAddress      = "name_contact_address"
	CheckOrganizationRole = "organization_position"
)

// ResolvedField is the externally visible view of one verified field.
type ResolvedField struct {
	Value        string  `json:"value"`
	Confidence   float64 `json:"confidence"`
	SourceCount  int     `json:"source_count"`
	HasConflicts bool    `json:"has_conflicts"`
}

type QualityMetrics struct {
	AverageConfidence float64 `json:"average_confidence"`
	DataCoverage      float64 `json:"data_coverage"`
	ConsistencyScore  float64 `json:"consistency_score"`
	OverallQuality    float64 `json:"overall_quality"`
}

type Recommendation struct {
	Code    string    `json:"code"`
	Field   FieldType `json:"field,omitempty"`
	Message string    `json:"message"`
}

// Profile is the verified identity profile of one run.
type Profile struct {
	RunID             string                           `json:"run_id"`
	TargetAddress     string                           `json:"target_contact_address,omitempty"`
	Fields            map[FieldType]ResolvedField      `json:"fields"`
	ConsistencyChecks map[string]ConsistencyCheck      `json:"consistency_checks"`
	Quality           QualityMetrics                   `json:"quality_metrics"`
	Recommendations   []Recommendation                 `json:"recommendations"`
	Verification      map[FieldType]VerificationResult `json:"-"`
}
