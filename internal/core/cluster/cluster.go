package cluster

import (
	"sort"

	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/core/textsim"
)

// Clusterer groups near-duplicate candidate values of one field.
type Clusterer interface {
	Cluster(values []model.CandidateValue, threshold float64) []model.Cluster
}

// DefaultThresholds are the per-field similarity thresholds on the 0..100 scale.
var DefaultThresholds = map[model.FieldType]float64{
	model.FieldName:           90,
	model.FieldOrganization:   85,
	model.FieldPosition:       80,
	model.FieldContactAddress: 95,
}

// SimilarityFunc scores two values on the 0..100 scale.
type SimilarityFunc func(a, b string) float64

// SeedClusterer implements greedy single-link clustering around seeds.
//
// Values are visited in input order. Each value not yet clustered opens a
// cluster and absorbs every later unclustered value whose similarity to the
// seed reaches the threshold. Membership is decided against the seed only,
// so this is not a transitive closure: two members may be dissimilar to each
// other. Callers must keep input order stable to get stable clusters.
type SeedClusterer struct {
	Similarity SimilarityFunc
}

func NewSeedClusterer() *SeedClusterer {
	return &SeedClusterer{Similarity: textsim.Similarity}
}

func (c *SeedClusterer) Cluster(values []model.CandidateValue, threshold float64) []model.Cluster {
	if len(values) == 0 {
		return nil
	}
	sim := c.Similarity
	if sim == nil {
		sim = textsim.Similarity
	}

	// 1. Normalize once per value
	keys := make([]string, len(values))
	for i, v := range values {
		keys[i] = textsim.Normalize(string(v.Field()), v.Value())
	}

	// 2. Seed and absorb
	clustered := make([]bool, len(values))
	var clusters []model.Cluster
	for i, seed := range values {
		if clustered[i] {
			continue
		}
		clustered[i] = true
		cl := model.Cluster{Field: seed.Field(), Members: []model.CandidateValue{seed}}
		for j := i + 1; j < len(values); j++ {
			if clustered[j] {
				continue
			}
			if sim(keys[i], keys[j]) >= threshold {
				clustered[j] = true
				cl.Members = append(cl.Members, values[j])
			}
		}
		clusters = append(clusters, cl)
	}

	// 3. Rank: bigger first, then more confident. Stable keeps seed order on ties.
	sort.SliceStable(clusters, func(a, b int) bool {
		if clusters[a].Size() != clusters[b].Size() {
			return clusters[a].Size() > clusters[b].Size()
		}
		return clusters[a].MeanConfidence() > clusters[b].MeanConfidence()
	})
	return clusters
}

// ThresholdFor returns the default threshold of a field, 85 for unknown fields.
func ThresholdFor(field model.FieldType) float64 {
	if t, ok := DefaultThresholds[field]; ok {
		return t
	}
	return 85
}
