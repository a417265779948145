package verify

import (
	"github.com/agenthands/idresolve/internal/core/model"
)

// Selection is the outcome of choosing one cluster for a field.
type Selection struct {
	Accepted   *model.Cluster
	Confidence float64
	Conflicts  []model.Conflict
}

// Select walks clusters in their sorted order and accepts the first one that
// has enough distinct sources and whose weighted confidence reaches
// MinConfidence. Every other non-empty cluster is reported as a conflict.
func Select(clusters []model.Cluster, rule FieldRule) Selection {
	var sel Selection
	acceptedIdx := -1
	for i := range clusters {
		cl := clusters[i]
		if cl.Size() == 0 || cl.DistinctSources() < rule.MinSources {
			continue
		}
		if WeightedConfidence(cl, rule) >= MinConfidence {
			acceptedIdx = i
			sel.Accepted = &clusters[i]
			sel.Confidence = ClusterConfidence(cl, rule)
			break
		}
	}

	for i, cl := range clusters {
		if i == acceptedIdx || cl.Size() == 0 {
			continue
		}
		severity := 1.0
		if sel.Accepted != nil {
			severity = model.Clamp01(float64(cl.Size()) / float64(sel.Accepted.Size()))
		}
		sel.Conflicts = append(sel.Conflicts, model.Conflict{
			Value:       cl.Consensus(),
			SourceCount: cl.DistinctSources(),
			Severity:    severity,
			Sources:     cl.Sources(),
		})
	}
	return sel
}

// WeightedConfidence is Σ(confidence·weight(source type)) / Σweight.
func WeightedConfidence(cl model.Cluster, rule FieldRule) float64 {
	var sum, total float64
	for _, m := range cl.Members {
		w := rule.Weight(m.SourceType())
		sum += m.Confidence() * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return model.Clamp01(sum / total)
}

// ClusterConfidence adds the source-diversity and high-trust bonuses to the
// weighted confidence.
func ClusterConfidence(cl model.Cluster, rule FieldRule) float64 {
	base := WeightedConfidence(cl, rule)

	extra := cl.DistinctSources() - 1
	sourceBonus := min(0.2, 0.05*float64(max(0, extra)))

	trusted := 0
	for _, m := range cl.Members {
		if m.SourceType().HighTrust() {
			trusted++
		}
	}
	qualityBonus := min(0.1, 0.02*float64(trusted))

	return model.Clamp01(base + sourceBonus + qualityBonus)
}
