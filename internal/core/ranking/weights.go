package ranking

import (
	"github.com/agenthands/idresolve/internal/config"
	"github.com/agenthands/idresolve/internal/core/model"
)

// Weights maps factor names to their share of the relevance score.
type Weights map[string]float64

// BaseWeights returns the default weight vector. It sums to 1.
func BaseWeights() Weights {
	return Weights{
		model.FactorPosition:       0.10,
		model.FactorURLQuality:     0.15,
		model.FactorNameSimilarity: 0.40,
		model.FactorDomainQuality:  0.10,
		model.FactorDomainAffinity: 0.06,
		model.FactorTemporal:       0.06,
		model.FactorNetwork:        0.05,
		model.FactorCitation:       0.05,
		model.FactorSemantic:       0.03,
	}
}

// ContextModifiers returns the per-context weight multipliers.
func ContextModifiers() map[model.ContextTag]Weights {
	return map[model.ContextTag]Weights{
		model.ContextAcademic: {
			model.FactorNameSimilarity: 1.3,
			model.FactorCitation:       1.8,
			model.FactorTemporal:       1.4,
		},
		model.ContextCorporate: {
			model.FactorDomainAffinity: 1.5,
			model.FactorURLQuality:     1.3,
		},
		model.ContextPersonal: {
			model.FactorNameSimilarity: 1.6,
			model.FactorSemantic:       1.4,
		},
	}
}

// Sum adds all weights of known factors.
func (w Weights) Sum() float64 {
	total := 0.0
	for _, f := range model.Factors {
		total += w[f]
	}
	return total
}

// Normalized scales the weights of known factors to sum to 1. Unknown factor
// names are dropped. A zero vector yields BaseWeights.
func (w Weights) Normalized() Weights {
	total := w.Sum()
	if total <= 0 {
		return BaseWeights()
	}
	out := make(Weights, len(model.Factors))
	for _, f := range model.Factors {
		out[f] = max(0, w[f]) / total
	}
	return out
}

// Adapt multiplies the base weights by the modifiers of tag and renormalizes.
// An unknown or empty tag yields the normalized base weights.
func Adapt(base Weights, modifiers map[model.ContextTag]Weights, tag model.ContextTag) Weights {
	out := make(Weights, len(model.Factors))
	for _, f := range model.Factors {
		out[f] = base[f]
	}
	for f, m := range modifiers[tag] {
		if _, ok := out[f]; ok {
			out[f] *= m
		}
	}
	return out.Normalized()
}

// Relevance is the weighted sum of the factor scores.
func (w Weights) Relevance(scores model.FactorScores) float64 {
	total := 0.0
	for _, f := range model.Factors {
		total += scores.Get(f) * w[f]
	}
	return model.Clamp01(total)
}

// WeightsFromConfig overlays configured weights and context modifiers on the
// built-in tables.
func WeightsFromConfig(cfg config.RankingConfig) (Weights, map[model.ContextTag]Weights) {
	base := BaseWeights()
	for f, v := range cfg.Weights {
		if _, ok := base[f]; ok {
			base[f] = v
		}
	}
	mods := ContextModifiers()
	for tag, m := range cfg.Contexts {
		ct := model.ContextTag(tag)
		if mods[ct] == nil {
			mods[ct] = Weights{}
		}
		for f, v := range m {
			mods[ct][f] = v
		}
	}
	return base.Normalized(), mods
}
