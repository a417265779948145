// Package verify resolves one value per profile field from clustered,
// source-attributed candidates and checks resolved fields against each other.
package verify

import (
	"github.com/agenthands/idresolve/internal/config"
	"github.com/agenthands/idresolve/internal/core/model"
)

// MinConfidence is the global floor a cluster's weighted confidence must reach.
const MinConfidence = 0.3

// FieldRule configures cluster selection for one field.
type FieldRule struct {
	MinSources    int                          `toml:"min_sources"`
	Threshold     float64                      `toml:"threshold"`
	SourceWeights map[model.SourceType]float64 `toml:"source_weights"`
	DefaultWeight float64                      `toml:"default_weight"`
}

// Weight returns the weight of a source type, DefaultWeight if unlisted.
func (r FieldRule) Weight(st model.SourceType) float64 {
	if w, ok := r.SourceWeights[st]; ok {
		return w
	}
	if r.DefaultWeight > 0 {
		return r.DefaultWeight
	}
	return 0.5
}

// DefaultRules returns a fresh copy of the built-in rule set.
func DefaultRules() map[model.FieldType]FieldRule {
	return map[model.FieldType]FieldRule{
		model.FieldName: {
			MinSources: 2,
			Threshold:  90,
			SourceWeights: map[model.SourceType]float64{
				model.SourceTitle:   1.0,
				model.SourceMeta:    0.9,
				model.SourceH1:      0.8,
				model.SourceJSONLD:  0.9,
				model.SourceContent: 0.5,
			},
			DefaultWeight: 0.5,
		},
		model.FieldContactAddress: {
			MinSources: 1,
			Threshold:  95,
			SourceWeights: map[model.SourceType]float64{
				model.SourceMeta:    1.0,
				model.SourceContent: 0.8,
				model.SourceJSONLD:  0.9,
			},
			DefaultWeight: 0.5,
		},
		model.FieldOrganization: {
			MinSources: 2,
			Threshold:  85,
			SourceWeights: map[model.SourceType]float64{
				model.SourceTitle:   0.9,
				model.SourceMeta:    1.0,
				model.SourceH1:      0.8,
				model.SourceJSONLD:  0.9,
				model.SourceContent: 0.6,
			},
			DefaultWeight: 0.5,
		},
		model.FieldPosition: {
			MinSources: 1,
			Threshold:  80,
			SourceWeights: map[model.SourceType]float64{
				model.SourceTitle:   0.8,
				model.SourceMeta:    0.9,
				model.SourceContent: 0.7,
				model.SourceJSONLD:  0.9,
			},
			DefaultWeight: 0.5,
		},
	}
}

// RulesFromConfig overlays configured field rules on DefaultRules. Zero values
// keep the defaults.
func RulesFromConfig(cfg config.VerificationConfig) map[model.FieldType]FieldRule {
	rules := DefaultRules()
	for field, fc := range map[model.FieldType]config.FieldRuleConfig{
		model.FieldName:           cfg.Name,
		model.FieldContactAddress: cfg.ContactAddress,
		model.FieldOrganization:   cfg.Organization,
		model.FieldPosition:       cfg.Position,
	} {
		r := rules[field]
		if fc.MinSources > 0 {
			r.MinSources = fc.MinSources
		}
		if fc.Threshold > 0 {
			r.Threshold = fc.Threshold
		}
		if fc.DefaultWeight > 0 {
			r.DefaultWeight = fc.DefaultWeight
		}
		for st, w := range fc.SourceWeights {
			r.SourceWeights[model.SourceType(st)] = w
		}
		rules[field] = r
	}
	return rules
}
