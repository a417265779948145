package profile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/logging"
	"github.com/agenthands/idresolve/internal/metrics"
)

// Recommendation codes.
const (
	RecMissingField         = "missing_field"
	RecLowConfidence        = "low_confidence"
	RecConflicts            = "conflicting_data"
	RecInconsistentNameAddr = "inconsistent_name_address"
	RecInconsistentOrgRole  = "inconsistent_organization_role"
)

const (
	lowConfidenceThreshold = 0.5
	coveredMinConfidence   = 0.3
)

type Builder struct {
	Logger *zap.Logger
}

func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{Logger: logging.OrNop(logger)}
}

// Build assembles the profile of one run. Fields without a result resolve to
// the zero ResolvedField.
func (b *Builder) Build(runID, targetAddress string, results map[model.FieldType]model.VerificationResult, checks map[string]model.ConsistencyCheck) model.Profile {
	p := model.Profile{
		RunID:             runID,
		TargetAddress:     targetAddress,
		Fields:            make(map[model.FieldType]model.ResolvedField, len(model.Fields)),
		ConsistencyChecks: make(map[string]model.ConsistencyCheck, len(checks)),
		Verification:      make(map[model.FieldType]model.VerificationResult, len(results)),
		Recommendations:   []model.Recommendation{},
	}
	for _, f := range model.Fields {
		res, ok := results[f]
		if !ok {
			p.Fields[f] = model.ResolvedField{}
			continue
		}
		p.Verification[f] = res
		p.Fields[f] = model.ResolvedField{
			Value:        res.VerifiedValue,
			Confidence:   model.Clamp01(res.Confidence),
			SourceCount:  len(res.SupportingSources),
			HasConflicts: len(res.ConflictingClusters) > 0,
		}
	}
	for k, c := range checks {
		p.ConsistencyChecks[k] = c
	}
	p.Quality = Quality(p.Fields, checks)
	p.Recommendations = Recommendations(p.Fields, checks)

	metrics.ProfileQuality.Observe(p.Quality.OverallQuality)
	b.logger().Debug("profile built",
		zap.String("run_id", runID),
		zap.Float64("overall_quality", p.Quality.OverallQuality),
		zap.Int("recommendations", len(p.Recommendations)))
	return p
}

// Quality computes the profile quality metrics:
// average confidence of resolved fields, share of fields above 0.3, share of
// consistent checks, and 0.4·avg + 0.3·coverage + 0.3·consistency.
func Quality(fields map[model.FieldType]model.ResolvedField, checks map[string]model.ConsistencyCheck) model.QualityMetrics {
	var q model.QualityMetrics
	var sum float64
	resolved, covered := 0, 0
	for _, f := range model.Fields {
		c := fields[f].Confidence
		if c > 0 {
			sum += c
			resolved++
		}
		if c > coveredMinConfidence {
			covered++
		}
	}
	if resolved > 0 {
		q.AverageConfidence = sum / float64(resolved)
	}
	q.DataCoverage = float64(covered) / float64(len(model.Fields))

	consistent, performed := 0, 0
	for _, key := range []string{model.CheckNameAddress, model.CheckOrganizationRole} {
		c, ok := checks[key]
		if !ok {
			continue
		}
		performed++
		if c.IsConsistent {
			consistent++
		}
	}
	if performed > 0 {
		q.ConsistencyScore = float64(consistent) / float64(performed)
	}
	q.OverallQuality = model.Clamp01(0.4*q.AverageConfidence + 0.3*q.DataCoverage + 0.3*q.ConsistencyScore)
	return q
}

// Recommendations applies the fixed rules in field order: a missing field, or
// else low confidence, or else conflicting data; then one entry per
// inconsistent cross-field check.
func Recommendations(fields map[model.FieldType]model.ResolvedField, checks map[string]model.ConsistencyCheck) []model.Recommendation {
	recs := []model.Recommendation{}
	for _, f := range model.Fields {
		rf := fields[f]
		switch {
		case rf.Value == "":
			recs = append(recs, model.Recommendation{
				Code:    RecMissingField,
				Field:   f,
				Message: fmt.Sprintf("no verified %s found, search additional sources", f),
			})
		case rf.Confidence < lowConfidenceThreshold:
			recs = append(recs, model.Recommendation{
				Code:    RecLowConfidence,
				Field:   f,
				Message: fmt.Sprintf("low confidence for %s (%.2f), verify manually", f, rf.Confidence),
			})
		case rf.HasConflicts:
			recs = append(recs, model.Recommendation{
				Code:    RecConflicts,
				Field:   f,
				Message: fmt.Sprintf("conflicting values found for %s, review alternatives", f),
			})
		}
	}
	if c, ok := checks[model.CheckNameAddress]; ok && !c.IsConsistent {
		recs = append(recs, model.Recommendation{
			Code:    RecInconsistentNameAddr,
			Message: "name and contact address do not match, the identity may be wrong",
		})
	}
	if c, ok := checks[model.CheckOrganizationRole]; ok && !c.IsConsistent {
		recs = append(recs, model.Recommendation{
			Code:    RecInconsistentOrgRole,
			Message: "organization and position may not belong together",
		})
	}
	return recs
}

func (b *Builder) logger() *zap.Logger {
	return logging.OrNop(b.Logger)
}
