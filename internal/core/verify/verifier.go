package verify

import (
	"errors"

	"go.uber.org/zap"

	"github.com/agenthands/idresolve/internal/core/cluster"
	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/core/textsim"
	"github.com/agenthands/idresolve/internal/logging"
	"github.com/agenthands/idresolve/internal/metrics"
)

type Verifier struct {
	Clusterer cluster.Clusterer
	Rules     map[model.FieldType]FieldRule
	Logger    *zap.Logger
}

func NewVerifier(rules map[model.FieldType]FieldRule, logger *zap.Logger) *Verifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Verifier{
		Clusterer: cluster.NewSeedClusterer(),
		Rules:     rules,
		Logger:    logging.OrNop(logger),
	}
}

// Candidates turns raw extractions into validated candidate values grouped by
// field, preserving input order within each field. Values that fail
// validation are dropped and counted.
func (v *Verifier) Candidates(extractions []model.RawExtraction, targetAddress string) (map[model.FieldType][]model.CandidateValue, int) {
	out := make(map[model.FieldType][]model.CandidateValue)
	dropped := 0
	for _, ex := range extractions {
		value := textsim.Normalize(string(ex.FieldType), ex.Value)
		cv, err := model.NewCandidateValue(ex.FieldType, value, ex.SourceURL, ex.SourceType, Components(ex.FieldType, ex.Value, targetAddress))
		if err != nil {
			if errors.Is(err, model.ErrInvalidCandidate) {
				dropped++
				metrics.CandidatesDropped.WithLabelValues(string(ex.FieldType)).Inc()
				v.logger().Debug("dropping extraction", zap.String("source", ex.SourceURL), zap.Error(err))
			}
			continue
		}
		out[ex.FieldType] = append(out[ex.FieldType], cv.WithContext(ex.Context))
	}
	return out, dropped
}

// VerifyField clusters the values of one field and selects its verified value.
// No values yields method no_data; no qualifying cluster yields
// no_reliable_data. Neither is an error.
func (v *Verifier) VerifyField(field model.FieldType, values []model.CandidateValue) model.VerificationResult {
	res := model.VerificationResult{Field: field}
	if len(values) == 0 {
		res.Method = model.MethodNoData
		metrics.FieldsUnresolved.WithLabelValues(string(field), res.Method).Inc()
		return res
	}

	rule := v.rule(field)
	clusters := v.clusterer().Cluster(values, rule.Threshold)
	sel := Select(clusters, rule)
	res.ConflictingClusters = sel.Conflicts
	if sel.Accepted == nil {
		res.Method = model.MethodNoReliableData
		metrics.FieldsUnresolved.WithLabelValues(string(field), res.Method).Inc()
		v.logger().Debug("no reliable cluster",
			zap.String("field", string(field)),
			zap.Int("clusters", len(clusters)))
		return res
	}

	f := sel.Confidence
	res.VerifiedValue = sel.Accepted.Consensus()
	res.Components = model.ConfidenceComponents{
		Source:      f,
		Context:     f * 0.8,
		Validation:  f * 0.9,
		Consistency: f * 0.7,
	}
	res.Confidence = res.Components.Overall()
	res.SupportingSources = sel.Accepted.Sources()
	res.Method = model.MethodFuzzyClustering
	return res
}

// VerifyAll runs VerifyField for every known field.
func (v *Verifier) VerifyAll(values map[model.FieldType][]model.CandidateValue) map[model.FieldType]model.VerificationResult {
	out := make(map[model.FieldType]model.VerificationResult, len(model.Fields))
	for _, f := range model.Fields {
		out[f] = v.VerifyField(f, values[f])
	}
	return out
}

func (v *Verifier) rule(field model.FieldType) FieldRule {
	if r, ok := v.Rules[field]; ok {
		if r.Threshold == 0 {
			r.Threshold = cluster.ThresholdFor(field)
		}
		return r
	}
	if r, ok := DefaultRules()[field]; ok {
		return r
	}
	return FieldRule{MinSources: 1, Threshold: cluster.ThresholdFor(field), DefaultWeight: 0.5}
}

func (v *Verifier) clusterer() cluster.Clusterer {
	if v.Clusterer == nil {
		return cluster.NewSeedClusterer()
	}
	return v.Clusterer
}

func (v *Verifier) logger() *zap.Logger {
	return logging.OrNop(v.Logger)
}
