// Package core wires verification, profile building, candidate ranking and
// feedback into a single request-scoped entry point.
package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/core/network"
	"github.com/agenthands/idresolve/internal/core/profile"
	"github.com/agenthands/idresolve/internal/core/ranking"
	"github.com/agenthands/idresolve/internal/core/verify"
	"github.com/agenthands/idresolve/internal/feedback"
	"github.com/agenthands/idresolve/internal/logging"
	"github.com/agenthands/idresolve/internal/metrics"
)

var ErrNoFeedbackStore = errors.New("feedback store not configured")

type Resolver struct {
	Verifier *verify.Verifier
	Builder  *profile.Builder
	Ranker   *ranking.Engine
	// Network loads the co-occurrence graph for ranking runs; nil leaves the
	// network factor neutral.
	Network network.Source
	// Recorder stores the co-occurrence of each ranked candidate set.
	Recorder network.Recorder
	Feedback feedback.Repository
	Logger   *zap.Logger
}

func NewResolver(verifier *verify.Verifier, ranker *ranking.Engine, repo feedback.Repository, logger *zap.Logger) *Resolver {
	logger = logging.OrNop(logger)
	return &Resolver{
		Verifier: verifier,
		Builder:  profile.NewBuilder(logger),
		Ranker:   ranker,
		Feedback: repo,
		Logger:   logger,
	}
}

// ResolveProfile turns raw extractions into a verified profile. Missing or
// invalid input never fails the run; only cancellation does.
func (r *Resolver) ResolveProfile(ctx context.Context, extractions []model.RawExtraction, hints model.TargetHints) (model.Profile, error) {
	runID := uuid.New().String()
	logger := r.logger().With(zap.String("run_id", runID))
	metrics.ProfileRuns.Inc()

	if err := ctx.Err(); err != nil {
		return model.Profile{}, err
	}

	// 1. Validate and normalize candidates
	values, dropped := r.Verifier.Candidates(extractions, hints.ContactAddress)
	logger.Info("resolving profile",
		zap.Int("extractions", len(extractions)),
		zap.Int("dropped", dropped))

	// 2. Cluster and select per field
	results := r.Verifier.VerifyAll(values)
	if err := ctx.Err(); err != nil {
		return model.Profile{}, err
	}

	// 3. Cross-field checks
	checks := make(map[string]model.ConsistencyCheck)
	name, hasName := results[model.FieldName]
	address, hasAddress := results[model.FieldContactAddress]
	if hasName && name.VerifiedValue != "" && (hints.ContactAddress != "" || (hasAddress && address.VerifiedValue != "")) {
		check := verify.CheckNameAddress(name.VerifiedValue, address.VerifiedValue, hints.ContactAddress)
		checks[model.CheckNameAddress] = check
		verify.ApplyConsistency(&name, &address, check)
		results[model.FieldName] = name
		if hasAddress {
			results[model.FieldContactAddress] = address
		}
	}
	org, role := results[model.FieldOrganization], results[model.FieldPosition]
	if org.VerifiedValue != "" && role.VerifiedValue != "" {
		checks[model.CheckOrganizationRole] = verify.CheckOrganizationRole(org.VerifiedValue, role.VerifiedValue)
	}

	// 4. Build
	p := r.builder().Build(runID, hints.ContactAddress, results, checks)
	logger.Info("profile resolved",
		zap.Float64("overall_quality", p.Quality.OverallQuality),
		zap.Int("recommendations", len(p.Recommendations)))
	return p, nil
}

// RankCandidates ranks identifier candidates, loading the co-occurrence graph
// when a network source is configured. Graph failures degrade to neutral
// network scores.
func (r *Resolver) RankCandidates(ctx context.Context, req ranking.RankRequest) ([]model.RankingCandidate, error) {
	runID := uuid.New().String()
	logger := r.logger().With(zap.String("run_id", runID))

	ids := make([]string, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		ids = append(ids, c.Identifier)
	}

	if req.Network == nil && r.Network != nil && len(ids) > 0 {
		g, err := r.Network.Load(ctx, ids)
		if err != nil {
			logger.Warn("failed to load co-occurrence graph", zap.Error(err))
		} else {
			req.Network = g
		}
	}

	ranked, err := r.Ranker.Rank(ctx, req)
	if err != nil {
		return nil, err
	}

	if r.Recorder != nil && len(ids) > 1 {
		if err := r.Recorder.Record(ctx, ids); err != nil {
			logger.Warn("failed to record co-occurrence", zap.Error(err))
		}
	}
	if len(ranked) > 0 {
		logger.Info("candidates ranked",
			zap.Int("candidates", len(ranked)),
			zap.String("top", ranked[0].Identifier),
			zap.Float64("top_relevance", ranked[0].RelevanceScore))
	}
	return ranked, nil
}

func (r *Resolver) RecordFeedback(ctx context.Context, fb model.Feedback) error {
	if r.Feedback == nil {
		return ErrNoFeedbackStore
	}
	if err := r.Feedback.Record(ctx, fb); err != nil {
		return err
	}
	r.logger().Info("feedback recorded",
		zap.String("selected", fb.SelectedID),
		zap.Bool("correct", fb.Correct()))
	return nil
}

func (r *Resolver) FeedbackStats(ctx context.Context) (model.FeedbackStats, error) {
	if r.Feedback == nil {
		return model.FeedbackStats{}, ErrNoFeedbackStore
	}
	return r.Feedback.Stats(ctx)
}

func (r *Resolver) builder() *profile.Builder {
	if r.Builder == nil {
		return profile.NewBuilder(r.Logger)
	}
	return r.Builder
}

func (r *Resolver) logger() *zap.Logger {
	return logging.OrNop(r.Logger)
}
