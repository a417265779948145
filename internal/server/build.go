package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/agenthands/idresolve/internal/config"
	"github.com/agenthands/idresolve/internal/core"
	"github.com/agenthands/idresolve/internal/core/enrich"
	"github.com/agenthands/idresolve/internal/core/network"
	"github.com/agenthands/idresolve/internal/core/ranking"
	"github.com/agenthands/idresolve/internal/core/semantic"
	"github.com/agenthands/idresolve/internal/core/verify"
	"github.com/agenthands/idresolve/internal/driver"
	"github.com/agenthands/idresolve/internal/feedback"
	"github.com/agenthands/idresolve/internal/llm"
	"github.com/agenthands/idresolve/internal/logging"
)

// Build assembles a Server from configuration. Optional backends (LLM,
// Memgraph, profile fixtures) are only connected when configured. The
// returned cleanup releases everything that was opened.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, func(), error) {
	logger = logging.OrNop(logger)
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// 1. Optional LLM capabilities
	llmClient, embedder, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	if c, ok := llmClient.(interface{ Close() error }); ok {
		closers = append(closers, func() { _ = c.Close() })
	}
	var sim semantic.Similarity = semantic.Neutral{}
	if cfg.Semantic.Embeddings && embedder != nil {
		size := cfg.Semantic.CacheSize
		if size <= 0 {
			size = semantic.DefaultCacheSize
		}
		sim = semantic.NewEmbeddingSimilaritySize(embedder, size, logger)
	}

	// 2. Enrichment
	var lookup enrich.ProfileLookup
	if cfg.Enrichment.ProfilesPath != "" {
		static, err := enrich.LoadStaticLookup(cfg.Enrichment.ProfilesPath)
		if err != nil {
			return nil, cleanup, err
		}
		lookup = static
	}

	// 3. Ranking
	ranker := ranking.NewEngine(enrich.NewEnricher(lookup, logger), sim, logger)
	ranker.Weights, ranker.Modifiers = ranking.WeightsFromConfig(cfg.Ranking)
	if cfg.Ranking.GroupGap > 0 {
		ranker.GroupGap = cfg.Ranking.GroupGap
	}
	if cfg.Semantic.LLMContext && llmClient != nil {
		ranker.Phraser = semantic.NewContextPhraser(llmClient, logger)
	}

	// 4. Feedback
	repo, closeRepo, err := feedback.Open(cfg.Feedback)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, func() {
		if err := closeRepo(); err != nil {
			logger.Warn("failed to close feedback store", zap.Error(err))
		}
	})

	resolver := core.NewResolver(verify.NewVerifier(verify.RulesFromConfig(cfg.Verification), logger), ranker, repo, logger)

	// 5. Optional co-occurrence graph
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to connect to Memgraph: %w", err)
		}
		closers = append(closers, func() { _ = d.Close(context.Background()) })
		if err := d.BuildIndices(ctx); err != nil {
			logger.Warn("failed to build indices", zap.Error(err))
		}
		source := network.NewMemgraphSource(d)
		resolver.Network = source
		resolver.Recorder = source
	}

	return NewServer(resolver, logger), cleanup, nil
}
