package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agenthands/idresolve/internal/core"
	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/core/ranking"
	"github.com/agenthands/idresolve/internal/feedback"
	"github.com/agenthands/idresolve/internal/logging"
)

type Server struct {
	Resolver *core.Resolver
	Logger   *zap.Logger
}

func NewServer(resolver *core.Resolver, logger *zap.Logger) *Server {
	return &Server{Resolver: resolver, Logger: logging.OrNop(logger)}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/profiles/resolve", s.ResolveProfile)
	v1.POST("/candidates/rank", s.RankCandidates)
	v1.POST("/feedback", s.RecordFeedback)
	v1.GET("/feedback/stats", s.FeedbackStats)

	return r
}

type ResolveRequest struct {
	Target      model.TargetHints     `json:"target"`
	Extractions []model.RawExtraction `json:"extractions"`
}

func (s *Server) ResolveProfile(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	p, err := s.Resolver.ResolveProfile(c.Request.Context(), req.Extractions, req.Target)
	if err != nil {
		s.Logger.Warn("failed to resolve profile", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to resolve profile"})
		return
	}

	c.JSON(http.StatusOK, p)
}

type RankRequest struct {
	Target     model.TargetHints           `json:"target"`
	Candidates []model.IdentifierCandidate `json:"candidates"`
}

func (s *Server) RankCandidates(c *gin.Context) {
	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ranked, err := s.Resolver.RankCandidates(c.Request.Context(), ranking.RankRequest{
		Hints:      req.Target,
		Candidates: req.Candidates,
	})
	if err != nil {
		s.Logger.Warn("failed to rank candidates", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to rank candidates"})
		return
	}

	resp := gin.H{"candidates": ranked}
	if len(ranked) > 0 && ranked[0].ConfidenceLevel != model.LevelVeryLow {
		resp["best"] = ranked[0].Identifier
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) RecordFeedback(c *gin.Context) {
	var fb model.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := s.Resolver.RecordFeedback(c.Request.Context(), fb); err != nil {
		if errors.Is(err, feedback.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.Logger.Error("failed to record feedback", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}

func (s *Server) FeedbackStats(c *gin.Context) {
	stats, err := s.Resolver.FeedbackStats(c.Request.Context())
	if err != nil {
		s.Logger.Error("failed to read feedback stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read feedback stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
