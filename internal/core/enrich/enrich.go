// Package enrich looks up external registry profiles for identifier
// candidates. Lookups are best effort: a failing candidate is reported to the
// caller and never aborts a batch.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/logging"
	"github.com/agenthands/idresolve/internal/metrics"
)

var ErrNotFound = errors.New("profile not found")

// ProfileLookup fetches the registry profile of one identifier.
type ProfileLookup interface {
	Lookup(ctx context.Context, id string) (*model.ExternalProfile, error)
}

// StaticLookup serves profiles from memory.
type StaticLookup struct {
	mu       sync.RWMutex
	profiles map[string]model.ExternalProfile
}

func NewStaticLookup(profiles map[string]model.ExternalProfile) *StaticLookup {
	s := &StaticLookup{profiles: make(map[string]model.ExternalProfile, len(profiles))}
	for id, p := range profiles {
		s.profiles[id] = p
	}
	return s
}

// LoadStaticLookup reads a JSON object of identifier to profile.
func LoadStaticLookup(path string) (*StaticLookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	var profiles map[string]model.ExternalProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}
	return NewStaticLookup(profiles), nil
}

func (s *StaticLookup) Put(id string, p model.ExternalProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = p
}

func (s *StaticLookup) Lookup(ctx context.Context, id string) (*model.ExternalProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return &p, nil
}

// Enricher guards a ProfileLookup so that errors and panics stay per
// candidate.
type Enricher struct {
	Lookup ProfileLookup
	Logger *zap.Logger
}

func NewEnricher(lookup ProfileLookup, logger *zap.Logger) *Enricher {
	return &Enricher{Lookup: lookup, Logger: logging.OrNop(logger)}
}

// Enrich returns the candidate's profile, or an error when none is available.
// A nil Enricher or lookup yields ErrNotFound without logging.
func (e *Enricher) Enrich(ctx context.Context, id string) (p *model.ExternalProfile, err error) {
	if e == nil || e.Lookup == nil {
		return nil, ErrNotFound
	}
	logger := logging.OrNop(e.Logger)

	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("profile lookup panicked: %v", r)
			metrics.EnrichmentFailures.WithLabelValues("panic").Inc()
			logger.Warn("profile lookup panicked", zap.String("identifier", id), zap.Any("panic", r))
		}
	}()

	p, err = e.Lookup.Lookup(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		metrics.EnrichmentFailures.WithLabelValues("not_found").Inc()
		logger.Debug("no profile for candidate", zap.String("identifier", id))
		return nil, err
	case err != nil:
		metrics.EnrichmentFailures.WithLabelValues("error").Inc()
		logger.Warn("profile lookup failed", zap.String("identifier", id), zap.Error(err))
		return nil, fmt.Errorf("failed to enrich %s: %w", id, err)
	case p == nil:
		metrics.EnrichmentFailures.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return p, nil
}
