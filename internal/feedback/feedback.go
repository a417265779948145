// Package feedback stores corrections to ranking runs and reports running
// accuracy. Entries are append-only; weights are never adjusted from them.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/idresolve/internal/config"
	"github.com/agenthands/idresolve/internal/core/model"
	"github.com/agenthands/idresolve/internal/metrics"
)

var ErrInvalid = errors.New("invalid feedback")

type Repository interface {
	Record(ctx context.Context, fb model.Feedback) error
	Stats(ctx context.Context) (model.FeedbackStats, error)
}

// Prepare validates an entry and fills in its ID and timestamp.
func Prepare(fb model.Feedback, now time.Time) (model.Feedback, error) {
	if fb.SelectedID == "" || fb.CorrectID == "" {
		return fb, fmt.Errorf("%w: selected and correct identifiers are required", ErrInvalid)
	}
	if !(fb.ReporterConfidence >= 0 && fb.ReporterConfidence <= 1) {
		return fb, fmt.Errorf("%w: reporter confidence %.2f outside [0,1]", ErrInvalid, fb.ReporterConfidence)
	}
	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	if fb.RecordedAt.IsZero() {
		fb.RecordedAt = now.UTC()
	}
	return fb, nil
}

func observe(fb model.Feedback) {
	metrics.FeedbackRecorded.WithLabelValues(fmt.Sprintf("%t", fb.Correct())).Inc()
}

// MemoryRepository keeps feedback for the life of the process.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []model.Feedback
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Record(ctx context.Context, fb model.Feedback) error {
	fb, err := Prepare(fb, time.Now())
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.entries = append(r.entries, fb)
	r.mu.Unlock()
	observe(fb)
	return nil
}

func (r *MemoryRepository) Stats(ctx context.Context) (model.FeedbackStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats model.FeedbackStats
	sumConf := 0.0
	for _, fb := range r.entries {
		stats.Total++
		if fb.Correct() {
			stats.Correct++
		}
		sumConf += fb.ReporterConfidence
	}
	if stats.Total > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Total)
		stats.MeanConfidence = sumConf / float64(stats.Total)
	}
	return stats, nil
}

// Open returns the repository selected by the configured driver. The returned
// close function is never nil.
func Open(cfg config.FeedbackConfig) (Repository, func() error, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryRepository(), func() error { return nil }, nil
	case "sqlite":
		repo, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, func() error { return nil }, err
		}
		return repo, repo.Close, nil
	}
	return nil, func() error { return nil }, fmt.Errorf("unknown feedback driver: %s", cfg.Driver)
}
