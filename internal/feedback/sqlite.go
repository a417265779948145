package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agenthands/idresolve/internal/core/model"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `CREATE TABLE IF NOT EXISTS feedback (
    id TEXT PRIMARY KEY,
    contact_address TEXT,
    selected_id TEXT NOT NULL,
    correct_id TEXT NOT NULL,
    reporter_confidence REAL NOT NULL,
    recorded_at TEXT NOT NULL
)`

// SQLiteRepository persists feedback in a single SQLite table. Each Record is
// one INSERT; Stats aggregates in SQL.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	if path == "" {
		return nil, errors.New("feedback sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure feedback dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// busy_timeout is per connection; one writer connection keeps it applied.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create feedback table: %w", err)
	}
	return &SQLiteRepository{db: db, path: path}, nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) Record(ctx context.Context, fb model.Feedback) error {
	fb, err := Prepare(fb, time.Now())
	if err != nil {
		return err
	}
	err = retryOnBusy(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx,
			`INSERT INTO feedback (id, contact_address, selected_id, correct_id, reporter_confidence, recorded_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			fb.ID, fb.ContactAddress, fb.SelectedID, fb.CorrectID, fb.ReporterConfidence,
			fb.RecordedAt.Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	observe(fb)
	return nil
}

func (r *SQLiteRepository) Stats(ctx context.Context) (model.FeedbackStats, error) {
	var (
		stats   model.FeedbackStats
		correct sql.NullInt64
		meanCf  sql.NullFloat64
	)
	row := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
                SUM(CASE WHEN selected_id = correct_id THEN 1 ELSE 0 END),
                AVG(reporter_confidence)
         FROM feedback`)
	if err := row.Scan(&stats.Total, &correct, &meanCf); err != nil {
		return stats, fmt.Errorf("query feedback stats: %w", err)
	}
	stats.Correct = int(correct.Int64)
	stats.MeanConfidence = meanCf.Float64
	if stats.Total > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Total)
	}
	return stats, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
