package model

import "time"

// Feedback is a correction reported for one ranking run.
type Feedback struct {
	ID                 string    `json:"id"`
	ContactAddress     string    `json:"contact_address,omitempty"`
	SelectedID         string    `json:"selected_id"`
	CorrectID          string    `json:"correct_id"`
	ReporterConfidence float64   `json:"reporter_confidence"`
	RecordedAt         time.Time `json:"recorded_at"`
}

// Correct reports whether the selected identifier was the right one.
func (f Feedback) Correct() bool { return f.SelectedID == f.CorrectID }

// FeedbackStats aggregates all recorded feedback.
type FeedbackStats struct {
	Total          int     `json:"total"`
	Correct        int     `json:"correct"`
	Accuracy       float64 `json:"accuracy"`
	MeanConfidence float64 `json:"mean_reporter_confidence"`
}
