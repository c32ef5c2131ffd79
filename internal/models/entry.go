package models

import "time"

// DailyEntry is one user's journal record for one calendar date
type DailyEntry struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Date              string    `json:"date" validate:"required,datetime=2006-01-02"` // YYYY-MM-DD format
	ProductivityScore int       `json:"productivity_score" validate:"min=1,max=10"`
	MoodScore         int       `json:"mood_score" validate:"min=1,max=10"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// LogCount is filled by list queries only.
	LogCount int `json:"log_count,omitempty"`
}

// LogRecord is a habit log joined to its entry, as consumed by analytics
type LogRecord struct {
	Date              time.Time `json:"date"`
	Value             float64   `json:"value"`
	ProductivityScore int       `json:"productivity_score"`
	MoodScore         int       `json:"mood_score"`
}
