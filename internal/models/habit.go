package models

import "time"

// User owns habits and daily entries
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Habit represents a trackable activity with a numeric target
type Habit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Category    string    `json:"category" validate:"max=50"`
	TargetValue float64   `json:"target_value" validate:"finite"`
	Unit        string    `json:"unit" validate:"required,max=50,unit"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HabitLog is the measured value of one habit on one daily entry
type HabitLog struct {
	ID        string    `json:"id"`
	EntryID   string    `json:"entry_id"`
	HabitID   string    `json:"habit_id"`
	Value     float64   `json:"value" validate:"finite"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
