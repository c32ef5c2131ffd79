package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/utils"
)

const logColumns = `id, entry_id, habit_id, value, created_at, updated_at`

func (s *Store) UpsertLog(ctx context.Context, entryID, habitID string, value float64) (models.HabitLog, bool, error) {
	newID := uuid.New().String()
	var l models.HabitLog
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO habit_logs (id, entry_id, habit_id, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (entry_id, habit_id) DO UPDATE SET value = excluded.value, updated_at = now()
		RETURNING `+logColumns,
		newID, entryID, habitID, value,
	).Scan(&l.ID, &l.EntryID, &l.HabitID, &l.Value, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return models.HabitLog{}, false, mapError(err, "habit log")
	}
	return l, l.ID == newID, nil
}

func (s *Store) ListLogsForEntry(ctx context.Context, entryID string) ([]models.HabitLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+logColumns+` FROM habit_logs WHERE entry_id = $1 ORDER BY created_at, id`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habit logs: %w", err)
	}
	defer rows.Close()

	var logs []models.HabitLog
	for rows.Next() {
		var l models.HabitLog
		if err := rows.Scan(&l.ID, &l.EntryID, &l.HabitID, &l.Value, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habit logs: %w", err)
	}
	return logs, nil
}

func (s *Store) ListLogsForHabit(ctx context.Context, habitID string) ([]models.LogRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(e.date, 'YYYY-MM-DD'), l.value, e.productivity_score, e.mood_score
		FROM habit_logs l
		JOIN daily_entries e ON e.id = l.entry_id
		WHERE l.habit_id = $1
		ORDER BY e.date, l.id`, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs for habit %s: %w", habitID, err)
	}
	defer rows.Close()

	var records []models.LogRecord
	for rows.Next() {
		var r models.LogRecord
		var date string
		if err := rows.Scan(&date, &r.Value, &r.ProductivityScore, &r.MoodScore); err != nil {
			return nil, fmt.Errorf("failed to scan log record: %w", err)
		}
		if r.Date, err = utils.ParseDate(date, time.UTC); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log records: %w", err)
	}
	return records, nil
}

func (s *Store) ListLogDates(ctx context.Context, habitID string) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT to_char(e.date, 'YYYY-MM-DD') AS day
		FROM habit_logs l
		JOIN daily_entries e ON e.id = l.entry_id
		WHERE l.habit_id = $1
		ORDER BY day`, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query log dates for habit %s: %w", habitID, err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("failed to scan log date: %w", err)
		}
		d, err := utils.ParseDate(date, time.UTC)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log dates: %w", err)
	}
	return dates, nil
}
