package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/models"
)

const entryColumns = `id, user_id, to_char(date, 'YYYY-MM-DD'), productivity_score, mood_score, notes, created_at, updated_at`

func (s *Store) AddEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_entries (id, user_id, date, productivity_score, mood_score, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+entryColumns,
		entry.ID, entry.UserID, entry.Date, entry.ProductivityScore, entry.MoodScore, entry.Notes,
	)
	e, err := scanEntry(row)
	if err != nil {
		return models.DailyEntry{}, mapError(err, fmt.Sprintf("entry for %s", entry.Date))
	}
	return e, nil
}

func (s *Store) GetEntry(ctx context.Context, userID, date string) (models.DailyEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM daily_entries WHERE user_id = $1 AND date = $2`, userID, date))
	if err != nil {
		return models.DailyEntry{}, mapError(err, fmt.Sprintf("entry for %s", date))
	}
	return e, nil
}

func (s *Store) GetEntryByID(ctx context.Context, id string) (models.DailyEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM daily_entries WHERE id = $1`, id))
	if err != nil {
		return models.DailyEntry{}, mapError(err, "entry")
	}
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE daily_entries SET productivity_score = $1, mood_score = $2, notes = $3, updated_at = now()
		WHERE id = $4
		RETURNING `+entryColumns,
		entry.ProductivityScore, entry.MoodScore, entry.Notes, entry.ID,
	)
	e, err := scanEntry(row)
	if err != nil {
		return models.DailyEntry{}, mapError(err, "entry")
	}
	return e, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM daily_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return requireAffected(result, "entry")
}

func (s *Store) ListEntries(ctx context.Context, userID string) ([]models.DailyEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.user_id, to_char(e.date, 'YYYY-MM-DD'), e.productivity_score, e.mood_score, e.notes,
			e.created_at, e.updated_at, COUNT(l.id)
		FROM daily_entries e
		LEFT JOIN habit_logs l ON l.entry_id = e.id
		WHERE e.user_id = $1
		GROUP BY e.id
		ORDER BY e.date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.DailyEntry
	for rows.Next() {
		var e models.DailyEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.ProductivityScore, &e.MoodScore, &e.Notes,
			&e.CreatedAt, &e.UpdatedAt, &e.LogCount); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

func (s *Store) EnsureEntryForDate(ctx context.Context, userID, date string) (models.DailyEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_entries (id, user_id, date, productivity_score, mood_score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, date) DO UPDATE SET user_id = excluded.user_id
		RETURNING `+entryColumns,
		uuid.New().String(), userID, date, constants.DefaultScore, constants.DefaultScore,
	)
	e, err := scanEntry(row)
	if err != nil {
		return models.DailyEntry{}, mapError(err, fmt.Sprintf("entry for %s", date))
	}
	return e, nil
}

func scanEntry(row scanner) (models.DailyEntry, error) {
	var e models.DailyEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.ProductivityScore, &e.MoodScore, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
