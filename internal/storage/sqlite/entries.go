package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlens/internal/constants"
	apperrors "github.com/julianstephens/habitlens/internal/errors"
	"github.com/julianstephens/habitlens/internal/models"
)

const entryColumns = `id, user_id, date, productivity_score, mood_score, notes, created_at, updated_at`

func (s *Store) AddEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := timeNow().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Date, entry.ProductivityScore, entry.MoodScore, entry.Notes,
		formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return models.DailyEntry{}, mapError(err, fmt.Sprintf("entry for %s", entry.Date))
	}
	return entry, nil
}

func (s *Store) GetEntry(ctx context.Context, userID, date string) (models.DailyEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM daily_entries WHERE user_id = ? AND date = ?`, userID, date)
	e, err := scanEntry(row)
	if err != nil {
		return models.DailyEntry{}, mapError(err, fmt.Sprintf("entry for %s", date))
	}
	return e, nil
}

func (s *Store) GetEntryByID(ctx context.Context, id string) (models.DailyEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM daily_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		return models.DailyEntry{}, mapError(err, "entry")
	}
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE daily_entries SET productivity_score = ?, mood_score = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		entry.ProductivityScore, entry.MoodScore, entry.Notes, formatTime(timeNow()), entry.ID,
	)
	if err != nil {
		return models.DailyEntry{}, mapError(err, "entry")
	}
	if err := requireAffected(result, "entry"); err != nil {
		return models.DailyEntry{}, err
	}
	return s.GetEntryByID(ctx, entry.ID)
}

// DeleteEntry removes the entry and its logs.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_logs WHERE entry_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete entry logs: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM daily_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if err := requireAffected(result, "entry"); err != nil {
		return err
	}
	return tx.Commit()
}

// ListEntries returns the user's entries newest first with their log counts.
func (s *Store) ListEntries(ctx context.Context, userID string) ([]models.DailyEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.user_id, e.date, e.productivity_score, e.mood_score, e.notes,
			e.created_at, e.updated_at, COUNT(l.id)
		FROM daily_entries e
		LEFT JOIN habit_logs l ON l.entry_id = e.id
		WHERE e.user_id = ?
		GROUP BY e.id
		ORDER BY e.date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.DailyEntry
	for rows.Next() {
		var e models.DailyEntry
		var createdAt, updatedAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.ProductivityScore, &e.MoodScore, &e.Notes,
			&createdAt, &updatedAt, &e.LogCount); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if e.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// EnsureEntryForDate returns the entry for date, creating one with default
// scores in the same statement when none exists.
func (s *Store) EnsureEntryForDate(ctx context.Context, userID, date string) (models.DailyEntry, error) {
	now := formatTime(timeNow())
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, '', ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET user_id = excluded.user_id
		RETURNING `+entryColumns,
		uuid.New().String(), userID, date, constants.DefaultScore, constants.DefaultScore, now, now,
	)
	e, err := scanEntry(row)
	if err != nil {
		return models.DailyEntry{}, mapError(err, fmt.Sprintf("entry for %s", date))
	}
	return e, nil
}

func scanEntry(row scanner) (models.DailyEntry, error) {
	var e models.DailyEntry
	var createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.ProductivityScore, &e.MoodScore, &e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return models.DailyEntry{}, err
	}
	if e.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.DailyEntry{}, err
	}
	if e.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.DailyEntry{}, err
	}
	return e, nil
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %w", what, apperrors.ErrNotFound)
	}
	return nil
}
