package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/storage"
)

const habitColumns = `id, user_id, name, category, target_value, unit, created_at, updated_at`

func (s *Store) AddHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	now := timeNow().UTC()
	habit.CreatedAt = now
	habit.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.UserID, habit.Name, habit.Category, habit.TargetValue, habit.Unit,
		formatTime(habit.CreatedAt), formatTime(habit.UpdatedAt),
	)
	if err != nil {
		return models.Habit{}, mapError(err, fmt.Sprintf("habit %q", habit.Name))
	}
	return habit, nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, mapError(err, "habit")
	}
	return h, nil
}

func (s *Store) GetHabitByName(ctx context.Context, userID, name string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE user_id = ? AND name = ?`, userID, name)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, mapError(err, fmt.Sprintf("habit %q", name))
	}
	return h, nil
}

func (s *Store) ListHabits(ctx context.Context, scope storage.Scope) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+habitColumns+` FROM habits
		WHERE ? = '' OR user_id = ?
		ORDER BY name, id`, scope.UserID, scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating habits: %w", err)
	}
	return habits, nil
}

func (s *Store) UpdateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE habits SET name = ?, category = ?, target_value = ?, unit = ?, updated_at = ?
		WHERE id = ?`,
		habit.Name, habit.Category, habit.TargetValue, habit.Unit, formatTime(timeNow()), habit.ID,
	)
	if err != nil {
		return models.Habit{}, mapError(err, fmt.Sprintf("habit %q", habit.Name))
	}
	if err := requireAffected(result, "habit"); err != nil {
		return models.Habit{}, err
	}
	return s.GetHabit(ctx, habit.ID)
}

// DeleteHabit removes the habit and every log recorded against it.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM habit_logs WHERE habit_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete habit logs: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if err := requireAffected(result, "habit"); err != nil {
		return err
	}
	return tx.Commit()
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var createdAt, updatedAt string
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Category, &h.TargetValue, &h.Unit, &createdAt, &updatedAt)
	if err != nil {
		return models.Habit{}, err
	}
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, err
	}
	if h.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}
