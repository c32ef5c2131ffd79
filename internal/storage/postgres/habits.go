package postgres

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
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO habits (id, user_id, name, category, target_value, unit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+habitColumns,
		habit.ID, habit.UserID, habit.Name, habit.Category, habit.TargetValue, habit.Unit,
	)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, mapError(err, fmt.Sprintf("habit %q", habit.Name))
	}
	return h, nil
}

func (s *Store) GetHabit(ctx context.Context, id string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id))
	if err != nil {
		return models.Habit{}, mapError(err, "habit")
	}
	return h, nil
}

func (s *Store) GetHabitByName(ctx context.Context, userID, name string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE user_id = $1 AND name = $2`, userID, name))
	if err != nil {
		return models.Habit{}, mapError(err, fmt.Sprintf("habit %q", name))
	}
	return h, nil
}

func (s *Store) ListHabits(ctx context.Context, scope storage.Scope) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+habitColumns+` FROM habits
		WHERE $1 = '' OR user_id = $1
		ORDER BY name, id`, scope.UserID)
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
	row := s.db.QueryRowContext(ctx, `
		UPDATE habits SET name = $1, category = $2, target_value = $3, unit = $4, updated_at = now()
		WHERE id = $5
		RETURNING `+habitColumns,
		habit.Name, habit.Category, habit.TargetValue, habit.Unit, habit.ID,
	)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, mapError(err, fmt.Sprintf("habit %q", habit.Name))
	}
	return h, nil
}

// DeleteHabit removes the habit; its logs go with it via ON DELETE CASCADE.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return requireAffected(result, "habit")
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Category, &h.TargetValue, &h.Unit, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}
