package sqlite

import (
	"context"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlens/internal/models"
)

// EnsureUser returns the user with the given name, creating it if needed.
func (s *Store) EnsureUser(ctx context.Context, username string) (models.User, error) {
	now := formatTime(timeNow())
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET username = excluded.username
		RETURNING id, username, created_at`,
		uuid.New().String(), username, now)
	u, err := scanUser(row)
	if err != nil {
		return models.User{}, mapError(err, "user")
	}
	return u, nil
}

func (s *Store) GetUserByName(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		return models.User{}, mapError(err, "user")
	}
	return u, nil
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &createdAt); err != nil {
		return models.User{}, err
	}
	t, err := parseTime("created_at", createdAt)
	if err != nil {
		return models.User{}, err
	}
	u.CreatedAt = t
	return u, nil
}
