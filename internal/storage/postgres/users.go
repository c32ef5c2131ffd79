package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlens/internal/models"
)

func (s *Store) EnsureUser(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET username = excluded.username
		RETURNING id, username, created_at`,
		uuid.New().String(), username,
	).Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err != nil {
		return models.User{}, mapError(err, "user")
	}
	return u, nil
}

func (s *Store) GetUserByName(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, username, created_at FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err != nil {
		return models.User{}, mapError(err, "user")
	}
	return u, nil
}
