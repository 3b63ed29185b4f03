package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sleepleague/sleepleague/internal/models"
)

func CreateUser(ctx context.Context, database *sql.DB, name, email string) (models.User, error) {
	u := models.User{ID: uuid.NewString(), Name: name, Email: email}
	err := database.QueryRowContext(ctx, `
INSERT INTO users (id, name, email) VALUES ($1, $2, $3)
RETURNING created_at`, u.ID, u.Name, u.Email).Scan(&u.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func GetUserByID(ctx context.Context, database *sql.DB, id string) (*models.User, error) {
	var u models.User
	err := database.QueryRowContext(ctx, `
SELECT id, name, email, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
