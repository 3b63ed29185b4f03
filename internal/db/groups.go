package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sleepleague/sleepleague/internal/ctxutil"
	"github.com/sleepleague/sleepleague/internal/models"
)

// CreateGroup inserts the group and makes the owner its first member.
func CreateGroup(ctx context.Context, database *sql.DB, name, joinCode, ownerID string) (models.Group, error) {
	g := models.Group{ID: uuid.NewString(), Name: name, JoinCode: joinCode, OwnerID: ownerID}

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return models.Group{}, fmt.Errorf("create group: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx, `
INSERT INTO groups (id, name, join_code, owner_id) VALUES ($1, $2, $3, $4)
RETURNING created_at`, g.ID, g.Name, g.JoinCode, g.OwnerID).Scan(&g.CreatedAt); err != nil {
		return models.Group{}, fmt.Errorf("create group: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)`,
		g.ID, ownerID, models.RoleOwner); err != nil {
		return models.Group{}, fmt.Errorf("add owner member: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Group{}, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

func GetGroup(ctx context.Context, database *sql.DB, id string) (*models.Group, error) {
	var g models.Group
	err := database.QueryRowContext(ctx, `
SELECT id, name, join_code, owner_id, created_at FROM groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.JoinCode, &g.OwnerID, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

func GetGroupByJoinCode(ctx context.Context, database *sql.DB, code string) (*models.Group, error) {
	var g models.Group
	err := database.QueryRowContext(ctx, `
SELECT id, name, join_code, owner_id, created_at FROM groups WHERE join_code = $1`, code).
		Scan(&g.ID, &g.Name, &g.JoinCode, &g.OwnerID, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group by join code: %w", err)
	}
	return &g, nil
}

// ListGroupIDs — все группы; нужен фоновому пересчёту.
func ListGroupIDs(ctx context.Context, database *sql.DB) ([]string, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := database.QueryContext(ctx, `SELECT id FROM groups ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func AddMember(ctx context.Context, database *sql.DB, groupID, userID string) error {
	_, err := database.ExecContext(ctx, `
INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)
ON CONFLICT (group_id, user_id) DO NOTHING`, groupID, userID, models.RoleMember)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func ListMemberIDs(ctx context.Context, database *sql.DB, groupID string) ([]string, error) {
	rows, err := database.QueryContext(ctx, `
SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY user_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list member ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func ListMembers(ctx context.Context, database *sql.DB, groupID string) ([]models.Member, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	rows, err := database.QueryContext(ctx, `
SELECT m.group_id, m.user_id, u.name, m.role, m.joined_at
FROM group_members m
JOIN users u ON u.id = m.user_id
WHERE m.group_id = $1
ORDER BY m.joined_at`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Name, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func IsMember(ctx context.Context, database *sql.DB, groupID, userID string) (bool, error) {
	var one int
	err := database.QueryRowContext(ctx, `
SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return true, nil
}

// NewJoinCode выдаёт короткий код приглашения.
func NewJoinCode() string {
	return uuid.NewString()[:6]
}
