package models

import "time"

type User struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

type Group struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	JoinCode  string    `db:"join_code"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}

type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleMember MemberRole = "MEMBER"
)

type Member struct {
	GroupID  string     `db:"group_id"`
	UserID   string     `db:"user_id"`
	Name     string     `db:"name"`
	Role     MemberRole `db:"role"`
	JoinedAt time.Time  `db:"joined_at"`
}
