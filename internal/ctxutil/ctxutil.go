package ctxutil

import (
	"context"
	"time"
)

// приватные ключи, чтобы исключить коллизии
type key int

const (
	keyGroupID key = iota
	keyUserID
	keyOpName
)

func WithGroupID(ctx context.Context, groupID string) context.Context {
	return context.WithValue(ctx, keyGroupID, groupID)
}

func GroupID(ctx context.Context) (string, bool) {
	v := ctx.Value(keyGroupID)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

func UserID(ctx context.Context) (string, bool) {
	v := ctx.Value(keyUserID)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// WithOp — имя операции (для логов/трейса)
func WithOp(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyOpName, name)
}

func Op(ctx context.Context) (string, bool) {
	v := ctx.Value(keyOpName)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

const (
	DefaultTimeout = 10 * time.Second
	DBTimeout      = 5 * time.Second
)

func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// WithDBTimeout — стандартный потолок для одиночного запроса к БД.
func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DBTimeout)
}
