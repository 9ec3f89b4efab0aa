package domain

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	UpdateLastSeen(ctx context.Context, sessionID int64, lastSeen time.Time) error
	RevokeSession(ctx context.Context, sessionID int64, revokedAt time.Time) error
}
