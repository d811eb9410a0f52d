package database

import (
	"context"
	"time"
)

// DB defines the interface for database operations.
type DB interface {
	UserDB
	SessionDB

	Close() error
}

// UserDB holds the user record operations.
type UserDB interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
}

// SessionDB holds the session record operations.
// Lookups of unknown records return gorm.ErrRecordNotFound.
type SessionDB interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	TouchSession(ctx context.Context, token string, lastSeenAt, expiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
