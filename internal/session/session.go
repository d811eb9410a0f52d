// Package session keeps server-side login sessions.
package session

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/jon4hz/keepsake/internal/config"
	"github.com/jon4hz/keepsake/internal/database"
)

// ErrNotFound is returned when a session token is unknown to the store.
var ErrNotFound = errors.New("session not found")

// tokenBytes is the amount of randomness in a session token.
const tokenBytes = 32

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Record is a server-side session bound to a user.
type Record struct {
	Token      string    `json:"token"`
	UserID     uint      `json:"userId"`
	Persistent bool      `json:"persistent"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Store persists session records.
// Get and Touch return ErrNotFound for unknown tokens, Delete does not.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, token string) (*Record, error)
	Touch(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, token string) error
	// Prune removes sessions that expired at or before now and reports how many were removed.
	Prune(ctx context.Context, now time.Time) (int64, error)
}

// NewToken returns a new opaque, unguessable session token.
func NewToken() (string, error) {
	key := securecookie.GenerateRandomKey(tokenBytes)
	if key == nil {
		return "", errors.New("failed to read random bytes for session token")
	}
	return tokenEncoding.EncodeToString(key), nil
}

// Policy decides how long sessions live.
type Policy struct {
	// IdleTimeout is the sliding window of a browser session.
	IdleTimeout time.Duration
	// RememberDuration is the fixed lifetime of a persistent session.
	RememberDuration time.Duration
}

// PolicyFromConfig builds a Policy from the session configuration.
func PolicyFromConfig(cfg *config.SessionConfig) Policy {
	return Policy{
		IdleTimeout:      cfg.IdleTimeout,
		RememberDuration: cfg.RememberDuration,
	}
}

// New creates a fresh session record for userID. All times are UTC.
func (p Policy) New(userID uint, persistent bool, now time.Time) (*Record, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	rec := &Record{
		Token:      token,
		UserID:     userID,
		Persistent: persistent,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if persistent {
		rec.ExpiresAt = now.Add(p.RememberDuration)
	} else {
		rec.ExpiresAt = now.Add(p.IdleTimeout)
	}
	return rec, nil
}

// Refresh slides the expiry of a browser session forward to now + IdleTimeout.
// Persistent sessions keep their fixed expiry. It reports whether rec changed.
func (p Policy) Refresh(rec *Record, now time.Time) bool {
	if rec.Persistent {
		return false
	}
	now = now.UTC()
	rec.LastSeenAt = now
	rec.ExpiresAt = now.Add(p.IdleTimeout)
	return true
}

// NewStore creates the session store selected by the configuration.
func NewStore(cfg *config.SessionConfig, db database.SessionDB) (Store, error) {
	switch cfg.Store {
	case config.SessionStoreDatabase, "":
		return NewDatabaseStore(db), nil
	case config.SessionStoreMemory:
		return NewMemoryStore(), nil
	case config.SessionStoreRedis:
		return NewRedisStore(cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}
