package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Session is a server-side login session keyed by its opaque token.
type Session struct {
	Token      string    `gorm:"primaryKey;size:64"`
	UserID     uint      `gorm:"index;not null"`
	Persistent bool      `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	LastSeenAt time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"index;not null"`
}

func (c *Client) CreateSession(ctx context.Context, session *Session) error {
	if err := c.db.WithContext(ctx).Create(session).Error; err != nil {
		log.Error("failed to create session", "error", err)
		return err
	}
	return nil
}

func (c *Client) GetSession(ctx context.Context, token string) (*Session, error) {
	var session Session
	if err := c.db.WithContext(ctx).Where("token = ?", token).First(&session).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get session", "error", err)
		}
		return nil, err
	}
	return &session, nil
}

func (c *Client) TouchSession(ctx context.Context, token string, lastSeenAt, expiresAt time.Time) error {
	result := c.db.WithContext(ctx).Model(&Session{}).Where("token = ?", token).Updates(map[string]any{
		"last_seen_at": lastSeenAt,
		"expires_at":   expiresAt,
	})
	if result.Error != nil {
		log.Error("failed to touch session", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *Client) DeleteSession(ctx context.Context, token string) error {
	if err := c.db.WithContext(ctx).Where("token = ?", token).Delete(&Session{}).Error; err != nil {
		log.Error("failed to delete session", "error", err)
		return err
	}
	return nil
}

// DeleteExpiredSessions removes every session that expired at or before now.
func (c *Client) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := c.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&Session{})
	if result.Error != nil {
		log.Error("failed to delete expired sessions", "error", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
