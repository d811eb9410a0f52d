package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jon4hz/keepsake/internal/config"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type DatabaseTestSuite struct {
	suite.Suite
	client *Client
	ctx    context.Context
}

func (s *DatabaseTestSuite) SetupTest() {
	var err error
	s.ctx = context.Background()
	s.client, err = New(&config.DatabaseConfig{
		Type: config.DatabaseTypeSQLite,
		Path: filepath.Join(s.T().TempDir(), "nested", "keepsake.db"),
	})
	s.Require().NoError(err)
}

func (s *DatabaseTestSuite) TearDownTest() {
	s.Require().NoError(s.client.Close())
}

func (s *DatabaseTestSuite) TestCreateAndGetUser() {
	created, err := s.client.CreateUser(s.ctx, "GEET", "hash")
	s.Require().NoError(err)
	s.NotZero(created.ID)

	byName, err := s.client.GetUserByUsername(s.ctx, "GEET")
	s.Require().NoError(err)
	s.Equal(created.ID, byName.ID)
	s.Equal("hash", byName.PasswordHash)

	byID, err := s.client.GetUserByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("GEET", byID.Username)
}

func (s *DatabaseTestSuite) TestUsernameIsCaseSensitive() {
	_, err := s.client.CreateUser(s.ctx, "GEET", "hash")
	s.Require().NoError(err)

	_, err = s.client.GetUserByUsername(s.ctx, "geet")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *DatabaseTestSuite) TestUsernameIsUnique() {
	_, err := s.client.CreateUser(s.ctx, "GEET", "hash")
	s.Require().NoError(err)

	_, err = s.client.CreateUser(s.ctx, "GEET", "other")
	s.Error(err)

	users, err := s.client.GetAllUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 1)
}

func (s *DatabaseTestSuite) TestGetUserNotFound() {
	_, err := s.client.GetUserByID(s.ctx, 42)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *DatabaseTestSuite) TestSessionLifecycle() {
	now := time.Now().UTC().Truncate(time.Second)
	session := &Session{
		Token:      "token-1",
		UserID:     1,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(time.Hour),
	}
	s.Require().NoError(s.client.CreateSession(s.ctx, session))

	got, err := s.client.GetSession(s.ctx, "token-1")
	s.Require().NoError(err)
	s.Equal(uint(1), got.UserID)
	s.False(got.Persistent)
	s.WithinDuration(now.Add(time.Hour), got.ExpiresAt, time.Second)

	later := now.Add(10 * time.Minute)
	s.Require().NoError(s.client.TouchSession(s.ctx, "token-1", later, later.Add(time.Hour)))

	got, err = s.client.GetSession(s.ctx, "token-1")
	s.Require().NoError(err)
	s.WithinDuration(later, got.LastSeenAt, time.Second)
	s.WithinDuration(later.Add(time.Hour), got.ExpiresAt, time.Second)

	s.Require().NoError(s.client.DeleteSession(s.ctx, "token-1"))
	_, err = s.client.GetSession(s.ctx, "token-1")
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	// deleting twice is fine
	s.NoError(s.client.DeleteSession(s.ctx, "token-1"))
}

func (s *DatabaseTestSuite) TestTouchUnknownSession() {
	now := time.Now().UTC()
	err := s.client.TouchSession(s.ctx, "missing", now, now.Add(time.Hour))
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *DatabaseTestSuite) TestDeleteExpiredSessions() {
	now := time.Now().UTC().Truncate(time.Second)
	for _, sess := range []*Session{
		{Token: "expired", UserID: 1, CreatedAt: now.Add(-2 * time.Hour), LastSeenAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{Token: "valid", UserID: 1, CreatedAt: now, LastSeenAt: now, ExpiresAt: now.Add(time.Hour)},
		{Token: "persistent", UserID: 1, Persistent: true, CreatedAt: now, LastSeenAt: now, ExpiresAt: now.Add(30 * 24 * time.Hour)},
	} {
		s.Require().NoError(s.client.CreateSession(s.ctx, sess))
	}

	deleted, err := s.client.DeleteExpiredSessions(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)

	_, err = s.client.GetSession(s.ctx, "expired")
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	persistent, err := s.client.GetSession(s.ctx, "persistent")
	s.Require().NoError(err)
	s.True(persistent.Persistent)
}

func TestDatabaseTestSuite(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}

func TestNew_UnsupportedType(t *testing.T) {
	_, err := New(&config.DatabaseConfig{Type: "mysql"})
	if err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}
