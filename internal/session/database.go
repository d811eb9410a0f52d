package session

import (
	"context"
	"errors"
	"time"

	"github.com/jon4hz/keepsake/internal/database"
	"gorm.io/gorm"
)

var _ Store = (*DatabaseStore)(nil)

// DatabaseStore keeps sessions in the sessions table.
type DatabaseStore struct {
	db database.SessionDB
}

// NewDatabaseStore creates a session store on top of the database.
func NewDatabaseStore(db database.SessionDB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) Create(ctx context.Context, rec *Record) error {
	return s.db.CreateSession(ctx, &database.Session{
		Token:      rec.Token,
		UserID:     rec.UserID,
		Persistent: rec.Persistent,
		CreatedAt:  rec.CreatedAt,
		LastSeenAt: rec.LastSeenAt,
		ExpiresAt:  rec.ExpiresAt,
	})
}

func (s *DatabaseStore) Get(ctx context.Context, token string) (*Record, error) {
	row, err := s.db.GetSession(ctx, token)
	if err != nil {
		return nil, translate(err)
	}
	return &Record{
		Token:      row.Token,
		UserID:     row.UserID,
		Persistent: row.Persistent,
		CreatedAt:  row.CreatedAt.UTC(),
		LastSeenAt: row.LastSeenAt.UTC(),
		ExpiresAt:  row.ExpiresAt.UTC(),
	}, nil
}

func (s *DatabaseStore) Touch(ctx context.Context, rec *Record) error {
	return translate(s.db.TouchSession(ctx, rec.Token, rec.LastSeenAt, rec.ExpiresAt))
}

func (s *DatabaseStore) Delete(ctx context.Context, token string) error {
	return s.db.DeleteSession(ctx, token)
}

func (s *DatabaseStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	return s.db.DeleteExpiredSessions(ctx, now.UTC())
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
