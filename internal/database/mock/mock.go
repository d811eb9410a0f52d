package mock

import (
	"context"
	"sync"
	"time"

	"github.com/jon4hz/keepsake/internal/database"
	"gorm.io/gorm"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	// User storage
	users      map[uint]*database.User
	nextUserID uint

	// Session storage
	sessions map[string]*database.Session

	// Error simulation
	CreateUserError            error
	GetUserByIDError           error
	GetUserByUsernameError     error
	GetAllUsersError           error
	CreateSessionError         error
	GetSessionError            error
	TouchSessionError          error
	DeleteSessionError         error
	DeleteExpiredSessionsError error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:      make(map[uint]*database.User),
		nextUserID: 1,
		sessions:   make(map[string]*database.Session),
	}
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[uint]*database.User)
	m.nextUserID = 1
	m.sessions = make(map[string]*database.Session)

	m.CreateUserError = nil
	m.GetUserByIDError = nil
	m.GetUserByUsernameError = nil
	m.GetAllUsersError = nil
	m.CreateSessionError = nil
	m.GetSessionError = nil
	m.TouchSessionError = nil
	m.DeleteSessionError = nil
	m.DeleteExpiredSessionsError = nil
}

func (m *MockDB) Close() error {
	return nil
}

// User operations

func (m *MockDB) CreateUser(ctx context.Context, username, passwordHash string) (*database.User, error) {
	if m.CreateUserError != nil {
		return nil, m.CreateUserError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user := &database.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	user.ID = m.nextUserID
	user.CreatedAt = time.Now()
	m.nextUserID++

	m.users[user.ID] = user

	copied := *user
	return &copied, nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	copied := *user
	return &copied, nil
}

func (m *MockDB) GetUserByUsername(ctx context.Context, username string) (*database.User, error) {
	if m.GetUserByUsernameError != nil {
		return nil, m.GetUserByUsernameError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}

	return nil, gorm.ErrRecordNotFound
}

func (m *MockDB) GetAllUsers(ctx context.Context) ([]database.User, error) {
	if m.GetAllUsersError != nil {
		return nil, m.GetAllUsersError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]database.User, 0, len(m.users))
	for id := uint(1); id < m.nextUserID; id++ {
		if user, ok := m.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

// DeleteUser removes a user. It only exists to simulate orphaned sessions in tests.
func (m *MockDB) DeleteUser(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// Session operations

func (m *MockDB) CreateSession(ctx context.Context, session *database.Session) error {
	if m.CreateSessionError != nil {
		return m.CreateSessionError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *session
	m.sessions[session.Token] = &copied
	return nil
}

func (m *MockDB) GetSession(ctx context.Context, token string) (*database.Session, error) {
	if m.GetSessionError != nil {
		return nil, m.GetSessionError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	copied := *session
	return &copied, nil
}

func (m *MockDB) TouchSession(ctx context.Context, token string, lastSeenAt, expiresAt time.Time) error {
	if m.TouchSessionError != nil {
		return m.TouchSessionError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.LastSeenAt = lastSeenAt
	session.ExpiresAt = expiresAt
	return nil
}

func (m *MockDB) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionError != nil {
		return m.DeleteSessionError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

func (m *MockDB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if m.DeleteExpiredSessionsError != nil {
		return 0, m.DeleteExpiredSessionsError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for token, session := range m.sessions {
		if !session.ExpiresAt.After(now) {
			delete(m.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// SessionCount returns the number of stored sessions.
func (m *MockDB) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
