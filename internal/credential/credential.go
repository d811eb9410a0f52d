// Package credential holds the bootstrap user and verifies its password.
package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/keepsake/internal/config"
	"github.com/jon4hz/keepsake/internal/database"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrPersistenceUnavailable wraps any failure of the underlying user store.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// dummyPassword is hashed once and compared against when a username is unknown.
const dummyPassword = "keepsake-timing-equalizer"

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// Store provides access to the user records.
type Store struct {
	db  database.UserDB
	cfg *config.AuthConfig
}

// New creates a new credential store.
func New(db database.UserDB, cfg *config.AuthConfig) *Store {
	return &Store{
		db:  db,
		cfg: cfg,
	}
}

// EnsureBootstrapUser creates the configured user if it does not exist yet.
// Calling it again with an existing user is a no-op and returns that user.
func (s *Store) EnsureBootstrapUser(ctx context.Context) (*database.User, error) {
	user, err := s.FindByUsername(ctx, s.cfg.Username)
	if err == nil {
		log.Debug("Bootstrap user already exists", "username", user.Username)
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.bootstrapHash()
	if err != nil {
		return nil, err
	}

	user, err = s.db.CreateUser(ctx, s.cfg.Username, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create bootstrap user: %w", ErrPersistenceUnavailable, err)
	}

	log.Info("Created bootstrap user", "username", user.Username)
	return user, nil
}

func (s *Store) bootstrapHash() (string, error) {
	if s.cfg.PasswordHash != "" {
		cost, err := bcrypt.Cost([]byte(s.cfg.PasswordHash))
		if err != nil {
			return "", fmt.Errorf("invalid password hash: %w", err)
		}
		if cost < config.MinBcryptCost {
			return "", fmt.Errorf("password hash cost %d is below the minimum of %d", cost, config.MinBcryptCost)
		}
		return s.cfg.PasswordHash, nil
	}
	return HashPassword(s.cfg.Password, s.cfg.BcryptCost)
}

// FindByUsername looks up a user by its exact, case-sensitive username.
func (s *Store) FindByUsername(ctx context.Context, username string) (*database.User, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// FindByID looks up a user by its ID.
func (s *Store) FindByID(ctx context.Context, id uint) (*database.User, error) {
	user, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
}

// HashPassword hashes a plaintext password with bcrypt.
// Costs below the minimum are raised to it.
func HashPassword(plain string, cost int) (string, error) {
	if plain == "" {
		return "", errors.New("password must not be empty")
	}
	cost = max(cost, config.MinBcryptCost)
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the bcrypt hash.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// VerifyDummy burns roughly the same time as VerifyPassword for a user that does not exist.
func VerifyDummy(plain string) {
	dummyHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), config.MinBcryptCost)
		if err != nil {
			log.Error("Failed to generate dummy hash", "error", err)
			return
		}
		dummyHash = string(hash)
	})
	if dummyHash == "" {
		return
	}
	_ = VerifyPassword(plain, dummyHash)
}
