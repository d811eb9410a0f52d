// Package auth verifies logins and resolves session tokens to users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/keepsake/internal/credential"
	"github.com/jon4hz/keepsake/internal/database"
	"github.com/jon4hz/keepsake/internal/session"
)

var (
	// ErrInvalidCredentials is returned for an unknown username and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated is returned when a request needs a session but has none.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrPersistenceUnavailable is returned when the user or session store fails.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrValidation is returned for a malformed login request.
	ErrValidation = errors.New("validation failed")
)

// LoginRequest is the payload of a login attempt.
type LoginRequest struct {
	Username   string `json:"username" form:"username"`
	Password   string `json:"password" form:"password"`
	RememberMe bool   `json:"rememberMe" form:"rememberMe"`
}

// Validate checks that both username and password are present.
func (r LoginRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Username) == "" {
		missing = append(missing, "username")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, " and "))
	}
	return nil
}

// User holds the public fields of a user. It never carries the password hash.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func publicUser(u *database.User) User {
	return User{
		ID:       u.ID,
		Username: u.Username,
	}
}

// Identity is the outcome of resolving a session token.
type Identity struct {
	User    *User
	Session *session.Record
}

// Anonymous is the identity of a request without a valid session.
var Anonymous = Identity{}

// Authenticated reports whether the identity belongs to a signed in user.
func (i Identity) Authenticated() bool {
	return i.User != nil
}

// Result is returned by a successful login.
type Result struct {
	User    User
	Session *session.Record
}

// Credentials looks up users.
type Credentials interface {
	FindByUsername(ctx context.Context, username string) (*database.User, error)
	FindByID(ctx context.Context, id uint) (*database.User, error)
}

// Notifier is told about successful logins.
type Notifier interface {
	NotifyLogin(ctx context.Context, user User, at time.Time) error
}

// Authenticator issues, resolves and destroys sessions.
type Authenticator struct {
	creds    Credentials
	sessions session.Store
	policy   session.Policy
	notifier Notifier
	now      func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithNotifier sets a notifier that is called after every successful login.
func WithNotifier(n Notifier) Option {
	return func(a *Authenticator) {
		a.notifier = n
	}
}

// WithClock replaces the clock used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// New creates a new Authenticator.
func New(creds Credentials, sessions session.Store, policy session.Policy, opts ...Option) *Authenticator {
	a := &Authenticator{
		creds:    creds,
		sessions: sessions,
		policy:   policy,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login verifies the credentials and starts a new session.
// previousToken, if set, is destroyed so a login never reuses an existing session.
func (a *Authenticator) Login(ctx context.Context, req LoginRequest, previousToken string) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := a.creds.FindByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, credential.ErrUserNotFound):
		credential.VerifyDummy(req.Password)
		log.Debug("Login for unknown user rejected")
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	if !credential.VerifyPassword(req.Password, user.PasswordHash) {
		log.Debug("Login with wrong password rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if previousToken != "" {
		if err := a.sessions.Delete(ctx, previousToken); err != nil {
			return nil, fmt.Errorf("%w: failed to delete previous session: %w", ErrPersistenceUnavailable, err)
		}
	}

	now := a.now()
	rec, err := a.policy.New(user.ID, req.RememberMe, now)
	if err != nil {
		return nil, err
	}
	if err := a.sessions.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: failed to create session: %w", ErrPersistenceUnavailable, err)
	}

	public := publicUser(user)
	log.Info("User logged in", "user_id", public.ID, "remember_me", rec.Persistent)
	a.notify(ctx, public, now)

	return &Result{
		User:    public,
		Session: rec,
	}, nil
}

func (a *Authenticator) notify(ctx context.Context, user User, at time.Time) {
	if a.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := a.notifier.NotifyLogin(ctx, user, at); err != nil {
			log.Warn("Failed to send login notification", "error", err)
		}
	}()
}

// Logout destroys the session. Unknown or empty tokens are ignored.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := a.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: failed to delete session: %w", ErrPersistenceUnavailable, err)
	}
	log.Debug("Session destroyed")
	return nil
}

// CurrentUser resolves a session token. Missing, unknown, expired and orphaned
// sessions yield Anonymous without an error. Browser sessions slide their expiry.
func (a *Authenticator) CurrentUser(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Anonymous, nil
	}

	rec, err := a.sessions.Get(ctx, token)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return Anonymous, nil
	case err != nil:
		return Anonymous, fmt.Errorf("%w: failed to get session: %w", ErrPersistenceUnavailable, err)
	}

	now := a.now()
	if rec.Expired(now) {
		a.discard(ctx, token, "expired")
		return Anonymous, nil
	}

	user, err := a.creds.FindByID(ctx, rec.UserID)
	switch {
	case errors.Is(err, credential.ErrUserNotFound):
		a.discard(ctx, token, "orphaned")
		return Anonymous, nil
	case err != nil:
		return Anonymous, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	if a.policy.Refresh(rec, now) {
		if err := a.sessions.Touch(ctx, rec); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				// logged out concurrently
				return Anonymous, nil
			}
			return Anonymous, fmt.Errorf("%w: failed to refresh session: %w", ErrPersistenceUnavailable, err)
		}
	}

	public := publicUser(user)
	return Identity{
		User:    &public,
		Session: rec,
	}, nil
}

func (a *Authenticator) discard(ctx context.Context, token, reason string) {
	if err := a.sessions.Delete(ctx, token); err != nil {
		log.Warn("Failed to delete stale session", "reason", reason, "error", err)
		return
	}
	log.Debug("Deleted stale session", "reason", reason)
}

// Prune removes expired sessions from the store.
func (a *Authenticator) Prune(ctx context.Context) (int64, error) {
	n, err := a.sessions.Prune(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("%w: failed to prune sessions: %w", ErrPersistenceUnavailable, err)
	}
	return n, nil
}
