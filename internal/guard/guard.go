// Package guard decides whether a protected page may be rendered.
//
// A Query asks an identity source once and settles into one of three states.
// The Guard maps that state to a decision: show a loading indicator, render
// the page, or send the visitor to the login page.
package guard

import (
	"context"
	"strings"
	"sync"
)

// State is the observable state of an identity query.
type State int

const (
	// Pending means the query has not resolved yet.
	Pending State = iota
	// Resolved means the query returned a user.
	Resolved
	// Anonymous means the query returned no user, or failed.
	Anonymous
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "user"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Source answers "who is the current session?".
// A nil user with a nil error means anonymous.
type Source[U any] interface {
	CurrentUser(ctx context.Context) (*U, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc[U any] func(ctx context.Context) (*U, error)

func (f SourceFunc[U]) CurrentUser(ctx context.Context) (*U, error) {
	return f(ctx)
}

// Query is a one-shot identity query. It asks its source at most once and
// never retries. Concurrent and repeated Resolve calls share the result.
type Query[U any] struct {
	source Source[U]

	once  sync.Once
	mu    sync.RWMutex
	state State
	user  *U
	err   error
}

// NewQuery creates a pending query for source.
func NewQuery[U any](source Source[U]) *Query[U] {
	return &Query[U]{
		source: source,
		state:  Pending,
	}
}

// Resolve runs the query if it has not run yet and returns the user, if any.
func (q *Query[U]) Resolve(ctx context.Context) (*U, State) {
	q.once.Do(func() {
		user, err := q.source.CurrentUser(ctx)

		q.mu.Lock()
		defer q.mu.Unlock()
		q.err = err
		if err == nil && user != nil {
			q.user = user
			q.state = Resolved
			return
		}
		q.state = Anonymous
	})
	return q.User(), q.State()
}

// State returns the current state without resolving.
func (q *Query[U]) State() State {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.state
}

// User returns the resolved user, or nil.
func (q *Query[U]) User() *U {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.user
}

// Err returns the error the source reported, if any. It is informational only,
// a failed query is anonymous.
func (q *Query[U]) Err() error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.err
}

// Action is what a page does for a given query state.
type Action int

const (
	// Loading renders a neutral loading indicator and nothing else.
	Loading Action = iota
	// Render renders the protected content.
	Render
	// Redirect sends the visitor to the login page and renders nothing.
	Redirect
)

func (a Action) String() string {
	switch a {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Guard.Decide.
type Decision struct {
	Action   Action
	Location string
}

// Guard protects every page except the login page.
type Guard struct {
	loginPath string
}

// New creates a guard that redirects to loginPath.
func New(loginPath string) *Guard {
	return &Guard{loginPath: loginPath}
}

// LoginPath returns the page anonymous visitors are sent to.
func (g *Guard) LoginPath() string {
	return g.loginPath
}

// Exempt reports whether path is reachable without a session.
func (g *Guard) Exempt(path string) bool {
	return strings.TrimSuffix(path, "/") == g.loginPath
}

// Decide maps a query state to a decision.
func (g *Guard) Decide(state State) Decision {
	switch state {
	case Resolved:
		return Decision{Action: Render}
	case Pending:
		return Decision{Action: Loading}
	default:
		return Decision{Action: Redirect, Location: g.loginPath}
	}
}
