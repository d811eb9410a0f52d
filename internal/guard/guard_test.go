package guard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	Name string
}

type countingSource struct {
	calls atomic.Int32
	user  *user
	err   error
	gate  chan struct{}
}

func (s *countingSource) CurrentUser(ctx context.Context) (*user, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	return s.user, s.err
}

func TestQuery_ResolvesUser(t *testing.T) {
	src := &countingSource{user: &user{Name: "GEET"}}
	q := NewQuery[user](src)
	assert.Equal(t, Pending, q.State())
	assert.Nil(t, q.User())

	u, state := q.Resolve(context.Background())
	require.NotNil(t, u)
	assert.Equal(t, "GEET", u.Name)
	assert.Equal(t, Resolved, state)
	assert.NoError(t, q.Err())
}

func TestQuery_Anonymous(t *testing.T) {
	tests := []struct {
		name string
		src  *countingSource
	}{
		{name: "no user", src: &countingSource{}},
		{name: "error", src: &countingSource{err: errors.New("connection refused")}},
		{name: "error with user", src: &countingSource{user: &user{Name: "x"}, err: errors.New("502")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery[user](tt.src)
			u, state := q.Resolve(context.Background())
			assert.Nil(t, u)
			assert.Equal(t, Anonymous, state)
			assert.Equal(t, tt.src.err, q.Err())
		})
	}
}

func TestQuery_NeverRetries(t *testing.T) {
	src := &countingSource{err: errors.New("timeout")}
	q := NewQuery[user](src)

	for range 5 {
		_, state := q.Resolve(context.Background())
		assert.Equal(t, Anonymous, state)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestQuery_ConcurrentResolveSharesResult(t *testing.T) {
	src := &countingSource{user: &user{Name: "GEET"}, gate: make(chan struct{})}
	q := NewQuery[user](src)

	var wg sync.WaitGroup
	results := make([]*user, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = q.Resolve(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, Pending, q.State())
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, u := range results {
		assert.Same(t, results[0], u)
	}
}

func TestSourceFunc(t *testing.T) {
	q := NewQuery[user](SourceFunc[user](func(context.Context) (*user, error) {
		return &user{Name: "fn"}, nil
	}))
	u, state := q.Resolve(context.Background())
	assert.Equal(t, Resolved, state)
	assert.Equal(t, "fn", u.Name)
}

func TestGuard_Decide(t *testing.T) {
	g := New("/login")

	tests := []struct {
		state    State
		expected Decision
	}{
		{state: Pending, expected: Decision{Action: Loading}},
		{state: Resolved, expected: Decision{Action: Render}},
		{state: Anonymous, expected: Decision{Action: Redirect, Location: "/login"}},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, g.Decide(tt.state))
		})
	}
}

func TestGuard_Exempt(t *testing.T) {
	g := New("/login")
	assert.Equal(t, "/login", g.LoginPath())
	assert.True(t, g.Exempt("/login"))
	assert.True(t, g.Exempt("/login/"))
	assert.False(t, g.Exempt("/"))
	assert.False(t, g.Exempt("/gallery"))
	assert.False(t, g.Exempt("/login-now"))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "user", Resolved.String())
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "unknown", State(42).String())

	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "unknown", Action(42).String())
}
