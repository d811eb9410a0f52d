package auth

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/keepsake/internal/auth"
	"github.com/jon4hz/keepsake/internal/guard"
)

// PageHandler renders a protected page for a signed in user.
type PageHandler func(c *gin.Context, user *auth.User)

// Middleware resolves the identity of requests and guards protected pages.
type Middleware struct {
	authn   *auth.Authenticator
	cookies *Cookies
	guard   *guard.Guard
}

// NewMiddleware creates a new Middleware.
func NewMiddleware(authn *auth.Authenticator, cookies *Cookies, g *guard.Guard) *Middleware {
	return &Middleware{
		authn:   authn,
		cookies: cookies,
		guard:   g,
	}
}

// Resolve returns the identity of the request.
// A cookie that no longer maps to a valid session is removed from the browser.
func (m *Middleware) Resolve(c *gin.Context) (auth.Identity, error) {
	token := m.cookies.Token(c)
	id, err := m.authn.CurrentUser(c.Request.Context(), token)
	if err != nil {
		return auth.Anonymous, err
	}
	if !id.Authenticated() {
		if _, cookieErr := c.Cookie(m.cookies.Name()); cookieErr == nil {
			m.cookies.Clear(c)
		}
	}
	return id, nil
}

// Query returns a one-shot identity query bound to the request.
func (m *Middleware) Query(c *gin.Context) *guard.Query[auth.User] {
	return guard.NewQuery[auth.User](guard.SourceFunc[auth.User](func(context.Context) (*auth.User, error) {
		id, err := m.Resolve(c)
		return id.User, err
	}))
}

// Page guards a protected page. Anonymous visitors are sent to the login
// page and nothing of the page is rendered.
func (m *Middleware) Page(h PageHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.guard.Exempt(c.Request.URL.Path) {
			h(c, nil)
			return
		}

		q := m.Query(c)
		user, state := q.Resolve(c.Request.Context())
		if err := q.Err(); err != nil {
			log.Error("Failed to resolve session", "path", c.Request.URL.Path, "error", err)
		}

		decision := m.guard.Decide(state)
		switch decision.Action {
		case guard.Render:
			h(c, user)
		case guard.Redirect:
			if c.Request.Method == http.MethodGet {
				RememberReturnPath(c, c.Request.URL.RequestURI())
			}
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
		default:
			c.AbortWithStatus(http.StatusServiceUnavailable)
		}
	}
}
