// Package auth carries session and flow state between the browser and the authenticator.
package auth

import (
	"net/http"
	"time"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/jon4hz/keepsake/internal/config"
	"github.com/jon4hz/keepsake/internal/session"
)

// Cookies reads and writes the signed session cookie.
type Cookies struct {
	name   string
	secure bool
	codec  *securecookie.SecureCookie
	now    func() time.Time
}

// NewCookies creates the session cookie codec from the configuration.
func NewCookies(cfg *config.Config) *Cookies {
	// the server-side record decides expiry, not the cookie timestamp
	codec := securecookie.New([]byte(cfg.SessionKey), nil).MaxAge(0)
	return &Cookies{
		name:   cfg.Session.CookieName,
		secure: cfg.Session.SecureCookie,
		codec:  codec,
		now:    time.Now,
	}
}

// Name returns the cookie name.
func (c *Cookies) Name() string {
	return c.name
}

// Token returns the session token carried by the request, or "" if there is
// no cookie or its signature does not verify.
func (c *Cookies) Token(ctx *gin.Context) string {
	raw, err := ctx.Cookie(c.name)
	if err != nil || raw == "" {
		return ""
	}
	var token string
	if err := c.codec.Decode(c.name, raw, &token); err != nil {
		log.Debug("Ignoring session cookie with invalid signature", "error", err)
		return ""
	}
	return token
}

// Issue sets the session cookie for rec. Persistent sessions get Max-Age and
// Expires matching the record, browser sessions get neither.
func (c *Cookies) Issue(ctx *gin.Context, rec *session.Record) error {
	value, err := c.codec.Encode(c.name, rec.Token)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if rec.Persistent {
		maxAge, err := safecast.Convert[int](int64(rec.ExpiresAt.Sub(c.now()) / time.Second))
		if err != nil {
			return err
		}
		cookie.MaxAge = max(maxAge, 1)
		cookie.Expires = rec.ExpiresAt.UTC()
	}

	http.SetCookie(ctx.Writer, cookie)
	return nil
}

// Clear removes the session cookie from the browser.
func (c *Cookies) Clear(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
