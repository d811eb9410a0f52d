package auth

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/keepsake/internal/config"
)

// FlowSessionName is the cookie holding the return path and flash messages.
// It never carries identity.
const FlowSessionName = "keepsake_flow"

const (
	flowMaxAge    = 600
	returnPathKey = "return_path"
	defaultReturn = "/"
)

// FlowSessions installs the short lived flow cookie session.
func FlowSessions(cfg *config.Config) gin.HandlerFunc {
	store := cookie.NewStore([]byte(cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   flowMaxAge,
		HttpOnly: true,
		Secure:   cfg.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(FlowSessionName, store)
}

// RememberReturnPath stores where to send the visitor after login.
// Anything but a local absolute path is ignored.
func RememberReturnPath(c *gin.Context, path string) {
	if !isLocalPath(path) {
		return
	}
	session := sessions.Default(c)
	session.Set(returnPathKey, path)
	save(session)
}

// PopReturnPath returns and forgets the remembered path, defaulting to "/".
func PopReturnPath(c *gin.Context) string {
	session := sessions.Default(c)
	path, _ := session.Get(returnPathKey).(string)
	if path == "" {
		return defaultReturn
	}
	session.Delete(returnPathKey)
	save(session)
	if !isLocalPath(path) {
		return defaultReturn
	}
	return path
}

// AddFlash queues a message for the next rendered page.
func AddFlash(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	save(session)
}

// Flashes returns and clears the queued messages.
func Flashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	save(session)

	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs
}

func isLocalPath(path string) bool {
	return strings.HasPrefix(path, "/") &&
		!strings.HasPrefix(path, "//") &&
		!strings.HasPrefix(path, "/\\") &&
		!strings.HasPrefix(path, "/login") &&
		!strings.HasPrefix(path, "/logout")
}

func save(session sessions.Session) {
	if err := session.Save(); err != nil {
		log.Error("Failed to save flow session", "error", err)
	}
}
