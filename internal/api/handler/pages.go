package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	apiauth "github.com/jon4hz/keepsake/internal/api/auth"
	"github.com/jon4hz/keepsake/internal/api/models"
	"github.com/jon4hz/keepsake/internal/auth"
	"github.com/jon4hz/keepsake/web/templates/pages"
)

// StoryPage is one step of the page sequence.
type StoryPage struct {
	Path  string
	Name  string
	Title string
	Next  string
}

// Story is the order in which the protected pages are visited.
var Story = []StoryPage{
	{Path: "/", Name: "welcome", Title: "Welcome", Next: "/intro"},
	{Path: "/intro", Name: "intro", Title: "Intro", Next: "/main"},
	{Path: "/main", Name: "main", Title: "For you", Next: "/counter"},
	{Path: "/counter", Name: "counter", Title: "Counting", Next: "/birthday-wish"},
	{Path: "/birthday-wish", Name: "birthday-wish", Title: "Happy Birthday", Next: "/remember"},
	{Path: "/remember", Name: "remember", Title: "Remember", Next: "/gallery"},
	{Path: "/gallery", Name: "gallery", Title: "Gallery"},
}

// StoryPageHandler renders one page of the sequence.
func (h *Handler) StoryPageHandler(page StoryPage) apiauth.PageHandler {
	return func(c *gin.Context, user *auth.User) {
		p := pages.Page{Title: page.Title, Name: page.Name, Next: page.Next, User: user}

		c.Header("Content-Type", "text/html")
		if err := h.storyComponent(page, p).Render(c.Request.Context(), c.Writer); err != nil {
			log.Error("Failed to render page", "page", page.Name, "error", err)
		}
	}
}

func (h *Handler) storyComponent(page StoryPage, p pages.Page) templ.Component {
	cel := h.config.Celebration
	switch page.Name {
	case "intro":
		return pages.Intro(p, cel.Recipient)
	case "main":
		return pages.Main(p, cel.Recipient)
	case "counter":
		return pages.CounterPage(p, cel.Recipient, h.counter(time.Now()))
	case "birthday-wish":
		return pages.BirthdayWish(p, cel.Recipient, cel.Message)
	case "remember":
		return pages.Remember(p, cel.VideoURL)
	case "gallery":
		items, err := h.gallery.List()
		if err != nil {
			log.Error("Failed to list gallery", "error", err)
		}
		return pages.Gallery(p, models.ToGalleryTiles(items))
	default:
		return pages.Welcome(p, cel.Recipient)
	}
}

func (h *Handler) counter(now time.Time) *pages.Counter {
	birthday, ok := h.config.Celebration.BirthdayDate()
	if !ok {
		return nil
	}
	next := NextBirthday(birthday, now)
	return &pages.Counter{
		Age:          AgeOn(birthday, now),
		TurningAge:   AgeOn(birthday, next),
		NextBirthday: next,
		DaysAlive:    DaysAlive(birthday, now),
	}
}

// LoginPage renders the login form. Signed in visitors are sent on to the
// page they originally asked for.
func (h *Handler) LoginPage(c *gin.Context) {
	id, err := h.mw.Resolve(c)
	if err != nil {
		log.Error("Failed to resolve session", "error", err)
	}
	if id.Authenticated() {
		c.Redirect(http.StatusFound, apiauth.PopReturnPath(c))
		return
	}

	c.Header("Content-Type", "text/html")
	if err := pages.Login(apiauth.Flashes(c)).Render(c.Request.Context(), c.Writer); err != nil {
		log.Error("Failed to render login page", "error", err)
	}
}

// LoginForm handles the login form for browsers without JavaScript.
// The password is never echoed back.
func (h *Handler) LoginForm(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apiauth.AddFlash(c, msgAccessDenied)
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	res, err := h.authn.Login(c.Request.Context(), req, h.cookies.Token(c))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrValidation) {
			apiauth.AddFlash(c, msgAccessDenied)
		} else {
			log.Error("Login failed", "error", err)
			apiauth.AddFlash(c, msgTryAgain)
		}
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	if err := h.cookies.Issue(c, res.Session); err != nil {
		log.Error("Failed to set session cookie", "error", err)
		apiauth.AddFlash(c, msgTryAgain)
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	c.Redirect(http.StatusSeeOther, apiauth.PopReturnPath(c))
}

// LogoutPage signs the visitor out and returns to the login page.
func (h *Handler) LogoutPage(c *gin.Context) {
	if err := h.authn.Logout(c.Request.Context(), h.cookies.Token(c)); err != nil {
		log.Error("Failed to log out", "error", err)
	}
	h.cookies.Clear(c)
	c.Redirect(http.StatusFound, "/login")
}

// AgeOn returns the age in whole years of someone born on birthday at time t.
func AgeOn(birthday, t time.Time) int {
	t = t.In(birthday.Location())
	age := t.Year() - birthday.Year()
	if t.Month() < birthday.Month() || (t.Month() == birthday.Month() && t.Day() < birthday.Day()) {
		age--
	}
	return max(age, 0)
}

// DaysAlive returns the number of whole days since birthday, never negative.
func DaysAlive(birthday, now time.Time) int64 {
	return max(int64(now.Sub(birthday)/(24*time.Hour)), 0)
}

// NextBirthday returns the start of the next birthday after now, or today if it is today.
// A 29 February birthday falls on 1 March in other years.
func NextBirthday(birthday, now time.Time) time.Time {
	now = now.In(birthday.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, birthday.Location())
	for year := now.Year(); ; year++ {
		next := time.Date(year, birthday.Month(), birthday.Day(), 0, 0, 0, 0, birthday.Location())
		if !next.Before(today) {
			return next
		}
	}
}
