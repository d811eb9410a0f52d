package pages

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/jon4hz/keepsake/internal/api/models"
	"github.com/jon4hz/keepsake/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestLayout(t *testing.T) {
	body := render(t, Intro(Page{Title: "Intro", Name: "intro", Next: "/main", User: &auth.User{Username: "GEET"}}, "Geet"))

	assert.Contains(t, body, "<title>Intro · Keepsake</title>")
	assert.Contains(t, body, `class="page page-intro"`)
	assert.Contains(t, body, `<a class="button" href="/main">Continue</a>`)
	assert.Contains(t, body, "Signed in as GEET")
	assert.Contains(t, body, `href="/logout"`)
}

func TestLayout_Anonymous(t *testing.T) {
	body := render(t, Main(Page{Title: "For you", Name: "main"}, "Geet"))

	assert.NotContains(t, body, "Signed in as")
	assert.NotContains(t, body, "story-nav")
}

func TestEscaping(t *testing.T) {
	body := render(t, BirthdayWish(Page{Title: "<b>"}, `<script>alert("x")</script>`, "a & b"))

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "a &amp; b")
	assert.Contains(t, body, "<title>&lt;b&gt; · Keepsake</title>")
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name    string
		flashes []string
		hidden  bool
	}{
		{name: "no flashes", hidden: true},
		{name: "with flash", flashes: []string{"Access Denied"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := render(t, Login(tt.flashes))

			assert.Contains(t, body, `id="login-form"`)
			assert.Contains(t, body, `name="rememberMe"`)
			assert.Contains(t, body, `/static/login.js`)
			assert.Equal(t, tt.hidden, bytes.Contains([]byte(body), []byte(`role="alert" hidden`)))
			for _, f := range tt.flashes {
				assert.Contains(t, body, f)
			}
		})
	}
}

func TestCounterPage(t *testing.T) {
	p := Page{Title: "Counting", Name: "counter"}

	body := render(t, CounterPage(p, "Geet", nil))
	assert.Contains(t, body, "Every year so far has been worth counting.")
	assert.NotContains(t, body, "count-up")

	body = render(t, CounterPage(p, "Geet", &Counter{
		Age:          25,
		TurningAge:   26,
		NextBirthday: time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
		DaysAlive:    9262,
	}))
	assert.Contains(t, body, `data-target="25"`)
	assert.Contains(t, body, "Geet turns 26th on 15 June 2026")
	assert.Contains(t, body, "That is 9,262 days of being wonderful.")
}

func TestRemember(t *testing.T) {
	p := Page{Title: "Remember", Name: "remember"}

	assert.NotContains(t, render(t, Remember(p, "")), "<video")
	assert.Contains(t, render(t, Remember(p, "/gallery/media/us.mp4")), `src="/gallery/media/us.mp4"`)
	assert.NotContains(t, render(t, Remember(p, "javascript:alert(1)")), "javascript:")
}

func TestGallery(t *testing.T) {
	p := Page{Title: "Gallery", Name: "gallery"}

	assert.Contains(t, render(t, Gallery(p, nil)), "The gallery is still empty.")

	body := render(t, Gallery(p, []models.GalleryTile{
		{Name: "beach.jpg", Kind: "image", Size: 1500, MediaURL: "/gallery/media/beach.jpg", ThumbURL: "/gallery/thumb/beach.jpg"},
		{Name: "party.mp4", Kind: "video", Size: 3_200_000, MediaURL: "/gallery/media/party.mp4"},
	}))
	assert.Contains(t, body, `<img src="/gallery/thumb/beach.jpg" alt="beach.jpg" loading="lazy">`)
	assert.Contains(t, body, `<video src="/gallery/media/party.mp4" muted preload="metadata">`)
	assert.Contains(t, body, "1.5 kB")
	assert.Contains(t, body, "3.2 MB")
	assert.NotContains(t, body, "still empty")
}

func TestWelcome(t *testing.T) {
	body := render(t, Welcome(Page{Title: "Welcome", Name: "welcome", Next: "/intro"}, "Geet"))

	assert.Contains(t, body, "Something was made for Geet.")
	assert.Contains(t, body, `href="/intro">Begin</a>`)
	assert.Contains(t, body, `href="/gallery">Skip to the gallery</a>`)
}
