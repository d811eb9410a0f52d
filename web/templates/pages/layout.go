package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/jon4hz/keepsake/internal/auth"
)

// Page is what every page shares: the document title, the CSS name of the
// page, the link to the next page and the signed in user.
type Page struct {
	Title string
	Name  string
	Next  string
	User  *auth.User
}

// html writes markup to w and keeps the first error.
type html struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// url writes a sanitized attribute value.
func (h *html) url(u string) {
	h.text(string(templ.URL(u)))
}

func (h *html) render(c templ.Component) {
	if h.err == nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func component(fn func(h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// Layout wraps body in the document shared by every page.
func Layout(p Page, body templ.Component) templ.Component {
	return component(func(h *html) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1.0"><title>`)
		h.text(p.Title)
		h.raw(` · Keepsake</title><link rel="stylesheet" href="/static/style.css"></head>`)
		h.raw(`<body class="page page-`)
		h.text(p.Name)
		h.raw(`"><main class="stage">`)
		h.render(body)
		h.raw(`</main>`)
		if p.User != nil {
			h.raw(`<footer class="session-bar"><span>Signed in as `)
			h.text(p.User.Username)
			h.raw(`</span><a href="/logout">Sign out</a></footer>`)
		}
		h.raw(`</body></html>`)
	})
}

// next links to the following page of the story, if there is one.
func next(h *html, p Page) {
	if p.Next == "" {
		return
	}
	h.raw(`<nav class="story-nav"><a class="button" href="`)
	h.url(p.Next)
	h.raw(`">Continue</a></nav>`)
}
