package pages

import (
	"strings"

	"github.com/a-h/templ"
)

// Login renders the sign in form. Flashes are shown above the form.
func Login(flashes []string) templ.Component {
	p := Page{Title: "Sign in", Name: "login"}
	return Layout(p, component(func(h *html) {
		h.raw(`<section class="card login-card"><h1>Who goes there?</h1>`)
		h.raw(`<p class="muted">This place is made for exactly one person.</p>`)
		h.raw(`<p id="login-error" class="alert" role="alert"`)
		if len(flashes) == 0 {
			h.raw(` hidden`)
		}
		h.raw(`>`)
		h.text(strings.Join(flashes, " "))
		h.raw(`</p>`)

		h.raw(`<form id="login-form" method="post" action="/login" autocomplete="off">`)
		h.raw(`<label for="username">Username</label>`)
		h.raw(`<input id="username" name="username" type="text" placeholder="Who are you?" required autofocus>`)
		h.raw(`<label for="password">Password</label>`)
		h.raw(`<input id="password" name="password" type="password" placeholder="The secret code" required>`)
		h.raw(`<label class="checkbox"><input id="rememberMe" name="rememberMe" type="checkbox" value="true"> Remember me for 30 days</label>`)
		h.raw(`<button class="button" type="submit">Enter</button></form></section>`)
		h.raw(`<script src="/static/login.js" defer></script>`)
	}))
}
