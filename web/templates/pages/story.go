package pages

import (
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/jon4hz/keepsake/web/templates/components"
)

// Welcome is the first page of the story.
func Welcome(p Page, recipient string) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<section class="hero"><h1>Hello, you!</h1><p class="lead">Something was made for `)
		h.text(recipient)
		h.raw(`.</p></section><nav class="story-nav"><a class="button" href="`)
		h.url(p.Next)
		h.raw(`">Begin</a><a class="button button-ghost" href="/gallery">Skip to the gallery</a></nav>`)
	}))
}

func Intro(p Page, recipient string) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<section class="hero ocean"><p class="lead">Ready to swirl around in the deep sea of the surprise that is made for you, `)
		h.text(recipient)
		h.raw(`?</p></section>`)
		next(h, p)
	}))
}

func Main(p Page, recipient string) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<section class="hero"><p class="muted">Scroll down slowly</p><h1>This one is for `)
		h.text(recipient)
		h.raw(`</h1></section>`)
		next(h, p)
	}))
}

// Counter holds the numbers shown on the counter page.
type Counter struct {
	Age          int
	TurningAge   int
	NextBirthday time.Time
	DaysAlive    int64
}

// CounterPage counts the recipient's years. A nil counter means no birthday
// is configured.
func CounterPage(p Page, recipient string, counter *Counter) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<section class="hero counter-container">`)
		if counter == nil {
			h.raw(`<p class="lead">Every year so far has been worth counting.</p>`)
		} else {
			age := strconv.Itoa(counter.Age)
			h.raw(`<p class="muted">Counting every year so far</p><div class="count-up" data-target="`)
			h.text(age)
			h.raw(`">`)
			h.text(age)
			h.raw(`</div><p class="lead">`)
			h.text(recipient)
			h.raw(` turns `)
			h.text(components.FormatOrdinal(counter.TurningAge))
			h.raw(` on `)
			h.text(components.FormatDate(counter.NextBirthday))
			h.raw(`, `)
			h.text(components.FormatRelativeTime(counter.NextBirthday))
			h.raw(`.</p><p class="muted">That is `)
			h.text(components.FormatCount(counter.DaysAlive))
			h.raw(` days of being wonderful.</p>`)
		}
		h.raw(`</section>`)
		next(h, p)
	}))
}

func BirthdayWish(p Page, recipient, message string) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<section class="hero wish"><h1>Happy birthday, `)
		h.text(recipient)
		h.raw(`</h1><p class="lead">`)
		h.text(message)
		h.raw(`</p></section>`)
		next(h, p)
	}))
}

// Remember shows the memory video when one is configured.
func Remember(p Page, videoURL string) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<section class="hero"><h1>And yes, remember this :)</h1>`)
		if videoURL != "" {
			h.raw(`<video class="memory" src="`)
			h.url(videoURL)
			h.raw(`" controls playsinline preload="metadata"></video>`)
		}
		h.raw(`</section>`)
		next(h, p)
	}))
}
