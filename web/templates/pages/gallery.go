package pages

import (
	"github.com/a-h/templ"
	"github.com/jon4hz/keepsake/internal/api/models"
	"github.com/jon4hz/keepsake/web/templates/components"
)

// Gallery lists every tile. Images show their thumbnail, videos a muted preview.
func Gallery(p Page, tiles []models.GalleryTile) templ.Component {
	return Layout(p, component(func(h *html) {
		h.raw(`<section class="gallery"><h1>Moments</h1>`)
		if len(tiles) == 0 {
			h.raw(`<p class="muted">The gallery is still empty.</p>`)
		} else {
			h.raw(`<ul class="tiles">`)
			for _, tile := range tiles {
				h.render(galleryTile(tile))
			}
			h.raw(`</ul>`)
		}
		h.raw(`</section><nav class="story-nav"><a class="button button-ghost" href="/">Start over</a></nav>`)
	}))
}

func galleryTile(tile models.GalleryTile) templ.Component {
	return component(func(h *html) {
		h.raw(`<li class="tile"><a href="`)
		h.url(tile.MediaURL)
		h.raw(`" target="_blank" rel="noopener">`)
		if tile.ThumbURL != "" {
			h.raw(`<img src="`)
			h.url(tile.ThumbURL)
			h.raw(`" alt="`)
			h.text(tile.Name)
			h.raw(`" loading="lazy">`)
		} else {
			h.raw(`<video src="`)
			h.url(tile.MediaURL)
			h.raw(`" muted preload="metadata"></video>`)
		}
		h.raw(`</a><span class="tile-meta">`)
		h.text(components.FormatFileSize(tile.Size))
		h.raw(`</span></li>`)
	})
}
