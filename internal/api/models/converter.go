package models

import (
	"net/url"

	"github.com/jon4hz/keepsake/internal/gallery"
	"github.com/samber/lo"
)

// ToGalleryTile converts a gallery.Item to a GalleryTile. Videos have no thumbnail.
func ToGalleryTile(item gallery.Item) GalleryTile {
	name := url.PathEscape(item.Name)
	tile := GalleryTile{
		Name:     item.Name,
		Kind:     string(item.Kind),
		Size:     item.Size,
		ModTime:  item.ModTime,
		MediaURL: "/gallery/media/" + name,
	}
	if item.Kind == gallery.KindImage {
		tile.ThumbURL = "/gallery/thumb/" + name
	}
	return tile
}

// ToGalleryTiles converts a slice of gallery.Item to GalleryTiles.
func ToGalleryTiles(items []gallery.Item) []GalleryTile {
	return lo.Map(items, func(item gallery.Item, _ int) GalleryTile {
		return ToGalleryTile(item)
	})
}
