package models

import (
	"testing"

	"github.com/jon4hz/keepsake/internal/gallery"
	"github.com/stretchr/testify/assert"
)

func TestToGalleryTiles(t *testing.T) {
	tiles := ToGalleryTiles([]gallery.Item{
		{Name: "beach day.jpg", Kind: gallery.KindImage, Size: 10},
		{Name: "clip.mp4", Kind: gallery.KindVideo, Size: 20},
	})

	assert.Len(t, tiles, 2)
	assert.Equal(t, "/gallery/media/beach%20day.jpg", tiles[0].MediaURL)
	assert.Equal(t, "/gallery/thumb/beach%20day.jpg", tiles[0].ThumbURL)
	assert.Equal(t, "image", tiles[0].Kind)

	assert.Equal(t, "/gallery/media/clip.mp4", tiles[1].MediaURL)
	assert.Empty(t, tiles[1].ThumbURL)
	assert.Equal(t, int64(20), tiles[1].Size)
}

func TestToGalleryTiles_Empty(t *testing.T) {
	assert.Empty(t, ToGalleryTiles(nil))
}
