package models

import "time"

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status string `json:"status"`
	// CacheFreeBytes is the free space left for thumbnails. Omitted when unknown.
	CacheFreeBytes uint64 `json:"cache_free_bytes,omitempty"`
}

// GalleryTile is a gallery file as shown on the gallery page.
type GalleryTile struct {
	Name     string
	Kind     string
	Size     int64
	ModTime  time.Time
	MediaURL string
	ThumbURL string
}
