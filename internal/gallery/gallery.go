// Package gallery lists the media shown on the gallery page and scales thumbnails.
package gallery

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/jon4hz/keepsake/internal/config"
	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/disk"
)

var (
	// ErrNotFound is returned for names that do not exist in the gallery.
	ErrNotFound = errors.New("media not found")
	// ErrInvalidName is returned for names that are not a plain gallery file name.
	ErrInvalidName = errors.New("invalid media name")
)

// Kind distinguishes pictures from videos.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var extensions = map[string]Kind{
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".gif":  KindImage,
	".mp4":  KindVideo,
	".webm": KindVideo,
	".mov":  KindVideo,
}

const (
	jpegQuality = 85
	tmpPrefix   = "tmp_"
)

// Item is a single file in the gallery.
type Item struct {
	Name    string
	Kind    Kind
	Size    int64
	ModTime time.Time
}

// Gallery serves files from a directory and caches scaled thumbnails on disk.
type Gallery struct {
	dir       string
	cacheDir  string
	maxWidth  int
	maxHeight int
}

// New creates a gallery for the configured directory.
func New(cfg *config.GalleryConfig) *Gallery {
	if err := os.MkdirAll(cfg.ThumbnailCache, 0o755); err != nil {
		log.Error("Failed to create thumbnail cache directory", "error", err)
	}
	return &Gallery{
		dir:       cfg.Path,
		cacheDir:  cfg.ThumbnailCache,
		maxWidth:  cfg.ThumbnailWidth,
		maxHeight: cfg.ThumbnailHeight,
	}
}

// List returns the supported files of the gallery directory sorted by name.
// A missing directory is an empty gallery.
func (g *Gallery) List() ([]Item, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Gallery directory does not exist", "path", g.dir)
			return []Item{}, nil
		}
		return nil, fmt.Errorf("failed to read gallery directory: %w", err)
	}

	media := lo.Filter(entries, func(e os.DirEntry, _ int) bool {
		_, ok := kindOf(e.Name())
		return e.Type().IsRegular() && ok
	})

	items := make([]Item, 0, len(media))
	for _, e := range media {
		info, err := e.Info()
		if err != nil {
			log.Warn("Failed to stat gallery file", "name", e.Name(), "error", err)
			continue
		}
		kind, _ := kindOf(e.Name())
		items = append(items, Item{
			Name:    e.Name(),
			Kind:    kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// MediaPath returns the path of the named gallery file.
func (g *Gallery) MediaPath(name string) (string, error) {
	path, _, err := g.lookup(name)
	return path, err
}

// ThumbnailPath returns the path of a scaled copy of the named image, creating it if needed.
func (g *Gallery) ThumbnailPath(name string) (string, error) {
	src, info, err := g.lookup(name)
	if err != nil {
		return "", err
	}
	if kind, _ := kindOf(name); kind != KindImage {
		return "", fmt.Errorf("%w: %s has no thumbnail", ErrInvalidName, name)
	}

	cachePath := g.cachePath(name, info)
	if _, err := os.Stat(cachePath); err == nil {
		log.Debug("Using cached thumbnail", "name", name)
		return cachePath, nil
	}

	if err := g.scale(src, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

func (g *Gallery) lookup(name string) (string, fs.FileInfo, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", nil, ErrInvalidName
	}
	if _, ok := kindOf(name); !ok {
		return "", nil, ErrInvalidName
	}

	path := filepath.Join(g.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, ErrNotFound
		}
		return "", nil, err
	}
	if !info.Mode().IsRegular() {
		return "", nil, ErrNotFound
	}
	return path, info, nil
}

// cachePath keys the thumbnail on name, size and modification time so a replaced file gets a fresh one.
func (g *Gallery) cachePath(name string, info fs.FileInfo) string {
	hash := md5.Sum(fmt.Appendf(nil, "%s|%d|%d|%dx%d", name, info.Size(), info.ModTime().UnixNano(), g.maxWidth, g.maxHeight)) //nolint:gosec
	return filepath.Join(g.cacheDir, fmt.Sprintf("%x%s", hash, strings.ToLower(filepath.Ext(name))))
}

func (g *Gallery) scale(src, dst string) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	thumb := img
	if bounds.Dx() > g.maxWidth || bounds.Dy() > g.maxHeight {
		thumb = imaging.Fit(img, g.maxWidth, g.maxHeight, imaging.Lanczos)
	}

	if err := os.MkdirAll(g.cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create thumbnail cache directory: %w", err)
	}

	tmp := filepath.Join(filepath.Dir(dst), tmpPrefix+filepath.Base(dst))
	defer os.Remove(tmp) //nolint:errcheck

	if err := imaging.Save(thumb, tmp, imaging.JPEGQuality(jpegQuality), imaging.PNGCompressionLevel(6)); err != nil {
		return fmt.Errorf("failed to save thumbnail: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("failed to move thumbnail: %w", err)
	}

	log.Debug("Cached thumbnail", "src", src,
		"original", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
		"cached", fmt.Sprintf("%dx%d", thumb.Bounds().Dx(), thumb.Bounds().Dy()))
	return nil
}

// CleanupThumbnails removes cached thumbnails older than maxAge.
func (g *Gallery) CleanupThumbnails(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(g.cacheDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// a thumbnail being written right now
		if d.IsDir() || strings.HasPrefix(d.Name(), tmpPrefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return removed, err
}

// CacheDiskUsage reports the usage of the file system holding the thumbnail cache.
// The cache directory is created if it does not exist yet.
func (g *Gallery) CacheDiskUsage(ctx context.Context) (*disk.UsageStat, error) {
	if err := os.MkdirAll(g.cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail cache: %w", err)
	}
	usage, err := disk.UsageWithContext(ctx, g.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage of %s: %w", g.cacheDir, err)
	}
	return usage, nil
}

func kindOf(name string) (Kind, bool) {
	kind, ok := extensions[strings.ToLower(filepath.Ext(name))]
	return kind, ok
}
