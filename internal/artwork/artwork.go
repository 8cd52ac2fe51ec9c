// Package artwork keeps item images on disk for desktop integrations that
// only accept local files.
package artwork

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"

	"github.com/llehouerou/jellywaves/internal/media"
)

const maxWidth = 512

// Fetcher downloads the primary image of an item.
type Fetcher interface {
	Image(ctx context.Context, item media.Item, maxWidth int) ([]byte, error)
}

// Cache stores one image file per item and image tag.
type Cache struct {
	dir   string
	fetch Fetcher
	mu    sync.Mutex
}

// NewCache creates a cache under $XDG_CACHE_HOME/jellywaves/artwork.
func NewCache(fetch Fetcher) (*Cache, error) {
	marker, err := xdg.CacheFile(filepath.Join("jellywaves", "artwork", ".keep"))
	if err != nil {
		return nil, err
	}
	return NewCacheDir(filepath.Dir(marker), fetch), nil
}

// NewCacheDir creates a cache in dir.
func NewCacheDir(dir string, fetch Fetcher) *Cache {
	return &Cache{dir: dir, fetch: fetch}
}

// Path returns the local file holding the item's image, downloading it on
// first use. Returns "" when the item has no image.
func (c *Cache) Path(ctx context.Context, item media.Item) (string, error) {
	if item.ImageTag == "" || item.ID == "" {
		return "", nil
	}
	path := filepath.Join(c.dir, fileName(item))

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	data, err := c.fetch.Image(ctx, item, maxWidth)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(c.dir, ".artwork-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

// fileName derives a stable file name; a new image tag gets a new file.
func fileName(item media.Item) string {
	clean := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return clean.Replace(item.ID) + "-" + clean.Replace(item.ImageTag) + ".jpg"
}
