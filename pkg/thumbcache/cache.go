// Package thumbcache stores downscaled thumbnails on disk, keyed by the MD5 of the source's absolute path.
// Entries older than their source are treated as missing and are overwritten on the next save.
package thumbcache

import (
	"crypto/md5"
	"encoding/hex"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/nitrohydra/config"
	"github.com/dixieflatline76/nitrohydra/util/log"
)

// Cache is a content-addressed thumbnail store rooted at a directory.
// It is safe for concurrent use: each source maps to its own file.
type Cache struct {
	dir string
}

// New creates a Cache rooted at dir. The directory is created lazily on the first save.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	return c.dir
}

// Key returns the stable filename stem for a source path. The digest is used for naming only.
func Key(source string) string {
	if abs, err := filepath.Abs(source); err == nil {
		source = abs
	}
	sum := md5.Sum([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Path returns the cache file path for a source path.
func (c *Cache) Path(source string) string {
	return filepath.Join(c.dir, Key(source)+config.ThumbnailExt)
}

// Load returns the cached thumbnail for source. It reports false if there is no entry,
// if the entry is older than the source, or if the entry cannot be decoded.
func (c *Cache) Load(source string) (image.Image, bool) {
	path := c.Path(source)
	cached, ok := modTime(path)
	if !ok {
		return nil, false
	}
	src, ok := modTime(source)
	if !ok {
		return nil, false
	}
	if cached.Before(src) {
		log.Debugf("Cache: stale entry for %s", source)
		return nil, false
	}

	img, err := imaging.Open(path)
	if err != nil {
		log.Debugf("Cache: failed to decode %s: %v", path, err)
		return nil, false
	}
	return img, true
}

// Save writes thumb as the cache entry for source. Failures are logged and otherwise ignored.
func (c *Cache) Save(source string, thumb image.Image) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		log.Debugf("Cache: failed to create %s: %v", c.dir, err)
		return
	}
	path := c.Path(source)
	if err := imaging.Save(thumb, path); err != nil {
		log.Debugf("Cache: failed to save %s: %v", path, err)
	}
}

func modTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
