package resource

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kiln-gfx/kiln/internal/logger"
)

// Loader reads image files from a set of search directories and
// registers them with a System. Raw file bytes are cached so repeated
// loads of shared assets hit the disk once.
type Loader struct {
	system *System
	dirs   []string
	cache  *byteCache
	mu     sync.RWMutex
}

// NewLoader creates a loader feeding the given system.
func NewLoader(system *System) *Loader {
	return &Loader{
		system: system,
		cache:  newByteCache(),
	}
}

// AddDir appends a search directory. Directories are searched in
// reverse order (last added = highest priority).
func (l *Loader) AddDir(dir string) {
	l.mu.Lock()
	l.dirs = append(l.dirs, dir)
	l.mu.Unlock()
}

// LoadImage reads, decodes, and registers an image file under id.
// TGA and PNG files are supported, keyed by extension.
func (l *Loader) LoadImage(id, path string) error {
	data, err := l.read(path)
	if err != nil {
		return err
	}

	var img *Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		img, err = DecodeTGA(id, data)
	case ".png":
		img, err = decodeStd(id, data)
	default:
		err = fmt.Errorf("unsupported image format: %s", path)
	}
	if err != nil {
		return err
	}

	logger.Debug("image loaded",
		zap.String("id", id),
		zap.String("path", path),
	)
	return l.system.AddImage(img)
}

// read fetches a file through the byte cache, searching directories in
// priority order.
func (l *Loader) read(path string) ([]byte, error) {
	if data, ok := l.cache.get(path); ok {
		return data, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.dirs) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(l.dirs[i], path))
		if err == nil {
			l.cache.set(path, data)
			return data, nil
		}
	}
	return nil, fmt.Errorf("file not found: %s", path)
}

// Stats returns cache hit/miss counters.
func (l *Loader) Stats() (hits, misses int) {
	return l.cache.stats()
}

// decodeStd decodes via the registered stdlib image formats and
// converts to tightly packed RGBA.
func decodeStd(id string, data []byte) (*Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", id, err)
	}

	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)

	return &Image{
		ID:     id,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}, nil
}

// byteCache is a concurrency-safe raw file cache with hit/miss stats.
type byteCache struct {
	data   map[string][]byte
	hits   int
	misses int
	mu     sync.Mutex
}

func newByteCache() *byteCache {
	return &byteCache{data: make(map[string][]byte)}
}

func (c *byteCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

func (c *byteCache) set(key string, data []byte) {
	c.mu.Lock()
	c.data[key] = data
	c.mu.Unlock()
}

func (c *byteCache) stats() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
