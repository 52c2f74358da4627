package firmware

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getyourway/scanpad-go/internal/config"
)

// Cache stores downloaded firmware images so repeated updates do not
// re-fetch them.
type Cache struct {
	baseDir string
}

// CacheEntry describes one cached image.
type CacheEntry struct {
	Path       string
	Version    string
	Size       int64
	Downloaded time.Time
}

// DefaultCachePath returns the cache directory.
func DefaultCachePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		cacheDir = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheDir, "scanpad", "firmware"), nil
}

// NewCache opens the cache at the default location.
func NewCache() (*Cache, error) {
	path, err := DefaultCachePath()
	if err != nil {
		return nil, err
	}
	return NewCacheAt(path)
}

// NewCacheAt opens a cache rooted at path, creating it if needed.
func NewCacheAt(path string) (*Cache, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{baseDir: path}, nil
}

// Path returns the cache directory.
func (c *Cache) Path() string {
	return c.baseDir
}

func (c *Cache) entryPath(version string) string {
	safe := strings.ReplaceAll(version, "/", "_")
	return filepath.Join(c.baseDir, fmt.Sprintf("scanpad_%s.bin", safe))
}

// Get returns the cached image for a version, or nil when absent. A
// cached file that fails image validation is discarded.
func (c *Cache) Get(version string) ([]byte, error) {
	path := c.entryPath(version)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cached image: %w", err)
	}
	if err := ValidateImage(data); err != nil {
		config.Debugf("firmware: dropping corrupt cache entry %s: %v", path, err)
		os.Remove(path)
		return nil, nil
	}
	return data, nil
}

// Put stores a validated image under its version.
func (c *Cache) Put(version string, data []byte) (string, error) {
	if err := ValidateImage(data); err != nil {
		return "", err
	}
	path := c.entryPath(version)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize cache entry: %w", err)
	}
	return path, nil
}

// List returns all cached images.
func (c *Cache) List() ([]CacheEntry, error) {
	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var result []CacheEntry
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".bin") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		result = append(result, CacheEntry{
			Path:       filepath.Join(c.baseDir, name),
			Version:    strings.TrimPrefix(strings.TrimSuffix(name, ".bin"), "scanpad_"),
			Size:       info.Size(),
			Downloaded: info.ModTime(),
		})
	}
	return result, nil
}

// Clear removes every cached image.
func (c *Cache) Clear() error {
	entries, err := c.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.Remove(e.Path); err != nil {
			return err
		}
	}
	return nil
}
