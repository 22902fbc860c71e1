package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry records when a URL's content was stored so staleness can be judged
// without refetching.
type Entry struct {
	URL     string    `json:"url"`
	SavedAt time.Time `json:"saved_at"`
}

// Cache stores fetched URL content on disk as <key>.meta.json and
// <key>.body where key is sha256(url). It is a simple, deterministic cache
// with no eviction policy; local files are never cached.
type Cache struct {
	Dir string
}

func (c *Cache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func (c *Cache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *Cache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *Cache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// Load returns the cached content for url when an entry exists and is not
// older than maxAge. A maxAge of zero accepts any stored entry.
func (c *Cache) Load(_ context.Context, url string, maxAge time.Duration) (string, bool) {
	if c == nil || c.Dir == "" {
		return "", false
	}
	key := c.key(url)

	metaRaw, err := os.ReadFile(c.metaPath(key))
	if err != nil {
		return "", false
	}
	var e Entry
	if err := json.Unmarshal(metaRaw, &e); err != nil {
		return "", false
	}
	if maxAge > 0 && time.Now().UTC().Sub(e.SavedAt) > maxAge {
		return "", false
	}

	body, err := os.ReadFile(c.bodyPath(key))
	if err != nil {
		return "", false
	}
	return string(body), true
}

// Save stores content for url. The meta file is written last, via a rename,
// so a partially written entry is never considered valid.
func (c *Cache) Save(_ context.Context, url string, content string) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := c.key(url)

	if err := os.WriteFile(c.bodyPath(key), []byte(content), 0o644); err != nil {
		return fmt.Errorf("write body: %w", err)
	}

	meta, err := json.Marshal(Entry{URL: url, SavedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tmp := c.metaPath(key) + ".tmp"
	if err := os.WriteFile(tmp, meta, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, c.metaPath(key))
}

// ClearDir removes the directory and all contents, then recreates it to
// leave a valid empty cache location.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
