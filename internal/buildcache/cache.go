// Package buildcache caches per-file transform results between builds.
//
// A source file whose content hash, config hash and schema version all match
// the previous run produced the same generated code, so its scan and
// generation can be skipped. The cache is intentionally conservative: any
// mismatch invalidates the entry, and a brand registration change bumps the
// config hash via the registration digest, since a registered validator can
// affect files other than its own.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-json-experiment/json"
)

// SchemaVersion is bumped when the cache format or the generated-code shape
// changes. A mismatch forces a full rebuild.
const SchemaVersion = 1

// Entry records one source file's transform result.
type Entry struct {
	// SourceHash is the SHA-256 hex digest of the source file content.
	SourceHash string `json:"sourceHash"`

	// CallCount is the number of marker calls generated for the file.
	CallCount int `json:"callCount"`
}

// Cache is the on-disk transform cache.
type Cache struct {
	// V is the schema version. Must match SchemaVersion or cache is invalid.
	V int `json:"v"`

	// ConfigHash digests the tscodec config content plus the brand
	// registration sources. Empty string means no config file was used.
	ConfigHash string `json:"configHash"`

	// Files maps source file paths to their transform entries.
	Files map[string]Entry `json:"files"`
}

// CachePath returns the cache file path for a given output directory. If
// outDir is empty it falls back to a sibling of the tsconfig.
func CachePath(outDir string, tsconfigPath string) string {
	if outDir != "" {
		return filepath.Join(outDir, ".tscodec-cache")
	}
	dir := filepath.Dir(tsconfigPath)
	base := filepath.Base(tsconfigPath)
	name := strings.TrimSuffix(base, ".json")
	return filepath.Join(dir, name+".tscodec-cache")
}

// Load reads and parses a cache file from disk. Returns nil for any failure;
// callers treat nil as a cache miss and transform from scratch.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	if c.V != SchemaVersion {
		return nil
	}

	return &c
}

// Save writes the cache to disk atomically (write to temp, rename). A failed
// save just means the next build won't benefit from caching.
func Save(path string, cache *Cache) error {
	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}

	return nil
}

// Delete removes the cache file from disk. Errors are ignored.
func Delete(path string) {
	os.Remove(path)
}

// Valid reports whether a file's cached entry can be trusted: schema and
// config hash must match, and the source content must be unchanged.
func (c *Cache) Valid(configHash, file, sourceHash string) bool {
	if c == nil || c.V != SchemaVersion || c.ConfigHash != configHash {
		return false
	}
	entry, ok := c.Files[file]
	return ok && entry.SourceHash == sourceHash
}

// Put records a file's transform result.
func (c *Cache) Put(file string, entry Entry) {
	if c.Files == nil {
		c.Files = make(map[string]Entry)
	}
	c.Files[file] = entry
}

// New creates an empty Cache with the current schema version.
func New(configHash string) *Cache {
	return &Cache{
		V:          SchemaVersion,
		ConfigHash: configHash,
		Files:      make(map[string]Entry),
	}
}

// HashBytes computes the SHA-256 hex digest of content.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashFile computes the SHA-256 hex digest of a file's contents. Returns
// empty string if the file can't be read.
func HashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return HashBytes(data)
}

// ConfigHash digests the config file content plus every brand registration
// body, sorted by brand name so map order doesn't leak into the hash.
func ConfigHash(configData []byte, registrations map[string]string) string {
	h := sha256.New()
	h.Write(configData)
	brands := make([]string, 0, len(registrations))
	for b := range registrations {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	for _, b := range brands {
		h.Write([]byte{0})
		h.Write([]byte(b))
		h.Write([]byte{0})
		h.Write([]byte(registrations[b]))
	}
	return hex.EncodeToString(h.Sum(nil))
}
