package buildcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCachePath(t *testing.T) {
	t.Run("with outDir", func(t *testing.T) {
		got := CachePath("/project/dist", "/project/tsconfig.json")
		if got != "/project/dist/.tscodec-cache" {
			t.Errorf("CachePath = %q", got)
		}
	})

	t.Run("without outDir fallback", func(t *testing.T) {
		tests := []struct {
			tsconf string
			want   string
		}{
			{"/foo/tsconfig.json", "/foo/tsconfig.tscodec-cache"},
			{"/foo/tsconfig.build.json", "/foo/tsconfig.build.tscodec-cache"},
			{"tsconfig.json", "tsconfig.tscodec-cache"},
		}
		for _, tt := range tests {
			got := CachePath("", tt.tsconf)
			if got != tt.want {
				t.Errorf("CachePath(\"\", %q) = %q, want %q", tt.tsconf, got, tt.want)
			}
		}
	})
}

func TestSaveLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".tscodec-cache")

	c := New("confhash")
	c.Put("/src/a.ts", Entry{SourceHash: "h1", CallCount: 2})
	c.Put("/src/b.ts", Entry{SourceHash: "h2"})

	if err := Save(path, c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Load(path)
	if loaded == nil {
		t.Fatal("Load returned nil for freshly saved cache")
	}
	if loaded.ConfigHash != "confhash" {
		t.Errorf("ConfigHash = %q", loaded.ConfigHash)
	}
	if e := loaded.Files["/src/a.ts"]; e.SourceHash != "h1" || e.CallCount != 2 {
		t.Errorf("entry = %+v", e)
	}
	if len(loaded.Files) != 2 {
		t.Errorf("expected 2 entries, got %d", len(loaded.Files))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if c := Load(filepath.Join(t.TempDir(), "nope")); c != nil {
		t.Errorf("expected nil for missing file, got %+v", c)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tscodec-cache")
	os.WriteFile(path, []byte("{not json"), 0644)
	if c := Load(path); c != nil {
		t.Errorf("expected nil for corrupt file, got %+v", c)
	}
}

func TestLoadVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tscodec-cache")
	os.WriteFile(path, []byte(`{"v":999,"configHash":"x","files":{}}`), 0644)
	if c := Load(path); c != nil {
		t.Errorf("expected nil for version mismatch, got %+v", c)
	}
}

func TestValid(t *testing.T) {
	c := New("conf")
	c.Put("/src/a.ts", Entry{SourceHash: "h1", CallCount: 1})

	if !c.Valid("conf", "/src/a.ts", "h1") {
		t.Error("expected valid entry")
	}
	if c.Valid("other", "/src/a.ts", "h1") {
		t.Error("config hash mismatch should invalidate")
	}
	if c.Valid("conf", "/src/a.ts", "h2") {
		t.Error("source hash mismatch should invalidate")
	}
	if c.Valid("conf", "/src/missing.ts", "h1") {
		t.Error("missing file should be invalid")
	}

	var nilCache *Cache
	if nilCache.Valid("conf", "/src/a.ts", "h1") {
		t.Error("nil cache should be invalid")
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tscodec-cache")
	os.WriteFile(path, []byte("{}"), 0644)
	Delete(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected cache file removed")
	}
	// Deleting a missing file is a no-op.
	Delete(path)
}

func TestHashBytes(t *testing.T) {
	h1 := HashBytes([]byte("hello"))
	h2 := HashBytes([]byte("hello"))
	h3 := HashBytes([]byte("world"))
	if h1 != h2 {
		t.Error("same content produced different hashes")
	}
	if h1 == h3 {
		t.Error("different content produced same hash")
	}
	if len(h1) != 64 {
		t.Errorf("expected sha256 hex digest, got %d chars", len(h1))
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.txt")
	os.WriteFile(path, []byte("hello world"), 0644)

	if h := HashFile(path); h != HashBytes([]byte("hello world")) {
		t.Error("HashFile disagrees with HashBytes")
	}
	if h := HashFile(filepath.Join(dir, "nonexistent")); h != "" {
		t.Errorf("HashFile returned %q for non-existent file, want empty", h)
	}
}

func TestConfigHashRegistrationOrder(t *testing.T) {
	cfg := []byte(`{"transform":{"include":["src/**/*.ts"]}}`)
	a := ConfigHash(cfg, map[string]string{"email": "body1", "uuid": "body2"})
	b := ConfigHash(cfg, map[string]string{"uuid": "body2", "email": "body1"})
	if a != b {
		t.Error("registration map order leaked into the hash")
	}

	c := ConfigHash(cfg, map[string]string{"email": "changed", "uuid": "body2"})
	if a == c {
		t.Error("registration body change did not change the hash")
	}

	d := ConfigHash([]byte("other"), map[string]string{"email": "body1", "uuid": "body2"})
	if a == d {
		t.Error("config content change did not change the hash")
	}
}
