package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestBuildSnapshot(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "foo.ts"), []byte("export const x = 1;"), 0644)
	os.WriteFile(filepath.Join(dir, "bar.txt"), []byte("not ts"), 0644)

	w := New([]string{dir}, []string{".ts"}, 100*time.Millisecond, nil)
	snap := w.buildSnapshot()

	if len(snap) != 1 {
		t.Fatalf("expected 1 file in snapshot, got %d", len(snap))
	}
	tsPath := filepath.Join(dir, "foo.ts")
	if _, ok := snap[tsPath]; !ok {
		t.Fatalf("expected %s in snapshot", tsPath)
	}
}

func TestBuildSnapshotSubDirs(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "sub")
	os.MkdirAll(subDir, 0755)
	os.WriteFile(filepath.Join(dir, "root.ts"), []byte("export const a = 1;"), 0644)
	os.WriteFile(filepath.Join(subDir, "nested.ts"), []byte("export const b = 2;"), 0644)
	os.WriteFile(filepath.Join(subDir, "style.css"), []byte("body {}"), 0644)

	w := New([]string{dir}, []string{".ts"}, 100*time.Millisecond, nil)
	snap := w.buildSnapshot()

	if len(snap) != 2 {
		t.Fatalf("expected 2 files in snapshot, got %d", len(snap))
	}
}

func TestBuildSnapshotMultipleExtensions(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.ts"), []byte("a"), 0644)
	os.WriteFile(filepath.Join(dir, "b.tsx"), []byte("b"), 0644)
	os.WriteFile(filepath.Join(dir, "c.js"), []byte("c"), 0644)

	w := New([]string{dir}, []string{".ts", ".tsx"}, 100*time.Millisecond, nil)
	snap := w.buildSnapshot()

	if len(snap) != 2 {
		t.Fatalf("expected 2 files in snapshot, got %d", len(snap))
	}
}

func TestDiffCreate(t *testing.T) {
	old := map[string]fileInfo{}
	next := map[string]fileInfo{
		"/a.ts": {modTime: time.Now(), size: 10},
	}
	events := diff(old, next)
	if len(events) != 1 || events[0].Op != "create" {
		t.Errorf("expected 1 create event, got %v", events)
	}
}

func TestDiffWrite(t *testing.T) {
	now := time.Now()
	old := map[string]fileInfo{"/a.ts": {modTime: now, size: 10}}
	next := map[string]fileInfo{"/a.ts": {modTime: now.Add(time.Second), size: 15}}
	events := diff(old, next)
	if len(events) != 1 || events[0].Op != "write" {
		t.Errorf("expected 1 write event, got %v", events)
	}
}

func TestDiffRemove(t *testing.T) {
	old := map[string]fileInfo{"/a.ts": {modTime: time.Now(), size: 10}}
	next := map[string]fileInfo{}
	events := diff(old, next)
	if len(events) != 1 || events[0].Op != "remove" {
		t.Errorf("expected 1 remove event, got %v", events)
	}
}

func TestDiffNoChange(t *testing.T) {
	now := time.Now()
	snap := map[string]fileInfo{"/a.ts": {modTime: now, size: 10}}
	events := diff(snap, snap)
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %v", events)
	}
}

func TestDiffMultipleEvents(t *testing.T) {
	now := time.Now()
	old := map[string]fileInfo{
		"/a.ts": {modTime: now, size: 10},
		"/b.ts": {modTime: now, size: 20},
	}
	next := map[string]fileInfo{
		"/a.ts": {modTime: now.Add(time.Second), size: 15},
		"/c.ts": {modTime: now, size: 30},
	}
	events := diff(old, next)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %v", len(events), events)
	}

	ops := make(map[string]bool)
	for _, e := range events {
		ops[e.Op] = true
	}
	if !ops["write"] || !ops["create"] || !ops["remove"] {
		t.Errorf("expected write, create, and remove events, got %v", events)
	}
}

func TestDebounceCoalescesBursts(t *testing.T) {
	var calls atomic.Int32
	w := New(nil, nil, 50*time.Millisecond, func(events []Event) {
		calls.Add(1)
		if len(events) != 3 {
			t.Errorf("expected 3 coalesced events, got %d", len(events))
		}
	})

	w.queue([]Event{{Path: "/a.ts", Op: "write"}})
	w.queue([]Event{{Path: "/b.ts", Op: "write"}, {Path: "/c.ts", Op: "create"}})

	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected a single onChange call, got %d", got)
	}
}
