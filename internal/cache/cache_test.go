package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAnalysisKey(t *testing.T) {
	if got := AnalysisKey("sqlite:1234", "abc"); got != "vigil:analysis:v2:sqlite:1234:abc" {
		t.Errorf("unexpected key %q", got)
	}
	if AnalysisKey("ns", "a") == AnalysisKey("ns", "b") {
		t.Error("different sessions must not share a key")
	}
	if AnalysisKey("one", "a") == AnalysisKey("two", "a") {
		t.Error("different stores must not share a key")
	}
}

func TestMemoryCache_GetSetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("k"); found {
		t.Fatal("expected miss on empty cache")
	}

	value := []byte("payload")
	if err := c.Set("k", value, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Mutating the caller's slice must not leak into the cache
	value[0] = 'X'

	got, found := c.Get("k")
	if !found || string(got) != "payload" {
		t.Fatalf("expected payload, got %q found=%v", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected entry to expire")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"a", "b"} {
		if _, found := c.Get(key); found {
			t.Errorf("expected %s to be cleared", key)
		}
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Set("vigil:analysis:v1:s1", []byte(`{"score":4}`), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := c.Get("vigil:analysis:v1:s1")
	if !found || string(got) != `{"score":4}` {
		t.Fatalf("unexpected value %q found=%v", got, found)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".cache" {
		t.Errorf("expected exactly one .cache file, got %v", entries)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); !found {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, found := c.Get("k"); found {
		t.Error("expected miss after expiry")
	}
}

func TestDiskCache_NegativeTTLNeverExpires(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set("k", []byte("v"), -1); err != nil {
		t.Fatal(err)
	}
	now = now.Add(365 * 24 * time.Hour)
	if _, found := c.Get("k"); !found {
		t.Error("entry with negative ttl should not expire")
	}
}

func TestDiskCache_DeleteMissing(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)
	if err := c.Delete("never-set"); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := os.WriteFile(c.path("k"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("corrupt entry should read as a miss")
	}
}

func TestDiskCache_Prune(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for key, ttl := range map[string]time.Duration{"short": time.Minute, "long": 2 * time.Hour, "forever": -1} {
		if err := c.Set(key, []byte(key), ttl); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(c.path("corrupt"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	now = now.Add(30 * time.Minute)
	removed, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected expired and corrupt entries removed, got %d", removed)
	}

	for _, key := range []string{"long", "forever"} {
		if _, found := c.Get(key); !found {
			t.Errorf("%s should survive pruning", key)
		}
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry file should be gone")
	}

	missing := NewDiskCache(filepath.Join(dir, "absent"), time.Hour)
	if n, err := missing.Prune(); err != nil || n != 0 {
		t.Errorf("pruning a missing dir = %d, %v", n, err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	// Seed the disk layer only, as a previous process would have
	if err := NewDiskCache(dir, time.Minute).Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	if _, found := c.memory.Get("k"); found {
		t.Fatal("memory layer should start empty")
	}
	got, found := c.Get("k")
	if !found || string(got) != "v" {
		t.Fatalf("expected disk hit, got %q found=%v", got, found)
	}
	if _, found := c.memory.Get("k"); !found {
		t.Error("disk hit should be promoted to memory")
	}
}

func TestLayeredCache_DeleteAndClear(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Minute)

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	if err := c.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("a"); found {
		t.Error("expected a to be gone from both layers")
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("b"); found {
		t.Error("expected b to be gone after clear")
	}
}
