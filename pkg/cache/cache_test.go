package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	writes := []struct {
		key  string
		data []byte
	}{
		{"artifact-svg", []byte("<svg/>")},
		{"artifact-txt", []byte("chart\n")},
		{"replay", nil},
	}
	var size int64
	for _, w := range writes {
		if err := c.Set(ctx, w.key, w.data, TTLArtifact); err != nil {
			t.Fatalf("Set(%q) error: %v", w.key, err)
		}
		size += int64(len(w.data))
		data, hit, err := c.Get(ctx, w.key)
		if err != nil || hit || data != nil {
			t.Errorf("Get(%q) = %q, %v, %v; want miss", w.key, data, hit, err)
		}
	}

	n, b := c.Dropped()
	if n != len(writes) || b != size {
		t.Errorf("Dropped() = %d, %d; want %d, %d", n, b, len(writes), size)
	}

	if err := c.Delete(ctx, "artifact-svg"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if n, _ := c.Dropped(); n != len(writes) {
		t.Errorf("Delete changed the dropped count to %d", n)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "svg"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "svg", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "svg")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("Get = %q, want %q", data, "<svg/>")
	}

	if err := c.Delete(ctx, "svg"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "svg"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	stale, _ := json.Marshal(cacheEntry{Data: []byte("old"), ExpiresAt: time.Now().Add(-time.Minute)})
	path := c.path("png")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, stale, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "png"); err != nil || hit {
		t.Errorf("Get of expired entry = hit %v, err %v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired entry should be removed on read")
	}

	// Zero TTL never expires.
	if err := c.Set(ctx, "txt", []byte("grid"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "txt"); !hit {
		t.Error("entry with zero TTL should be a hit")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear, want 0", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestHashJSON(t *testing.T) {
	type doc struct {
		Lo float64 `json:"lo"`
		Hi float64 `json:"hi"`
	}
	a, err := HashJSON(doc{0, 10})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(map[string]float64{"hi": 10, "lo": 0})
	if a != b {
		t.Errorf("HashJSON of equal documents differ: %s != %s", a, b)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	chart := Hash([]byte("chart"))

	svg := k.ArtifactKey(chart, ArtifactKeyOpts{Format: "svg"})
	tests := []struct {
		name string
		key  string
	}{
		{"format", k.ArtifactKey(chart, ArtifactKeyOpts{Format: "png"})},
		{"script", k.ArtifactKey(chart, ArtifactKeyOpts{Format: "svg", ScriptHash: "abc"})},
		{"size", k.ArtifactKey(chart, ArtifactKeyOpts{Format: "svg", Width: 640})},
		{"chart", k.ArtifactKey(Hash([]byte("other")), ArtifactKeyOpts{Format: "svg"})},
		{"replay", k.ReplayKey(chart, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key == svg {
				t.Errorf("key %q collides with the plain svg key", tt.key)
			}
		})
	}

	if again := k.ArtifactKey(chart, ArtifactKeyOpts{Format: "svg"}); again != svg {
		t.Error("ArtifactKey should be deterministic")
	}
	if !strings.HasPrefix(svg, "artifact:") {
		t.Errorf("ArtifactKey = %q, want artifact: prefix", svg)
	}
	if r := k.ReplayKey(chart, "s"); !strings.HasPrefix(r, "replay:") {
		t.Errorf("ReplayKey = %q, want replay: prefix", r)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "v1:")
	opts := ArtifactKeyOpts{Format: "txt"}

	if got, want := scoped.ArtifactKey("c", opts), "v1:"+inner.ArtifactKey("c", opts); got != want {
		t.Errorf("ArtifactKey() = %q, want %q", got, want)
	}
	if got, want := scoped.ReplayKey("c", "s"), "v1:"+inner.ReplayKey("c", "s"); got != want {
		t.Errorf("ReplayKey() = %q, want %q", got, want)
	}

	// A nil inner keyer falls back to the default.
	if got, want := NewScopedKeyer(nil, "v2:").ArtifactKey("c", opts), "v2:"+inner.ArtifactKey("c", opts); got != want {
		t.Errorf("ArtifactKey() with nil inner = %q, want %q", got, want)
	}
}

func TestFileCacheUsageAndPrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	writeRaw := func(key string, raw []byte) {
		t.Helper()
		path := c.path(key)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale, _ := json.Marshal(cacheEntry{Data: []byte("old"), ExpiresAt: time.Now().Add(-time.Hour)})
	writeRaw("artifact-stale", stale)
	writeRaw("artifact-corrupt", []byte("{not json"))
	for _, k := range []string{"artifact-svg", "replay-log"} {
		if err := c.Set(ctx, k, []byte(k), TTLArtifact); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Set(ctx, "pinned", []byte("forever"), 0); err != nil {
		t.Fatal(err)
	}

	u, err := c.Usage()
	if err != nil {
		t.Fatalf("Usage error: %v", err)
	}
	if u.Entries != 5 || u.Expired != 2 || u.Bytes <= 0 {
		t.Errorf("Usage() = %+v, want 5 entries, 2 expired, nonzero bytes", u)
	}

	n, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if n != 2 {
		t.Errorf("Prune() = %d, want 2", n)
	}

	tests := []struct {
		key string
		hit bool
	}{
		{"artifact-stale", false},
		{"artifact-corrupt", false},
		{"artifact-svg", true},
		{"replay-log", true},
		{"pinned", true},
	}
	for _, tt := range tests {
		if _, hit, _ := c.Get(ctx, tt.key); hit != tt.hit {
			t.Errorf("Get(%q) after Prune hit = %v, want %v", tt.key, hit, tt.hit)
		}
	}
	if u, _ := c.Usage(); u.Entries != 3 || u.Expired != 0 {
		t.Errorf("Usage() after Prune = %+v, want 3 live entries", u)
	}
}
