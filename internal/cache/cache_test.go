package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/recera/vuec/pkg/compiler/ast"
	"github.com/recera/vuec/pkg/compiler/parser"
	"github.com/recera/vuec/pkg/compiler/web"
)

func document(t *testing.T, template string) ast.Document {
	t.Helper()
	opts := web.BaseOptions()
	opts.Dev = true
	p := parser.New(opts)
	tree := p.Parse(template)
	return tree.Document(p.Warnings())
}

func encodedSize(t *testing.T, doc ast.Document) int64 {
	t.Helper()
	data, err := encMode.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to encode document: %v", err)
	}
	return int64(len(data))
}

func openCache(t *testing.T, config Config) *Cache {
	t.Helper()
	if config.Dir == "" {
		config.Dir = t.TempDir()
	}
	c, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sameDocument(t *testing.T, want ast.Document, got *ast.Document) {
	t.Helper()
	a, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(a), string(b)); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestCache_GetPut(t *testing.T) {
	cache := openCache(t, Config{MaxSize: 1 << 20, MaxAge: time.Hour})

	doc := document(t, `<div :id="a" @click="go"><p v-if="x">{{ msg }}</p><p v-else>no</p></div>`)
	key := Key("opts", "template")

	if err := cache.Put(key, "", doc); err != nil {
		t.Fatalf("Failed to put document: %v", err)
	}

	got, found := cache.Get(key)
	if !found {
		t.Fatal("Document not found in cache")
	}
	sameDocument(t, doc, got)

	if _, err := ast.FromDocument(*got); err != nil {
		t.Errorf("Cached document does not rebuild a tree: %v", err)
	}

	if stats := cache.GetStats(); stats.Hits != 1 {
		t.Errorf("Expected 1 hit, got %d", stats.Hits)
	}

	if _, found = cache.Get("non-existent"); found {
		t.Error("Found non-existent key")
	}
	if stats := cache.GetStats(); stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
}

func TestCache_PutSameDocumentTwice(t *testing.T) {
	cache := openCache(t, Config{})
	doc := document(t, "<p>same</p>")

	for i := 0; i < 2; i++ {
		if err := cache.Put("k", "", doc); err != nil {
			t.Fatalf("Put %d failed: %v", i, err)
		}
	}
	stats := cache.GetStats()
	if stats.EntryCount != 1 || stats.TotalSize != encodedSize(t, doc) {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCache_Delete(t *testing.T) {
	cache := openCache(t, Config{})

	key := "delete-test"
	if err := cache.Put(key, "", document(t, "<p>x</p>")); err != nil {
		t.Fatalf("Failed to put document: %v", err)
	}
	if _, found := cache.Get(key); !found {
		t.Fatal("Document not found after put")
	}

	if err := cache.Delete(key); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, found := cache.Get(key); found {
		t.Error("Document found after delete")
	}

	if err := cache.Delete(key); err != nil {
		t.Errorf("Delete of non-existent key failed: %v", err)
	}
}

func TestCache_Eviction(t *testing.T) {
	docs := map[string]ast.Document{
		"key1": document(t, "<p>aaaa</p>"),
		"key2": document(t, "<p>bbbb</p>"),
		"key3": document(t, "<p>cccc</p>"),
	}
	size := encodedSize(t, docs["key1"])

	tests := []struct {
		name     string
		strategy EvictionStrategy
		evicted  string
	}{
		// key1 was read after key2 was written
		{"LRU", LRU, "key2"},
		// key1 was read twice, key2 once
		{"LFU", LFU, "key2"},
		{"FIFO", FIFO, "key1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := openCache(t, Config{MaxSize: 2*size + size/2, Strategy: tt.strategy})

			cache.Put("key1", "", docs["key1"])
			time.Sleep(2 * time.Millisecond)
			cache.Put("key2", "", docs["key2"])
			time.Sleep(2 * time.Millisecond)
			cache.Get("key2")
			time.Sleep(2 * time.Millisecond)
			cache.Get("key1")
			cache.Get("key1")
			time.Sleep(2 * time.Millisecond)

			if err := cache.Put("key3", "", docs["key3"]); err != nil {
				t.Fatalf("Failed to put key3: %v", err)
			}

			for key := range docs {
				_, found := cache.Get(key)
				if key == tt.evicted && found {
					t.Errorf("%s should have been evicted", key)
				}
				if key != tt.evicted && !found {
					t.Errorf("%s should still be cached", key)
				}
			}
			if stats := cache.GetStats(); stats.Evictions != 1 {
				t.Errorf("Expected 1 eviction, got %d", stats.Evictions)
			}
		})
	}
}

func TestCache_DocumentLargerThanCache(t *testing.T) {
	cache := openCache(t, Config{MaxSize: 8})
	if err := cache.Put("big", "", document(t, "<p>too big</p>")); err == nil {
		t.Error("expected an error for a document larger than the cache")
	}
}

func TestCache_Expiration(t *testing.T) {
	cache := openCache(t, Config{MaxAge: 50 * time.Millisecond})

	if err := cache.Put("expire", "", document(t, "<p>x</p>")); err != nil {
		t.Fatalf("Failed to put document: %v", err)
	}
	if _, found := cache.Get("expire"); !found {
		t.Fatal("Document not found immediately after put")
	}

	time.Sleep(100 * time.Millisecond)

	if _, found := cache.Get("expire"); found {
		t.Error("Expired document was returned")
	}
}

func TestCache_InvalidateSource(t *testing.T) {
	cache := openCache(t, Config{})
	doc := document(t, "<p>x</p>")

	sources := map[string]string{
		"a": filepath.Join("src", "a.vue"),
		"b": filepath.Join("src", "nested", "b.vue"),
		"c": filepath.Join("srcx", "c.vue"),
		"d": "",
	}
	for key, source := range sources {
		if err := cache.Put(key, source, doc); err != nil {
			t.Fatalf("Failed to put %s: %v", key, err)
		}
	}

	if n := cache.InvalidateSource("src"); n != 2 {
		t.Errorf("InvalidateSource(src) removed %d entries, want 2", n)
	}
	for key, want := range map[string]bool{"a": false, "b": false, "c": true, "d": true} {
		if _, found := cache.Get(key); found != want {
			t.Errorf("%s cached = %v, want %v", key, found, want)
		}
	}

	if n := cache.InvalidateSource(sources["c"]); n != 1 {
		t.Errorf("InvalidateSource(file) removed %d entries, want 1", n)
	}
}

func TestCache_Clear(t *testing.T) {
	cache := openCache(t, Config{})
	doc := document(t, "<p>x</p>")

	for i := 0; i < 5; i++ {
		if err := cache.Put(fmt.Sprintf("key%d", i), "", doc); err != nil {
			t.Fatalf("Failed to put: %v", err)
		}
	}
	if stats := cache.GetStats(); stats.EntryCount != 5 {
		t.Errorf("Expected 5 entries, got %d", stats.EntryCount)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Failed to clear cache: %v", err)
	}

	stats := cache.GetStats()
	if stats.EntryCount != 0 || stats.TotalSize != 0 {
		t.Errorf("Expected empty cache, got %+v", stats)
	}
	for i := 0; i < 5; i++ {
		if _, found := cache.Get(fmt.Sprintf("key%d", i)); found {
			t.Errorf("key%d found after clear", i)
		}
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := openCache(t, Config{})
	doc := document(t, "<ul><li v-for=\"i in list\">{{ i }}</li></ul>")

	const workers = 8
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				key := fmt.Sprintf("worker%d-%d", w, i)
				if err := cache.Put(key, "", doc); err != nil {
					t.Errorf("Put %s: %v", key, err)
					return
				}
				if _, found := cache.Get(key); !found {
					t.Errorf("Get %s: not found", key)
				}
			}
		}(w)
	}
	wg.Wait()

	if stats := cache.GetStats(); stats.EntryCount != workers*10 {
		t.Errorf("Expected %d entries, got %d", workers*10, stats.EntryCount)
	}
}

func TestCache_KeyGeneration(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Error("Key is not deterministic")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key does not separate inputs")
	}
	if Key("a") == Key("b") {
		t.Error("Different inputs produced the same key")
	}
	if got := len(Key("x")); got != 64 {
		t.Errorf("Key length = %d, want 64 hex characters", got)
	}
}

func TestCache_Persistence(t *testing.T) {
	dir := t.TempDir()
	doc := document(t, `<my-comp v-slot="{ item }"><span>{{ item }}</span></my-comp>`)

	first, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	if err := first.Put("persist", "app.vue", doc); err != nil {
		t.Fatalf("Failed to put document: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Failed to close cache: %v", err)
	}

	second := openCache(t, Config{Dir: dir})
	got, found := second.Get("persist")
	if !found {
		t.Fatal("Document not found after reopening")
	}
	sameDocument(t, doc, got)
	if n := second.InvalidateSource("app.vue"); n != 1 {
		t.Errorf("source not persisted, InvalidateSource removed %d", n)
	}
}

func TestCache_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.cbor"), []byte("not cbor"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := openCache(t, Config{Dir: dir})
	if stats := cache.GetStats(); stats.EntryCount != 0 {
		t.Errorf("Expected a fresh index, got %d entries", stats.EntryCount)
	}
	if err := cache.loadIndex(); err == nil {
		t.Error("Expected loadIndex to report the corrupt file")
	}
}

func TestCache_CorruptEntry(t *testing.T) {
	cache := openCache(t, Config{})
	if err := cache.Put("k", "", document(t, "<p>x</p>")); err != nil {
		t.Fatalf("Failed to put document: %v", err)
	}

	cache.mu.RLock()
	path := cache.index.Entries["k"].Path
	cache.mu.RUnlock()
	if err := os.WriteFile(path, []byte{0xff, 0x00}, 0644); err != nil {
		t.Fatal(err)
	}

	if _, found := cache.Get("k"); found {
		t.Error("Undecodable entry was returned")
	}
	if stats := cache.GetStats(); stats.EntryCount != 0 {
		t.Errorf("Undecodable entry was kept, %d entries", stats.EntryCount)
	}
}
