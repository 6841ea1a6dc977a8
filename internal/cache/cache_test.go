package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestSplitKey(t *testing.T) {
	k1 := SplitKey("groq", "llama-3.1-8b-instant", 35, "Un paragraphe de notes.")
	k2 := SplitKey("groq", "llama-3.1-8b-instant", 35, "  Un paragraphe de notes.  ")
	if k1 != k2 {
		t.Errorf("surrounding whitespace changed the key: %s vs %s", k1, k2)
	}
	if !strings.HasPrefix(k1, "notechunk:v1:groq:llama-3.1-8b-instant:35:") {
		t.Errorf("unexpected key layout: %s", k1)
	}

	variants := []string{
		SplitKey("openai", "llama-3.1-8b-instant", 35, "Un paragraphe de notes."),
		SplitKey("groq", "other", 35, "Un paragraphe de notes."),
		SplitKey("groq", "llama-3.1-8b-instant", 20, "Un paragraphe de notes."),
		SplitKey("groq", "llama-3.1-8b-instant", 35, "Un autre paragraphe."),
	}
	for _, v := range variants {
		if v == k1 {
			t.Errorf("expected distinct key, got %s", v)
		}
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss")
	}

	blocks := []string{"bloc un", "bloc deux"}
	if err := c.Set("k", blocks, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	blocks[0] = "modifié"

	got, ok := c.Get("k")
	if !ok || !reflect.DeepEqual(got, []string{"bloc un", "bloc deux"}) {
		t.Errorf("Get = %q, %v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []string{"x"}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestFileCache_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "pipeline_cache.json")

	first := NewFileCache(path, time.Hour)
	if err := first.Set("k", []string{"bloc"}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	second := NewFileCache(path, time.Hour)
	got, ok := second.Get("k")
	if !ok || !reflect.DeepEqual(got, []string{"bloc"}) {
		t.Errorf("Get after reopen = %q, %v", got, ok)
	}
}

func TestFileCache_ExpiredEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_cache.json")
	c := NewFileCache(path, time.Hour)
	_ = c.Set("k", []string{"bloc"}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := NewFileCache(path, time.Hour).Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestFileCache_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	c := NewFileCache(path, time.Hour)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on corrupt file")
	}
	if err := c.Set("k", []string{"bloc"}, 0); err != nil {
		t.Fatalf("Set after corrupt load: %v", err)
	}
	if _, ok := NewFileCache(path, time.Hour).Get("k"); !ok {
		t.Error("corrupt file was not replaced")
	}
}

func TestFileCache_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_cache.json")
	c := NewFileCache(path, time.Hour)
	_ = c.Set("k", []string{"bloc"}, 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected cache file removed, stat err = %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_cache.json")
	_ = NewFileCache(path, time.Hour).Set("k", []string{"bloc"}, 0)

	c := NewLayeredCache(time.Minute, path, time.Hour)
	got, ok := c.Get("k")
	if !ok || !reflect.DeepEqual(got, []string{"bloc"}) {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("entry not promoted to memory")
	}
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_cache.json")
	c := NewLayeredCache(time.Minute, path, time.Hour)

	if err := c.Set("k", []string{"bloc"}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("missing from memory layer")
	}
	if _, ok := NewFileCache(path, time.Hour).Get("k"); !ok {
		t.Error("missing from file layer")
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete")
	}
}
