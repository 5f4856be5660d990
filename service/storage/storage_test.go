package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"farmstore.GO/core/cache"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "cart"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load missing: err = %v, want ErrNotFound", err)
	}
	if err := s.Save(ctx, "cart", []byte(`[{"productId":"a"}]`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, "cart", []byte(`[{"productId":"b"}]`)); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	got, err := s.Load(ctx, "cart")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `[{"productId":"b"}]` {
		t.Errorf("Load = %s", got)
	}
	if err := s.Delete(ctx, "cart"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "cart"); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
	if _, err := s.Load(ctx, "cart"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after delete: err = %v, want ErrNotFound", err)
	}
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseStorage(t, s)
}

func TestFileStorage_EscapesKeys(t *testing.T) {
	s, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Save(ctx, "../guest/1", []byte("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, _ := s.Load(ctx, "../guest/1"); string(got) != "x" {
		t.Errorf("Load = %q, want x", got)
	}
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStorage(client, "farmstore:", 0)
	exerciseStorage(t, s)

	s.Save(context.Background(), "k", []byte("v"))
	if !mr.Exists("farmstore:k") {
		t.Error("expected prefixed key in redis")
	}
}

func TestCacheStorage(t *testing.T) {
	exerciseStorage(t, NewCacheStorage(cache.NewCache()))
}

func TestCacheStorage_CopiesBuffers(t *testing.T) {
	s := NewCacheStorage(nil)
	buf := []byte("abc")
	s.Save(context.Background(), "k", buf)
	buf[0] = 'z'
	got, _ := s.Load(context.Background(), "k")
	if string(got) != "abc" {
		t.Errorf("Load = %q, want abc", got)
	}
}
