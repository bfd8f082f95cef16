package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheHelper(client, "test:"), srv
}

func TestCacheHelper_GetSet(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := helper.Set(ctx, "event:1", payload{Name: "Hack Night", Count: 3}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "event:1", &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "Hack Night" || got.Count != 3 {
		t.Errorf("unexpected payload: %+v", got)
	}

	t.Run("missing key", func(t *testing.T) {
		var dest payload
		if err := helper.Get(ctx, "event:999", &dest); !errors.Is(err, ErrCacheNotFound) {
			t.Errorf("expected ErrCacheNotFound, got %v", err)
		}
	})
}

func TestCacheHelper_Expiry(t *testing.T) {
	helper, srv := newTestHelper(t)
	ctx := context.Background()

	if err := helper.Set(ctx, "trending", []uint{1, 2, 3}, 10*time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	srv.FastForward(11 * time.Minute)

	var dest []uint
	if err := helper.Get(ctx, "trending", &dest); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := helper.Set(ctx, key, key, time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	if err := helper.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	exists, err := helper.Exists(ctx, "a")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if exists {
		t.Error("expected key a deleted")
	}

	exists, err = helper.Exists(ctx, "c")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !exists {
		t.Error("expected key c kept")
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	helper, _ := newTestHelper(t)
	ctx := context.Background()

	keys := []string{"event:1", "event:2", "registration:1"}
	for _, key := range keys {
		if err := helper.Set(ctx, key, key, time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "event:*"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	for _, key := range []string{"event:1", "event:2"} {
		exists, err := helper.Exists(ctx, key)
		if err != nil {
			t.Fatalf("exists failed: %v", err)
		}
		if exists {
			t.Errorf("expected %s invalidated", key)
		}
	}

	exists, err := helper.Exists(ctx, "registration:1")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !exists {
		t.Error("expected registration:1 untouched")
	}
}

func TestCacheHelper_NilClientDegrades(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Errorf("expected no-op set, got %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "key", &dest); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}

	if err := helper.Delete(ctx, "key"); err != nil {
		t.Errorf("expected no-op delete, got %v", err)
	}
}
