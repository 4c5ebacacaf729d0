package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "npm:express", []byte(`{"name":"express"}`), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, ok, err := c.Get(ctx, "npm:express")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if string(data) != `{"name":"express"}` {
		t.Errorf("Get() data = %s", data)
	}
}

func TestFileCacheMiss(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	defer c.Close()

	_, ok, err := c.Get(context.Background(), "npm:missing")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok {
		t.Error("Get() ok = true for missing key")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, ok, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok {
		t.Error("Get() ok = true for expired entry")
	}
}

func TestFileCacheNoExpiration(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	_, ok, _ := c.Get(ctx, "k")
	if !ok {
		t.Error("Get() ok = false for TTL=0 entry")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	defer c.Close()

	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("v"), time.Hour)

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get() ok = true after Delete()")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("NullCache Get() ok = true, want miss")
	}
}

func TestRetryWithBackoffNonRetryable(t *testing.T) {
	permanent := errors.New("permanent failure")
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return permanent
	})
	if err != permanent {
		t.Errorf("RetryWithBackoff() error = %v, want the permanent error", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (non-retryable)", calls)
	}
}

func TestRetryWithBackoffEventualSuccess(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil {
		t.Errorf("RetryWithBackoff() error = %v, want nil", err)
	}
	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
}

func TestHashStable(t *testing.T) {
	a := Hash([]byte("npm:express"))
	b := Hash([]byte("npm:express"))
	if a != b {
		t.Error("Hash() not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(a))
	}
}
