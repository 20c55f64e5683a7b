// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// testClient returns a Redis client backed by an in-process miniredis.
func testClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRequestKey(t *testing.T) {
	if got := RequestKey("/api/posts", ""); got != "/api/posts" {
		t.Errorf("RequestKey without query: got %q", got)
	}
	if got := RequestKey("/api/posts", "page=2&limit=10"); got != "/api/posts?page=2&limit=10" {
		t.Errorf("RequestKey with query: got %q", got)
	}
}

func TestResponseCacheSetAndGet(t *testing.T) {
	client, _ := testClient(t)
	rc := NewResponseCache(client, 1*time.Minute)
	ctx := context.Background()

	// Miss.
	data, ok := rc.Get(ctx, "/api/posts")
	if ok {
		t.Error("expected cache miss")
	}
	if data != nil {
		t.Error("expected nil data on miss")
	}

	// Set then hit.
	body := []byte(`{"success":true,"data":[]}`)
	rc.Set(ctx, "/api/posts", body)

	data, ok = rc.Get(ctx, "/api/posts")
	if !ok {
		t.Error("expected cache hit")
	}
	if string(data) != string(body) {
		t.Errorf("data mismatch: got %q, want %q", data, body)
	}
}

func TestResponseCacheTTL(t *testing.T) {
	client, mr := testClient(t)
	rc := NewResponseCache(client, 30*time.Second)
	ctx := context.Background()

	rc.Set(ctx, "/api/posts/featured", []byte("cached"))

	// miniredis lets us advance the clock instead of sleeping.
	mr.FastForward(31 * time.Second)

	if _, ok := rc.Get(ctx, "/api/posts/featured"); ok {
		t.Error("expected cache miss after TTL expiry")
	}
}

func TestResponseCacheInvalidate(t *testing.T) {
	client, _ := testClient(t)
	rc := NewResponseCache(client, 1*time.Minute)
	ctx := context.Background()

	rc.Set(ctx, "/api/posts", []byte("cached"))
	rc.Invalidate(ctx, "/api/posts")

	if _, ok := rc.Get(ctx, "/api/posts"); ok {
		t.Error("expected cache miss after invalidation")
	}
}

func TestResponseCacheInvalidateAll(t *testing.T) {
	client, _ := testClient(t)
	rc := NewResponseCache(client, 1*time.Minute)
	ctx := context.Background()

	keys := []string{"/api/posts", "/api/posts?page=2", "/api/posts/featured"}
	for _, key := range keys {
		rc.Set(ctx, key, []byte("cached"))
	}
	// A non-response key must survive the sweep.
	client.Set(ctx, "session:keep-me", "v", 0)

	rc.InvalidateAll(ctx)

	for _, key := range keys {
		if _, ok := rc.Get(ctx, key); ok {
			t.Errorf("expected miss for %q after InvalidateAll", key)
		}
	}
	if err := client.Get(ctx, "session:keep-me").Err(); err != nil {
		t.Error("InvalidateAll must not touch non-response keys")
	}
}

func TestNewResponseCacheDefaultTTL(t *testing.T) {
	client, _ := testClient(t)

	rc := NewResponseCache(client, 0)
	if rc.ttl != DefaultResponseTTL {
		t.Errorf("expected DefaultResponseTTL (%v), got %v", DefaultResponseTTL, rc.ttl)
	}
}
