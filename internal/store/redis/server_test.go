package redis

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mockingbird/internal/domain"
	"github.com/MrSnakeDoc/mockingbird/internal/store"
)

// newTestStore needs a disposable Redis at MOCKINGBIRD_TEST_REDIS_ADDR; DB 15 is flushed.
func newTestStore(t *testing.T) (*Store, *redis.Client) {
	t.Helper()

	addr := os.Getenv("MOCKINGBIRD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MOCKINGBIRD_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("FlushDB: %v", err)
	}
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return NewStore(client), client
}

func TestStoreRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	got, err := s.Load(ctx, 9001)
	if err != nil || got != nil {
		t.Fatalf("Load on empty store = %v, %v; want nil, nil", got, err)
	}

	ep := domain.NewEndpoint(domain.MethodGet, "/ping", domain.Response{Status: 200, Body: json.RawMessage(`{"ok":true}`)}, 100)
	ep.ErrorResponse = &domain.ErrorOverride{Enabled: true, Status: 503, Message: "down"}

	for _, port := range []int{9002, 9001} {
		cfg := domain.PersistedConfig{Port: port, Endpoints: []domain.Endpoint{ep}, UpdatedAt: time.Now().UTC()}
		if err := s.Save(ctx, cfg); err != nil {
			t.Fatalf("Save(%d): %v", port, err)
		}
	}

	got, err = s.Load(ctx, 9001)
	if err != nil || got == nil {
		t.Fatalf("Load = %v, %v", got, err)
	}
	if len(got.Endpoints) != 1 || got.Endpoints[0].Delay != 100 || !got.Endpoints[0].ErrorEnabled() {
		t.Errorf("Load endpoints = %+v", got.Endpoints)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Port != 9001 || all[1].Port != 9002 {
		t.Errorf("List ports = %+v, want 9001 then 9002", all)
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	s, client := newTestStore(t)
	ctx := context.Background()

	if err := client.Set(ctx, ServerKey(9003), "{not json", 0).Err(); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load(ctx, 9003)
	if !errors.Is(err, store.ErrCorrupt) {
		t.Errorf("Load error = %v, want ErrCorrupt", err)
	}
}
