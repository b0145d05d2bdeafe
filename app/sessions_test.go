package app

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"example/aoe4-reviewer/app/config"
	"example/aoe4-reviewer/app/models"

	"github.com/redis/go-redis/v9"
)

func exerciseSessionStore(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Load(ctx, "does-not-exist"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	s := NewSession("684292")
	s.Recent = []models.Match{*decodeMatch(t, matchJSON(1, "2024-06-01T12:00:00.000Z"))}
	s.Current = decodeMatch(t, unicodeMatch)
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, s.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ViewerID != "684292" || len(got.Recent) != 1 || got.Recent[0].GameID != 1 {
		t.Fatalf("session = %+v", got)
	}
	if got.Current == nil || got.Current.Teams[1][0].Player.Name != "李小龙" {
		t.Fatalf("current match lost: %+v", got.Current)
	}
}

func TestMemorySessions(t *testing.T) {
	exerciseSessionStore(t, NewMemorySessions(time.Hour))
}

func TestMemorySessionsExpireAndPrune(t *testing.T) {
	store := NewMemorySessions(time.Minute)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s := NewSession("1")
	if err := store.Save(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := store.Load(context.Background(), s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if n := store.Prune(); n != 1 || store.Len() != 0 {
		t.Fatalf("prune dropped %d, %d left", n, store.Len())
	}
}

func TestMemorySessionsSaveCopies(t *testing.T) {
	store := NewMemorySessions(time.Hour)
	s := NewSession("1")
	if err := store.Save(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	s.ViewerID = "2"
	got, _ := store.Load(context.Background(), s.ID)
	if got.ViewerID != "1" {
		t.Fatalf("stored session mutated through caller pointer")
	}
}

func TestSessionJanitor(t *testing.T) {
	store := NewMemorySessions(time.Millisecond)
	if err := store.Save(context.Background(), NewSession("1")); err != nil {
		t.Fatal(err)
	}

	sched, err := StartSessionJanitor(store, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("StartSessionJanitor: %v", err)
	}
	defer sched.Shutdown()

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("janitor never pruned the expired session")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRedisSessions(t *testing.T) {
	url := os.Getenv("REVIEW_TEST_REDIS_URL")
	if url == "" {
		t.Skip("REVIEW_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("ParseURL: %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	exerciseSessionStore(t, NewRedisSessions(client, time.Minute))
}

func TestOpenSessionsMemoryPrunes(t *testing.T) {
	store, closeFn, err := OpenSessions(context.Background(), config.SessionConfig{TTL: time.Millisecond}, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("OpenSessions: %v", err)
	}
	defer closeFn()

	mem, ok := store.(*MemorySessions)
	if !ok {
		t.Fatalf("store = %T, want *MemorySessions", store)
	}
	if err := mem.Save(context.Background(), NewSession("1")); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for mem.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expired session was never pruned")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOpenSessionsBadRedisURL(t *testing.T) {
	if _, _, err := OpenSessions(context.Background(), config.SessionConfig{RedisURL: "not a url", TTL: time.Minute}, time.Minute); err == nil {
		t.Fatal("expected error for bad REDIS_URL")
	}
}
