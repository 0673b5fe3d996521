package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"labor-quiz-service/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)

	session, err := store.Create(ctx, domain.Session{StudentName: "Ani"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("quiz:session:" + session.ID) {
		t.Fatalf("expected redis key to be set")
	}

	best := 230 * time.Millisecond
	session.BestReaction = &best
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.StudentName != "Ani" || got.BestReaction == nil || *got.BestReaction != best {
		t.Fatalf("unexpected session %+v", got)
	}

	_ = store.Delete(ctx, session.ID)
	if mr.Exists("quiz:session:" + session.ID) {
		t.Fatalf("expected redis key to be removed")
	}
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionStoreExpiresWithTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute)
	session, _ := store.Create(ctx, domain.Session{StudentName: "Ani"})

	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if err := store.Save(ctx, session); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected save of expired session to fail, got %v", err)
	}
}
