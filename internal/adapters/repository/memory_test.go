package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/matchbot/internal/domain/model"
)

func run(id string, at time.Time) model.Run {
	return model.Run{
		ID:         id,
		MessageSID: "SM" + id,
		From:       "whatsapp:+33600000000",
		InputKind:  model.MediaNone,
		Text:       "Go developer in Paris",
		Outcome:    model.OutcomeMatched,
		Candidates: 3,
		StartedAt:  at,
		FinishedAt: at.Add(time.Second),
	}
}

func TestMemoryLog_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLog()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	if n, _ := store.Count(ctx); n != 0 {
		t.Errorf("expected count 0, got %d", n)
	}

	for i := 0; i < 3; i++ {
		if err := store.Record(ctx, run(fmt.Sprint(i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	got, err := store.Get(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MessageSID != "SM1" || got.Duration() != time.Second {
		t.Errorf("unexpected run: %+v", got)
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "2" || recent[1].ID != "1" {
		t.Errorf("expected newest first [2 1], got %+v", recent)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Recent(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestMemoryLog_ReplaceKeepsPosition(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLog()
	now := time.Now()

	_ = store.Record(ctx, run("a", now))
	_ = store.Record(ctx, run("b", now))

	updated := run("a", now)
	updated.Outcome = model.OutcomeFailed
	updated.Error = "boom"
	if err := store.Record(ctx, updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
	got, _ := store.Get(ctx, "a")
	if got.Outcome != model.OutcomeFailed || got.Error != "boom" {
		t.Errorf("expected replaced run, got %+v", got)
	}
}

func TestMemoryLog_Capacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLog(WithCapacity(2))
	now := time.Now()

	for _, id := range []string{"a", "b", "c"} {
		_ = store.Record(ctx, run(id, now))
	}

	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected oldest run evicted, got %v", err)
	}
	recent, _ := store.Recent(ctx, 10)
	if len(recent) != 2 || recent[0].ID != "c" {
		t.Errorf("unexpected recent runs: %+v", recent)
	}
}

func TestMemoryLog_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryLog().Record(ctx, run("x", time.Now())); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMemoryLog_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLog(WithCapacity(50))
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = store.Record(ctx, run(fmt.Sprintf("%d-%d", g, i), time.Now()))
				_, _ = store.Recent(ctx, 5)
			}
		}(g)
	}
	wg.Wait()

	if n, _ := store.Count(ctx); n != 50 {
		t.Errorf("expected count 50, got %d", n)
	}
}
