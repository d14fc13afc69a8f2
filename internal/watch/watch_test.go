package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julianstephens/keepup/internal/models"
)

type countingSweeper struct {
	calls      atomic.Int32
	expired    int
	err        error
	resolveErr error

	now      func() time.Time
	resolved []string
	swept    []time.Time
}

func (c *countingSweeper) ResolveDay(day time.Time) ([]models.ActivityInstance, error) {
	c.resolved = append(c.resolved, day.Format("2006-01-02"))
	return nil, c.resolveErr
}

func (c *countingSweeper) Sweep(now time.Time) (int, error) {
	c.calls.Add(1)
	c.swept = append(c.swept, now)
	return c.expired, c.err
}

func (c *countingSweeper) Now() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func TestRun_SweepsImmediatelyAndOnSchedule(t *testing.T) {
	s := &countingSweeper{expired: 2}
	var reported atomic.Int32
	w := New(s, "@every 1s", time.UTC, OnSweep(func(n int) { reported.Add(int32(n)) }))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for s.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := s.calls.Load(); got < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", got)
	}
	if got := reported.Load(); got < 4 {
		t.Errorf("expected OnSweep to see at least 4 expirations, got %d", got)
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	s := &countingSweeper{}
	w := New(s, "not a schedule", nil)

	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid spec")
	}
	if s.calls.Load() != 0 {
		t.Error("sweep should not run when the schedule is invalid")
	}
}

func TestTick_ErrorDoesNotReport(t *testing.T) {
	s := &countingSweeper{expired: 3, err: errors.New("boom")}
	called := false
	w := New(s, "@every 1m", time.UTC, OnSweep(func(int) { called = true }))

	w.tick()

	if called {
		t.Error("OnSweep should not be called when the sweep fails")
	}
}

func TestTick_ResolvesTheNewDayAfterMidnight(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 8, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 1, 9, 0, 1, 0, 0, time.UTC),
	}
	i := 0
	s := &countingSweeper{now: func() time.Time {
		now := times[i]
		i++
		return now
	}}
	w := New(s, "@every 1m", time.UTC)

	w.tick()
	w.tick()

	want := []string{"2024-01-08", "2024-01-09"}
	if len(s.resolved) != len(want) {
		t.Fatalf("expected %d resolves, got %v", len(want), s.resolved)
	}
	for i := range want {
		if s.resolved[i] != want[i] {
			t.Errorf("tick %d resolved %s, want %s", i, s.resolved[i], want[i])
		}
	}
	if !s.swept[1].Equal(times[1]) {
		t.Errorf("sweep used %s, want the same instant the day was resolved at", s.swept[1])
	}
}

func TestTick_ResolveErrorStillSweeps(t *testing.T) {
	s := &countingSweeper{expired: 1, resolveErr: errors.New("db busy")}
	called := false
	w := New(s, "@every 1m", time.UTC, OnSweep(func(int) { called = true }))

	w.tick()

	if s.calls.Load() != 1 {
		t.Fatalf("expected one sweep, got %d", s.calls.Load())
	}
	if !called {
		t.Error("expected OnSweep after a successful sweep")
	}
}
