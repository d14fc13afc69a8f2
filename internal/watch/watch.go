// Package watch materializes the current day and runs the expiry sweep on a
// cron schedule for as long as the process lives.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/keepup/internal/logger"
	"github.com/julianstephens/keepup/internal/models"
)

// Sweeper resolves a day's obligations and expires every pending instance
// whose window has closed.
type Sweeper interface {
	ResolveDay(day time.Time) ([]models.ActivityInstance, error)
	Sweep(now time.Time) (int, error)
	Now() time.Time
}

type Watcher struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string

	mu      sync.Mutex
	onSweep func(expired int)
}

type Option func(*Watcher)

// OnSweep is called after every sweep that expired at least one instance.
func OnSweep(fn func(expired int)) Option {
	return func(w *Watcher) { w.onSweep = fn }
}

func New(s Sweeper, spec string, loc *time.Location, opts ...Option) *Watcher {
	if loc == nil {
		loc = time.Local
	}
	w := &Watcher{
		cron:    cron.New(cron.WithLocation(loc)),
		sweeper: s,
		spec:    spec,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run sweeps once, then on every tick of the schedule until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.spec, w.tick); err != nil {
		return fmt.Errorf("add sweep job %q: %w", w.spec, err)
	}

	w.tick()
	w.cron.Start()
	logger.Info("Watcher started", "spec", w.spec)

	<-ctx.Done()

	stopped := w.cron.Stop()
	<-stopped.Done()
	logger.Info("Watcher stopped")
	return nil
}

// tick is serialized so a slow sweep never overlaps the next one. Resolving
// first means a watcher running past midnight picks up the new day on its own.
func (w *Watcher) tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.sweeper.Now()
	if _, err := w.sweeper.ResolveDay(now); err != nil {
		logger.Error("Resolve failed", "date", now.Format("2006-01-02"), "error", err)
	}

	n, err := w.sweeper.Sweep(now)
	if err != nil {
		logger.Error("Sweep failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Expired overdue activities", "count", n)
		if w.onSweep != nil {
			w.onSweep(n)
		}
	}
}
