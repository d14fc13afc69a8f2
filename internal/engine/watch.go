package engine

import (
	"context"
	"time"

	"github.com/julianstephens/keepup/internal/logger"
	"github.com/julianstephens/keepup/internal/models"
)

// Watch emits the observed day once immediately and again after every change
// the store publishes. Bursts of changes collapse into one re-resolve. The
// channel closes when ctx is done.
func (s *Service) Watch(ctx context.Context, day func() time.Time) <-chan []models.ActivityInstance {
	out := make(chan []models.ActivityInstance, 1)
	changes, cancel := s.store.Changes().Subscribe(16)

	go func() {
		defer close(out)
		defer cancel()

		emit := func() bool {
			d := day()
			instances, err := s.Observe(d, s.clock.Now())
			if err != nil {
				logger.Warn("Failed to re-resolve day", "date", d.Format("2006-01-02"), "error", err)
				return true
			}
			select {
			case out <- instances:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				drain(changes)
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}

func drain[T any](ch <-chan T) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
