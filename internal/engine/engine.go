// Package engine materializes days, completes and skips activity instances,
// and expires the ones whose window passed. Every state change and its profile
// and mailbox side effects commit as one transaction.
package engine

import (
	"fmt"
	"time"

	"github.com/julianstephens/keepup/internal/calendar"
	"github.com/julianstephens/keepup/internal/constants"
	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/events"
	"github.com/julianstephens/keepup/internal/logger"
	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/reward"
	"github.com/julianstephens/keepup/internal/scheduler"
	"github.com/julianstephens/keepup/internal/storage"
	"github.com/julianstephens/keepup/internal/templates"
)

// Store is the subset of storage.Provider the engine needs.
type Store interface {
	storage.Queries
	InTx(fn func(q storage.Queries) error) error
	Changes() *events.Bus
}

// Notifier receives the text of every penalty after it commits.
type Notifier interface {
	Notify(text string) error
}

type Service struct {
	store     Store
	templates *templates.Adapter
	sched     *scheduler.Scheduler
	policy    reward.Policy
	clock     calendar.Clock
	notifier  Notifier
}

type Option func(*Service)

func WithClock(c calendar.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func New(store Store, policy reward.Policy, opts ...Option) *Service {
	tmpl := templates.New(store)
	s := &Service{
		store:     store,
		templates: tmpl,
		sched:     scheduler.New(tmpl),
		policy:    policy,
		clock:     calendar.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Templates() *templates.Adapter {
	return s.templates
}

func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// ResolveDay materializes day's obligations and returns the stored instances
// in resolver order. Existing rows are never reset. Pending rows that no
// longer resolve (their set was unassigned or deleted) are dropped while their
// window is still open; overdue ones stay so the sweep can penalize them.
func (s *Service) ResolveDay(day time.Time) ([]models.ActivityInstance, error) {
	return s.resolveDay(day, s.clock.Now())
}

func (s *Service) resolveDay(day, now time.Time) ([]models.ActivityInstance, error) {
	resolved, err := s.sched.ResolveDay(day, s.clock.Now())
	if err != nil {
		return nil, err
	}
	date := calendar.Derive(day).LocalDate

	var stored []models.ActivityInstance
	err = s.store.InTx(func(q storage.Queries) error {
		want := make(map[string]struct{}, len(resolved))
		for _, inst := range resolved {
			want[inst.ID] = struct{}{}
			if _, err := q.InsertInstance(inst); err != nil {
				return err
			}
		}

		existing, err := q.GetInstancesForDate(date)
		if err != nil {
			return err
		}
		stored = existing[:0]
		for _, inst := range existing {
			if _, ok := want[inst.ID]; !ok && inst.Status == models.StatusPending && !inst.Overdue(now) {
				if _, err := q.DeletePendingInstance(inst.ID); err != nil {
					return err
				}
				logger.Info("Dropped instance that no longer resolves", "instance", inst.ID, "name", inst.Name)
				continue
			}
			stored = append(stored, inst)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to materialize %s: %w", date, err)
	}

	scheduler.Sort(stored)
	return stored, nil
}

// Observe is the read path: resolve the day, then expire whatever is overdue.
func (s *Service) Observe(day, now time.Time) ([]models.ActivityInstance, error) {
	if _, err := s.resolveDay(day, now); err != nil {
		return nil, err
	}
	if _, err := s.Sweep(now); err != nil {
		return nil, err
	}
	instances, err := s.store.GetInstancesForDate(calendar.Derive(day).LocalDate)
	if err != nil {
		return nil, err
	}
	scheduler.Sort(instances)
	return instances, nil
}

// Today observes the clock's current local date.
func (s *Service) Today() ([]models.ActivityInstance, error) {
	now := s.clock.Now()
	return s.Observe(now, now)
}

// Sweep expires every pending instance whose window ended at or before now
// and returns how many this call expired.
func (s *Service) Sweep(now time.Time) (int, error) {
	overdue, err := s.store.GetOverdueInstances(now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, inst := range overdue {
		ok, err := s.Expire(inst.ID, now)
		if err != nil {
			return expired, err
		}
		if ok {
			expired++
		}
	}
	if len(overdue) > 0 {
		logger.Debug("Swept overdue instances", "overdue", len(overdue), "expired", expired)
	}
	return expired, nil
}

// Expire moves a pending, overdue instance to expired, lowers the profile level
// and records one penalty message. It reports whether this call did the
// transition; repeated or concurrent calls for the same instance return false.
func (s *Service) Expire(id string, now time.Time) (bool, error) {
	var notice *models.MailboxMessage
	log := logger.With("instance", id)

	err := s.store.InTx(func(q storage.Queries) error {
		inst, err := q.GetInstance(id)
		if err != nil {
			return err
		}
		if inst.Status != models.StatusPending || inst.Open(now) {
			return nil
		}

		// Profile first, matching the lock order of Complete
		profile, err := q.GetProfile()
		hasProfile := err == nil
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		changed, err := q.TransitionInstance(id, models.StatusPending, models.StatusExpired, now)
		if err != nil || !changed {
			return err
		}

		pen, err := s.penaltyFor(q, inst)
		if err != nil {
			return err
		}

		if hasProfile {
			if err := q.UpdateProfile(reward.ApplyPenalty(profile, pen)); err != nil {
				return err
			}
		} else {
			log.Warn("No profile to penalize")
		}

		instanceID := inst.ID
		msg, err := q.AddMessage(models.MailboxMessage{
			Timestamp:         now,
			Kind:              models.MessagePenalty,
			InstanceID:        &instanceID,
			ActivityName:      inst.Name,
			ActivityStartTime: inst.StartTime,
			ActivityEndTime:   inst.EndTime,
			LevelDrop:         pen.LevelDrop,
			PenaltyName:       pen.Name,
			Message:           penaltyText(inst, pen),
		})
		if err != nil {
			return err
		}
		notice = &msg
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to expire instance %s: %w", id, err)
	}
	if notice == nil {
		return false, nil
	}

	log.Info("Instance expired", "name", notice.ActivityName, "level_drop", notice.LevelDrop)
	s.notify(notice.Message)
	return true, nil
}

func (s *Service) penaltyFor(q storage.Queries, inst models.ActivityInstance) (models.Penalty, error) {
	penalties := map[int64]models.Penalty{}
	if inst.PenaltyID != nil {
		pen, err := q.GetPenalty(*inst.PenaltyID)
		switch {
		case err == nil:
			penalties[pen.ID] = pen
		case !apperrors.Is(err, apperrors.ErrNotFound):
			return models.Penalty{}, err
		}
	}
	return s.policy.PenaltyForExpiry(inst.Item(), penalties), nil
}

// Complete marks a pending instance completed while its window is open and
// credits the reward to the profile.
func (s *Service) Complete(id string, now time.Time, multipliers ...reward.Multiplier) (reward.Reward, error) {
	var earned reward.Reward
	var levelUp *models.MailboxMessage
	log := logger.With("instance", id)

	err := s.store.InTx(func(q storage.Queries) error {
		inst, err := q.GetInstance(id)
		if err != nil {
			return err
		}
		if err := checkTransition(inst, now); err != nil {
			return err
		}

		profile, err := q.GetProfile()
		if err != nil {
			return fmt.Errorf("profile required to collect rewards: %w", err)
		}

		changed, err := q.TransitionInstance(id, models.StatusPending, models.StatusCompleted, now)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: instance %s is no longer pending", apperrors.ErrInvalidTransition, id)
		}

		earned = reward.RewardForCompletion(inst.Item(), multipliers...)
		updated := reward.ApplyReward(profile, earned)
		if err := q.UpdateProfile(updated); err != nil {
			return err
		}

		if updated.Level > profile.Level {
			instanceID := inst.ID
			msg, err := q.AddMessage(models.MailboxMessage{
				Timestamp:         now,
				Kind:              models.MessageLevelUp,
				InstanceID:        &instanceID,
				ActivityName:      inst.Name,
				ActivityStartTime: inst.StartTime,
				ActivityEndTime:   inst.EndTime,
				Message:           fmt.Sprintf("Completed %s and reached level %d", inst.Name, updated.Level),
			})
			if err != nil {
				return err
			}
			levelUp = &msg
		}
		return nil
	})
	if err != nil {
		return reward.Reward{}, err
	}

	log.Info("Instance completed", "currency", earned.CurrencyDelta, "level", earned.LevelDelta)
	if levelUp != nil {
		log.Info("Level up", "message", levelUp.Message)
		s.notify(levelUp.Message)
	}
	return earned, nil
}

// Skip closes a pending instance without reward or penalty.
func (s *Service) Skip(id string, now time.Time) error {
	err := s.store.InTx(func(q storage.Queries) error {
		inst, err := q.GetInstance(id)
		if err != nil {
			return err
		}
		if err := checkTransition(inst, now); err != nil {
			return err
		}
		changed, err := q.TransitionInstance(id, models.StatusPending, models.StatusSkipped, now)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: instance %s is no longer pending", apperrors.ErrInvalidTransition, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("Instance skipped", "instance", id)
	return nil
}

// CreateProfile stores the singleton profile with its level derived from birthdate.
func (s *Service) CreateProfile(name, birthdate string) (models.Profile, error) {
	now := s.clock.Now()
	profile := models.Profile{Name: name, Birthdate: birthdate, Level: 1, CreatedAt: now}
	birth, err := profile.BirthdateTime(now.Location())
	if err != nil {
		return profile, fmt.Errorf("invalid birthdate (expected YYYY-MM-DD): %w", err)
	}
	profile.Level = reward.LevelFromBirthdate(birth, now, s.policy.Bands)
	if err := profile.Validate(); err != nil {
		return profile, err
	}
	return s.store.CreateProfile(profile)
}

// LevelForAge reports the birthdate-derived level as of now, for display.
func (s *Service) LevelForAge(profile models.Profile, now time.Time) (int, error) {
	birth, err := profile.BirthdateTime(now.Location())
	if err != nil {
		return 0, err
	}
	return reward.LevelFromBirthdate(birth, now, s.policy.Bands), nil
}

func checkTransition(inst models.ActivityInstance, now time.Time) error {
	if inst.Status.Terminal() {
		return fmt.Errorf("%w: instance %s is already %s", apperrors.ErrInvalidTransition, inst.ID, inst.Status)
	}
	if !inst.Open(now) {
		return fmt.Errorf("%w: %s ended at %s", apperrors.ErrActivityWindowClosed, inst.Name,
			inst.WindowEnd.In(now.Location()).Format(constants.TimeFormat))
	}
	return nil
}

func penaltyText(inst models.ActivityInstance, pen models.Penalty) string {
	return fmt.Sprintf("Missed %s (%s-%s): %s, level -%d", inst.Name, inst.StartTime, inst.EndTime, pen.Name, pen.LevelDrop)
}

func (s *Service) notify(text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(text); err != nil {
		logger.Debug("Notification not delivered", "error", err)
	}
}
