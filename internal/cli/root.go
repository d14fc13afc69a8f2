package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/keepup/internal/backup"
	"github.com/julianstephens/keepup/internal/calendar"
	"github.com/julianstephens/keepup/internal/config"
	"github.com/julianstephens/keepup/internal/engine"
	"github.com/julianstephens/keepup/internal/inbox"
	"github.com/julianstephens/keepup/internal/logger"
	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/notifier"
	"github.com/julianstephens/keepup/internal/storage"
	"github.com/julianstephens/keepup/internal/storage/sqlite"
)

type Context struct {
	Store  storage.Provider
	Config *config.Config
	// Clock overrides the settings-derived wall clock. Tests set it.
	Clock calendar.Clock

	service *engine.Service
}

// Service builds the engine on first use. The store must be loaded, since the
// clock's timezone and the notifier come from stored settings.
func (c *Context) Service() (*engine.Service, error) {
	if c.service != nil {
		return c.service, nil
	}

	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	clock := c.Clock
	if clock == nil {
		loc, err := calendar.LoadLocation(settings.Timezone)
		if err != nil {
			logger.Warn("Invalid timezone setting, falling back to local time", "timezone", settings.Timezone, "error", err)
			loc = time.Local
		}
		clock = calendar.SystemClock{Location: loc}
	}

	opts := []engine.Option{engine.WithClock(clock)}
	if settings.NotificationsEnabled {
		opts = append(opts, engine.WithNotifier(notifier.New()))
	}

	c.service = engine.New(c.Store, c.policy().Policy(), opts...)
	return c.service, nil
}

// Inbox returns the mailbox, backing up the SQLite file before deletes when
// auto backup is on.
func (c *Context) Inbox() (*inbox.Inbox, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var opts []inbox.Option
	if settings.AutoBackup && c.isSQLite() {
		opts = append(opts, inbox.WithBackup(func() error {
			_, err := backup.NewManager(c.Store.GetConfigPath()).CreateBackup()
			return err
		}))
	}
	if c.Clock != nil {
		opts = append(opts, inbox.WithClock(c.Clock.Now))
	}
	return inbox.New(c.Store, opts...), nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.isSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) policy() *config.Config {
	if c.Config == nil {
		cfg, err := config.Load("", false)
		if err != nil {
			logger.Warn("Failed to load default policy", "error", err)
			cfg = &config.Config{}
		}
		c.Config = cfg
	}
	return c.Config
}

// Policy returns the loaded policy file, or defaults when none was given.
func (c *Context) Policy() *config.Config {
	return c.policy()
}

func (c *Context) isSQLite() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// ResolveInstance accepts a 1-based position in today's list, an id prefix,
// or a full instance id.
func ResolveInstance(svc *engine.Service, ref string) (models.ActivityInstance, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.ActivityInstance{}, fmt.Errorf("instance reference cannot be empty")
	}

	today, err := svc.Today()
	if err != nil {
		return models.ActivityInstance{}, err
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(today) {
			return models.ActivityInstance{}, fmt.Errorf("no activity #%d today (1-%d)", n, len(today))
		}
		return today[n-1], nil
	}

	var matches []models.ActivityInstance
	for _, inst := range today {
		if inst.ID == ref {
			return inst, nil
		}
		if strings.HasPrefix(inst.ID, ref) {
			matches = append(matches, inst)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		// Not today's: let the engine look it up by full id.
		return models.ActivityInstance{ID: ref}, nil
	default:
		return models.ActivityInstance{}, fmt.Errorf("ambiguous id prefix %q matches %d activities", ref, len(matches))
	}
}

// ParseWeekday parses a weekday name, its three-letter abbreviation, or 0-6 (0=Sunday).
func ParseWeekday(s string) (time.Weekday, error) {
	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	part := strings.TrimSpace(strings.ToLower(s))
	if wd, ok := dayMap[part]; ok {
		return wd, nil
	}
	// Try parsing as number (0=Sunday, 6=Saturday)
	num, err := strconv.Atoi(part)
	if err == nil && num >= 0 && num <= 6 {
		return time.Weekday(num), nil
	}
	return 0, fmt.Errorf("invalid weekday: %s", s)
}

// ParseItemSpec parses "Name@HH:MM-HH:MM".
func ParseItemSpec(spec string) (models.ActivityItem, error) {
	at := strings.LastIndex(spec, "@")
	if at <= 0 {
		return models.ActivityItem{}, fmt.Errorf("invalid item %q (expected Name@HH:MM-HH:MM)", spec)
	}
	window := strings.SplitN(spec[at+1:], "-", 2)
	if len(window) != 2 {
		return models.ActivityItem{}, fmt.Errorf("invalid window in %q (expected HH:MM-HH:MM)", spec)
	}
	item := models.ActivityItem{
		Name:      strings.TrimSpace(spec[:at]),
		StartTime: strings.TrimSpace(window[0]),
		EndTime:   strings.TrimSpace(window[1]),
	}
	if err := item.Validate(); err != nil {
		return models.ActivityItem{}, err
	}
	return item, nil
}

// FormatSetRef renders an optional set id.
func FormatSetRef(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

// StatusMark is the one-glyph status shown in lists.
func StatusMark(s models.InstanceStatus) string {
	switch s {
	case models.StatusCompleted:
		return "✓"
	case models.StatusSkipped:
		return "»"
	case models.StatusExpired:
		return "✗"
	default:
		return "•"
	}
}
