package storage

import (
	"time"

	"github.com/julianstephens/keepup/internal/events"
	"github.com/julianstephens/keepup/internal/models"
)

// Queries is every data operation. It is implemented both by the store itself
// and by the handle InTx passes to its callback, so the same code runs inside
// or outside a transaction.
type Queries interface {
	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Profile (singleton)
	GetProfile() (models.Profile, error)
	CreateProfile(models.Profile) (models.Profile, error)
	UpdateProfile(models.Profile) error

	// Penalties
	AddPenalty(models.Penalty) (models.Penalty, error)
	GetPenalty(id int64) (models.Penalty, error)
	GetAllPenalties() ([]models.Penalty, error)

	// Activity sets and items
	AddActivitySet(models.ActivitySet) (models.ActivitySet, error)
	GetActivitySet(id int64) (models.ActivitySet, error)
	GetAllActivitySets() ([]models.ActivitySet, error)
	DeleteActivitySet(id int64) error
	AddActivityItem(models.ActivityItem) (models.ActivityItem, error)
	DeleteActivityItem(id int64) error

	// Assignments, keyed by weekday. Get returns errors.ErrNotFound for a missing row.
	GetWeeklyAssignment(day time.Weekday) (models.WeeklyAssignment, error)
	PutWeeklyAssignment(models.WeeklyAssignment) error
	GetParityAssignment(day time.Weekday) (models.ParityAssignment, error)
	PutParityAssignment(models.ParityAssignment) error
	// ClearSetReferences nulls every assignment column pointing at setID.
	ClearSetReferences(setID int64) (int64, error)

	// Activity instances
	// InsertInstance stores inst unless its (date, item, scheme) already exists.
	InsertInstance(inst models.ActivityInstance) (bool, error)
	GetInstance(id string) (models.ActivityInstance, error)
	GetInstancesForDate(date string) ([]models.ActivityInstance, error)
	GetOverdueInstances(now time.Time) ([]models.ActivityInstance, error)
	// DeletePendingInstance drops an instance that no longer resolves. Rows in a
	// terminal status are kept as history and report false.
	DeletePendingInstance(id string) (bool, error)
	// TransitionInstance moves id from one status to another and reports
	// whether this call changed the row.
	TransitionInstance(id string, from, to models.InstanceStatus, at time.Time) (bool, error)

	// Mailbox
	AddMessage(models.MailboxMessage) (models.MailboxMessage, error)
	GetMessages(limit int) ([]models.MailboxMessage, error)
	CountUnread() (int, error)
	MarkAllRead() (int64, error)
	DeleteMessage(id int64) error
	DeleteAllMessages() (int64, error)
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	Queries

	// InTx runs fn in one transaction. fn's error rolls everything back.
	InTx(fn func(q Queries) error) error

	// Changes publishes a notification after every committed write.
	Changes() *events.Bus

	// Utils
	GetConfigPath() string
}
