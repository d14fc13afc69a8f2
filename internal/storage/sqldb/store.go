// Package sqldb implements storage.Queries over database/sql. SQLite and
// Postgres share it and differ only in placeholder format and connection setup.
package sqldb

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/keepup/internal/events"
	"github.com/julianstephens/keepup/internal/logger"
	"github.com/julianstephens/keepup/internal/models"
	"github.com/julianstephens/keepup/internal/storage"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type queries struct {
	run  querier
	sb   sq.StatementBuilderType
	emit func(events.Collection)
	// lockRows adds FOR UPDATE to read-modify-write reads inside a transaction.
	// SQLite has no row locks; its single connection already serializes writers.
	lockRows bool
}

// Store is the non-transactional handle. Writes publish immediately.
type Store struct {
	*queries
	db       *sql.DB
	bus      *events.Bus
	lockRows bool
}

func New(db *sql.DB, ph sq.PlaceholderFormat, bus *events.Bus) *Store {
	if bus == nil {
		bus = events.NewBus()
	}
	s := &Store{db: db, bus: bus, lockRows: ph == sq.Dollar}
	s.queries = &queries{
		run:  db,
		sb:   sq.StatementBuilder.PlaceholderFormat(ph),
		emit: func(c events.Collection) { bus.Publish(events.Change{Collection: c}) },
	}
	return s
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Changes() *events.Bus {
	return s.bus
}

// InTx runs fn against a transaction. Changes are published only after commit.
func (s *Store) InTx(fn func(q storage.Queries) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	touched := make(map[events.Collection]struct{})
	txq := &queries{
		run:      tx,
		sb:       s.sb,
		emit:     func(c events.Collection) { touched[c] = struct{}{} },
		lockRows: s.lockRows,
	}

	if err := fn(txq); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	for c := range touched {
		s.bus.Publish(events.Change{Collection: c})
	}
	return nil
}

// AddActivitySet stores the set and its items atomically.
func (s *Store) AddActivitySet(set models.ActivitySet) (models.ActivitySet, error) {
	var out models.ActivitySet
	err := s.InTx(func(q storage.Queries) error {
		var err error
		out, err = q.AddActivitySet(set)
		return err
	})
	return out, err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		logger.Warn("Unparseable timestamp in database", "value", s, "error", err)
		return time.Time{}
	}
	return t
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

var (
	_ storage.Queries = (*queries)(nil)
	_ storage.Queries = (*Store)(nil)
)
