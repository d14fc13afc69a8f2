package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/events"
	"github.com/julianstephens/keepup/internal/models"
)

func (q *queries) GetWeeklyAssignment(day time.Weekday) (models.WeeklyAssignment, error) {
	a := models.WeeklyAssignment{DayOfWeek: day}
	var setID sql.NullInt64

	query, args, err := q.sb.Select("activity_set_id").
		From("weekly_assignments").
		Where(sq.Eq{"day_of_week": int(day)}).
		ToSql()
	if err != nil {
		return a, err
	}
	err = q.run.QueryRow(query, args...).Scan(&setID)
	if errors.Is(err, sql.ErrNoRows) {
		return a, apperrors.NotFoundf("weekly assignment for %s", day)
	}
	if err != nil {
		return a, fmt.Errorf("failed to get weekly assignment: %w", err)
	}
	a.ActivitySetID = int64Ptr(setID)
	return a, nil
}

func (q *queries) PutWeeklyAssignment(a models.WeeklyAssignment) error {
	query, args, err := q.sb.Insert("weekly_assignments").
		Columns("day_of_week", "activity_set_id").
		Values(int(a.DayOfWeek), nullInt64(a.ActivitySetID)).
		Suffix("ON CONFLICT (day_of_week) DO UPDATE SET activity_set_id = excluded.activity_set_id").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.run.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to save weekly assignment: %w", err)
	}
	q.emit(events.Assignments)
	return nil
}

func (q *queries) GetParityAssignment(day time.Weekday) (models.ParityAssignment, error) {
	a := models.ParityAssignment{DayOfWeek: day}
	var odd, even sql.NullInt64

	query, args, err := q.sb.Select("activity_set_id_odd", "activity_set_id_even").
		From("parity_assignments").
		Where(sq.Eq{"day_of_week": int(day)}).
		ToSql()
	if err != nil {
		return a, err
	}
	err = q.run.QueryRow(query, args...).Scan(&odd, &even)
	if errors.Is(err, sql.ErrNoRows) {
		return a, apperrors.NotFoundf("parity assignment for %s", day)
	}
	if err != nil {
		return a, fmt.Errorf("failed to get parity assignment: %w", err)
	}
	a.ActivitySetIDOdd = int64Ptr(odd)
	a.ActivitySetIDEven = int64Ptr(even)
	return a, nil
}

// PutParityAssignment writes both columns of the weekday's row.
func (q *queries) PutParityAssignment(a models.ParityAssignment) error {
	query, args, err := q.sb.Insert("parity_assignments").
		Columns("day_of_week", "activity_set_id_odd", "activity_set_id_even").
		Values(int(a.DayOfWeek), nullInt64(a.ActivitySetIDOdd), nullInt64(a.ActivitySetIDEven)).
		Suffix("ON CONFLICT (day_of_week) DO UPDATE SET " +
			"activity_set_id_odd = excluded.activity_set_id_odd, " +
			"activity_set_id_even = excluded.activity_set_id_even").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := q.run.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to save parity assignment: %w", err)
	}
	q.emit(events.Assignments)
	return nil
}

func (q *queries) ClearSetReferences(setID int64) (int64, error) {
	targets := []struct{ table, column string }{
		{"weekly_assignments", "activity_set_id"},
		{"parity_assignments", "activity_set_id_odd"},
		{"parity_assignments", "activity_set_id_even"},
	}

	var cleared int64
	for _, t := range targets {
		query, args, err := q.sb.Update(t.table).
			Set(t.column, nil).
			Where(sq.Eq{t.column: setID}).
			ToSql()
		if err != nil {
			return cleared, err
		}
		res, err := q.run.Exec(query, args...)
		if err != nil {
			return cleared, fmt.Errorf("failed to clear %s.%s: %w", t.table, t.column, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return cleared, fmt.Errorf("failed to get rows affected: %w", err)
		}
		cleared += n
	}
	if cleared > 0 {
		q.emit(events.Assignments)
	}
	return cleared, nil
}
