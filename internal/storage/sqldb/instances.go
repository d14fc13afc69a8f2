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

var instanceColumns = []string{
	"id", "date", "item_id", "set_id", "scheme", "name", "start_time", "end_time",
	"window_start", "window_end", "penalty_id", "reward_value", "level_reward",
	"status", "resolved_at", "closed_at",
}

// InsertInstance reports false when the instance already existed. Existing rows
// are never touched, so re-resolving a day cannot reset a terminal status.
func (q *queries) InsertInstance(inst models.ActivityInstance) (bool, error) {
	var closedAt sql.NullString
	if inst.ClosedAt != nil {
		closedAt = sql.NullString{String: formatTime(*inst.ClosedAt), Valid: true}
	}

	query, args, err := q.sb.Insert("activity_instances").
		Columns(instanceColumns...).
		Values(inst.ID, inst.Date, inst.ItemID, inst.SetID, string(inst.Scheme), inst.Name,
			inst.StartTime, inst.EndTime, inst.WindowStart.Unix(), inst.WindowEnd.Unix(),
			nullInt64(inst.PenaltyID), inst.RewardValue, inst.LevelReward,
			string(inst.Status), formatTime(inst.ResolvedAt), closedAt).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := q.run.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert activity instance: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		q.emit(events.Instances)
	}
	return rows > 0, nil
}

func (q *queries) GetInstance(id string) (models.ActivityInstance, error) {
	query, args, err := q.sb.Select(instanceColumns...).
		From("activity_instances").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.ActivityInstance{}, err
	}
	inst, err := scanInstance(q.run.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return inst, apperrors.NotFoundf("activity instance %s", id)
	}
	if err != nil {
		return inst, fmt.Errorf("failed to get activity instance: %w", err)
	}
	return inst, nil
}

func (q *queries) GetInstancesForDate(date string) ([]models.ActivityInstance, error) {
	return q.selectInstances(sq.Eq{"date": date})
}

// GetOverdueInstances returns pending instances whose window ended at or before now.
func (q *queries) GetOverdueInstances(now time.Time) ([]models.ActivityInstance, error) {
	return q.selectInstances(sq.And{
		sq.Eq{"status": string(models.StatusPending)},
		sq.LtOrEq{"window_end": now.Unix()},
	})
}

func (q *queries) TransitionInstance(id string, from, to models.InstanceStatus, at time.Time) (bool, error) {
	query, args, err := q.sb.Update("activity_instances").
		Set("status", string(to)).
		Set("closed_at", formatTime(at)).
		Where(sq.Eq{"id": id, "status": string(from)}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := q.run.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update activity instance: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}
	q.emit(events.Instances)
	return true, nil
}

func (q *queries) DeletePendingInstance(id string) (bool, error) {
	query, args, err := q.sb.Delete("activity_instances").
		Where(sq.Eq{"id": id, "status": string(models.StatusPending)}).
		ToSql()
	if err != nil {
		return false, err
	}
	res, err := q.run.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete activity instance: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		q.emit(events.Instances)
	}
	return rows > 0, nil
}

func (q *queries) selectInstances(where sq.Sqlizer) ([]models.ActivityInstance, error) {
	query, args, err := q.sb.Select(instanceColumns...).
		From("activity_instances").
		Where(where).
		OrderBy("window_start", "scheme DESC", "item_id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.run.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity instances: %w", err)
	}
	defer rows.Close()

	var instances []models.ActivityInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity instance: %w", err)
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstance(row rowScanner) (models.ActivityInstance, error) {
	var inst models.ActivityInstance
	var scheme, status, resolvedAt string
	var windowStart, windowEnd int64
	var penaltyID sql.NullInt64
	var closedAt sql.NullString

	err := row.Scan(&inst.ID, &inst.Date, &inst.ItemID, &inst.SetID, &scheme, &inst.Name,
		&inst.StartTime, &inst.EndTime, &windowStart, &windowEnd, &penaltyID,
		&inst.RewardValue, &inst.LevelReward, &status, &resolvedAt, &closedAt)
	if err != nil {
		return inst, err
	}

	inst.Scheme = models.Scheme(scheme)
	inst.Status = models.InstanceStatus(status)
	inst.WindowStart = time.Unix(windowStart, 0)
	inst.WindowEnd = time.Unix(windowEnd, 0)
	inst.PenaltyID = int64Ptr(penaltyID)
	inst.ResolvedAt = parseTime(resolvedAt)
	if closedAt.Valid {
		t := parseTime(closedAt.String)
		inst.ClosedAt = &t
	}
	return inst, nil
}
