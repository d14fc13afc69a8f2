package sqldb

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/events"
	"github.com/julianstephens/keepup/internal/models"
)

var itemColumns = []string{"id", "set_id", "name", "start_time", "end_time", "penalty_id", "reward_value", "level_reward", "position"}

func (q *queries) AddPenalty(p models.Penalty) (models.Penalty, error) {
	query, args, err := q.sb.Insert("penalties").
		Columns("name", "level_drop").
		Values(p.Name, p.LevelDrop).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return p, err
	}
	if err := q.run.QueryRow(query, args...).Scan(&p.ID); err != nil {
		return p, fmt.Errorf("failed to add penalty: %w", err)
	}
	q.emit(events.Penalties)
	return p, nil
}

func (q *queries) GetPenalty(id int64) (models.Penalty, error) {
	var p models.Penalty
	query, args, err := q.sb.Select("id", "name", "level_drop").
		From("penalties").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return p, err
	}
	err = q.run.QueryRow(query, args...).Scan(&p.ID, &p.Name, &p.LevelDrop)
	if errors.Is(err, sql.ErrNoRows) {
		return p, apperrors.NotFoundf("penalty %d", id)
	}
	if err != nil {
		return p, fmt.Errorf("failed to get penalty: %w", err)
	}
	return p, nil
}

func (q *queries) GetAllPenalties() ([]models.Penalty, error) {
	query, args, err := q.sb.Select("id", "name", "level_drop").
		From("penalties").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.run.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query penalties: %w", err)
	}
	defer rows.Close()

	var penalties []models.Penalty
	for rows.Next() {
		var p models.Penalty
		if err := rows.Scan(&p.ID, &p.Name, &p.LevelDrop); err != nil {
			return nil, fmt.Errorf("failed to scan penalty: %w", err)
		}
		penalties = append(penalties, p)
	}
	return penalties, rows.Err()
}

// AddActivitySet inserts the set and its items in order. Callers outside a
// transaction go through Store.AddActivitySet, which wraps this in one.
func (q *queries) AddActivitySet(set models.ActivitySet) (models.ActivitySet, error) {
	query, args, err := q.sb.Insert("activity_sets").
		Columns("name").
		Values(set.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return set, err
	}
	if err := q.run.QueryRow(query, args...).Scan(&set.ID); err != nil {
		return set, fmt.Errorf("failed to add activity set: %w", err)
	}

	for i := range set.Items {
		set.Items[i].SetID = set.ID
		set.Items[i].Position = i
		if err := q.insertItem(&set.Items[i]); err != nil {
			return set, err
		}
	}
	q.emit(events.Sets)
	return set, nil
}

func (q *queries) GetActivitySet(id int64) (models.ActivitySet, error) {
	var set models.ActivitySet
	query, args, err := q.sb.Select("id", "name").
		From("activity_sets").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return set, err
	}
	err = q.run.QueryRow(query, args...).Scan(&set.ID, &set.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return set, apperrors.NotFoundf("activity set %d", id)
	}
	if err != nil {
		return set, fmt.Errorf("failed to get activity set: %w", err)
	}

	items, err := q.selectItems(sq.Eq{"set_id": id})
	if err != nil {
		return set, err
	}
	set.Items = items
	return set, nil
}

func (q *queries) GetAllActivitySets() ([]models.ActivitySet, error) {
	query, args, err := q.sb.Select("id", "name").
		From("activity_sets").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.run.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity sets: %w", err)
	}

	var sets []models.ActivitySet
	index := make(map[int64]int)
	for rows.Next() {
		var set models.ActivitySet
		if err := rows.Scan(&set.ID, &set.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan activity set: %w", err)
		}
		index[set.ID] = len(sets)
		sets = append(sets, set)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := q.selectItems(nil)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if i, ok := index[item.SetID]; ok {
			sets[i].Items = append(sets[i].Items, item)
		}
	}
	return sets, nil
}

// DeleteActivitySet removes the set and its items. Assignment references are
// cleared separately through ClearSetReferences.
func (q *queries) DeleteActivitySet(id int64) error {
	query, args, err := q.sb.Delete("activity_items").Where(sq.Eq{"set_id": id}).ToSql()
	if err != nil {
		return err
	}
	if _, err := q.run.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete activity items: %w", err)
	}

	query, args, err = q.sb.Delete("activity_sets").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := q.run.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete activity set: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFoundf("activity set %d", id)
	}
	q.emit(events.Sets)
	return nil
}

// AddActivityItem appends item to the end of its set.
func (q *queries) AddActivityItem(item models.ActivityItem) (models.ActivityItem, error) {
	var next int
	query, args, err := q.sb.Select("COALESCE(MAX(position) + 1, 0)").
		From("activity_items").
		Where(sq.Eq{"set_id": item.SetID}).
		ToSql()
	if err != nil {
		return item, err
	}
	if err := q.run.QueryRow(query, args...).Scan(&next); err != nil {
		return item, fmt.Errorf("failed to compute item position: %w", err)
	}

	if _, err := q.GetActivitySet(item.SetID); err != nil {
		return item, err
	}

	item.Position = next
	if err := q.insertItem(&item); err != nil {
		return item, err
	}
	q.emit(events.Sets)
	return item, nil
}

func (q *queries) DeleteActivityItem(id int64) error {
	query, args, err := q.sb.Delete("activity_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := q.run.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete activity item: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFoundf("activity item %d", id)
	}
	q.emit(events.Sets)
	return nil
}

func (q *queries) insertItem(item *models.ActivityItem) error {
	query, args, err := q.sb.Insert("activity_items").
		Columns(itemColumns[1:]...).
		Values(item.SetID, item.Name, item.StartTime, item.EndTime, nullInt64(item.PenaltyID),
			item.RewardValue, item.LevelReward, item.Position).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}
	if err := q.run.QueryRow(query, args...).Scan(&item.ID); err != nil {
		return fmt.Errorf("failed to add activity item %q: %w", item.Name, err)
	}
	return nil
}

func (q *queries) selectItems(where sq.Sqlizer) ([]models.ActivityItem, error) {
	b := q.sb.Select(itemColumns...).From("activity_items").OrderBy("set_id", "position", "id")
	if where != nil {
		b = b.Where(where)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.run.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity items: %w", err)
	}
	defer rows.Close()

	var items []models.ActivityItem
	for rows.Next() {
		var item models.ActivityItem
		var penaltyID sql.NullInt64
		if err := rows.Scan(&item.ID, &item.SetID, &item.Name, &item.StartTime, &item.EndTime,
			&penaltyID, &item.RewardValue, &item.LevelReward, &item.Position); err != nil {
			return nil, fmt.Errorf("failed to scan activity item: %w", err)
		}
		item.PenaltyID = int64Ptr(penaltyID)
		items = append(items, item)
	}
	return items, rows.Err()
}
