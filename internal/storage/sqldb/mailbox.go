package sqldb

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/events"
	"github.com/julianstephens/keepup/internal/models"
)

func (q *queries) AddMessage(m models.MailboxMessage) (models.MailboxMessage, error) {
	var instanceID sql.NullString
	if m.InstanceID != nil {
		instanceID = sql.NullString{String: *m.InstanceID, Valid: true}
	}

	query, args, err := q.sb.Insert("mailbox_messages").
		Columns("timestamp", "is_read", "kind", "instance_id", "activity_name",
			"activity_start_time", "activity_end_time", "level_drop", "penalty_name", "message").
		Values(formatTime(m.Timestamp), boolToInt(m.IsRead), string(m.Kind), instanceID, m.ActivityName,
			m.ActivityStartTime, m.ActivityEndTime, m.LevelDrop, m.PenaltyName, m.Message).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return m, err
	}
	if err := q.run.QueryRow(query, args...).Scan(&m.ID); err != nil {
		return m, fmt.Errorf("failed to add mailbox message: %w", err)
	}
	q.emit(events.Mailbox)
	return m, nil
}

// GetMessages returns the newest messages first. A limit of zero or less returns all.
func (q *queries) GetMessages(limit int) ([]models.MailboxMessage, error) {
	b := q.sb.Select("id", "timestamp", "is_read", "kind", "instance_id", "activity_name",
		"activity_start_time", "activity_end_time", "level_drop", "penalty_name", "message").
		From("mailbox_messages").
		OrderBy("id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.run.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mailbox messages: %w", err)
	}
	defer rows.Close()

	var messages []models.MailboxMessage
	for rows.Next() {
		var m models.MailboxMessage
		var timestamp, kind string
		var isRead int
		var instanceID sql.NullString
		if err := rows.Scan(&m.ID, &timestamp, &isRead, &kind, &instanceID, &m.ActivityName,
			&m.ActivityStartTime, &m.ActivityEndTime, &m.LevelDrop, &m.PenaltyName, &m.Message); err != nil {
			return nil, fmt.Errorf("failed to scan mailbox message: %w", err)
		}
		m.Timestamp = parseTime(timestamp)
		m.IsRead = isRead != 0
		m.Kind = models.MessageKind(kind)
		if instanceID.Valid {
			id := instanceID.String
			m.InstanceID = &id
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (q *queries) CountUnread() (int, error) {
	var count int
	query, args, err := q.sb.Select("COUNT(*)").
		From("mailbox_messages").
		Where(sq.Eq{"is_read": 0}).
		ToSql()
	if err != nil {
		return 0, err
	}
	if err := q.run.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// MarkAllRead flips every unread message in one statement.
func (q *queries) MarkAllRead() (int64, error) {
	query, args, err := q.sb.Update("mailbox_messages").
		Set("is_read", 1).
		Where(sq.Eq{"is_read": 0}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := q.run.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		q.emit(events.Mailbox)
	}
	return rows, nil
}

func (q *queries) DeleteMessage(id int64) error {
	query, args, err := q.sb.Delete("mailbox_messages").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := q.run.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete mailbox message: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFoundf("mailbox message %d", id)
	}
	q.emit(events.Mailbox)
	return nil
}

func (q *queries) DeleteAllMessages() (int64, error) {
	query, args, err := q.sb.Delete("mailbox_messages").ToSql()
	if err != nil {
		return 0, err
	}
	res, err := q.run.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete mailbox messages: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		q.emit(events.Mailbox)
	}
	return rows, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
