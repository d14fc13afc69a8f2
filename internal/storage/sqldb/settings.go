package sqldb

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/keepup/internal/constants"
	"github.com/julianstephens/keepup/internal/events"
	"github.com/julianstephens/keepup/internal/models"
)

func (q *queries) GetSettings() (models.Settings, error) {
	settings := models.Settings{
		Timezone:             constants.DefaultTimezone,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		AutoBackup:           constants.DefaultAutoBackup,
	}

	query, args, err := q.sb.Select("key", "value").From("settings").ToSql()
	if err != nil {
		return settings, err
	}
	rows, err := q.run.Query(query, args...)
	if err != nil {
		return settings, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, fmt.Errorf("failed to scan setting: %w", err)
		}
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingNotificationsEnabled:
			if b, err := strconv.ParseBool(value); err == nil {
				settings.NotificationsEnabled = b
			}
		case constants.SettingAutoBackup:
			if b, err := strconv.ParseBool(value); err == nil {
				settings.AutoBackup = b
			}
		}
	}
	return settings, rows.Err()
}

func (q *queries) SaveSettings(settings models.Settings) error {
	values := map[string]string{
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingNotificationsEnabled: strconv.FormatBool(settings.NotificationsEnabled),
		constants.SettingAutoBackup:           strconv.FormatBool(settings.AutoBackup),
	}
	for key, value := range values {
		query, args, err := q.sb.Insert("settings").
			Columns("key", "value").
			Values(key, value).
			Suffix("ON CONFLICT (key) DO UPDATE SET value = excluded.value").
			ToSql()
		if err != nil {
			return err
		}
		if _, err := q.run.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	q.emit(events.Settings)
	return nil
}

// EnsureDefaultSettings writes the default settings when none are stored yet.
func (s *Store) EnsureDefaultSettings() error {
	var count int
	query, args, err := s.sb.Select("COUNT(*)").From("settings").ToSql()
	if err != nil {
		return err
	}
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return fmt.Errorf("failed to count settings: %w", err)
	}
	if count > 0 {
		return nil
	}
	return s.SaveSettings(models.Settings{
		Timezone:             constants.DefaultTimezone,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		AutoBackup:           constants.DefaultAutoBackup,
	})
}
