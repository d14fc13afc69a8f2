package models

// Settings represents application-wide settings
type Settings struct {
	Timezone             string `json:"timezone"`              // IANA timezone name or "Local" for the system timezone
	NotificationsEnabled bool   `json:"notifications_enabled"` // push penalty notices to the tray app
	AutoBackup           bool   `json:"auto_backup"`           // back up SQLite before destructive inbox operations
}
