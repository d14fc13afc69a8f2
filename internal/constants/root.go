package constants

import "time"

const (
	AppName            = "keepup"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/keepup/keepup.db"
	DefaultPolicyPath  = "~/.config/keepup/policy.yaml"
	Version            = "v0.3.0"

	// ConnectionEnvVar holds a PostgreSQL connection string when the keyring is unavailable
	ConnectionEnvVar = "KEEPUP_DB_CONNECTION"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "keepup-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "keepup-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.keepup"
	TrayExecutablePrefix   = "keepup-tray"

	// Watch constants
	DefaultWatchSpec = "@every 1m"

	// ICS export
	ICSProductID = "-//julianstephens//keepup//EN"
)
