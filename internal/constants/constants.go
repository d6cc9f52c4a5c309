package constants

import "time"

const (
	AppName            = "habitquest"
	DefaultKeyringUser = "database-connection"
	DefaultStorePath   = "~/.config/habitquest/habitquest.db"
	Version            = "v0.3.0"

	// DateFormat is the calendar day format used for reset and completion dates (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Record keys. They match the keys the browser widget used in localStorage
	// so exported data can be imported unchanged.
	HabitsRecordKey = "habitQuestHabits"
	StatsRecordKey  = "habitQuestStats"

	// Progression constants
	StartingLevel  = 1
	BaseXPPerLevel = 100

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitquest-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "habitquest-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitquest"
	TrayExecutablePrefix   = "habitquest-tray"

	// ConnectTimeout bounds the initial ping of network backends
	ConnectTimeout = 5 * time.Second
)
