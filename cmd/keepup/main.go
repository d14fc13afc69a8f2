package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/keepup/internal/cli"
	"github.com/julianstephens/keepup/internal/cli/activities"
	"github.com/julianstephens/keepup/internal/cli/backups"
	"github.com/julianstephens/keepup/internal/cli/day"
	"github.com/julianstephens/keepup/internal/cli/mailbox"
	"github.com/julianstephens/keepup/internal/cli/profiles"
	"github.com/julianstephens/keepup/internal/cli/settings"
	"github.com/julianstephens/keepup/internal/cli/system"
	"github.com/julianstephens/keepup/internal/config"
	"github.com/julianstephens/keepup/internal/constants"
	apperrors "github.com/julianstephens/keepup/internal/errors"
	"github.com/julianstephens/keepup/internal/keyring"
	"github.com/julianstephens/keepup/internal/logger"
	"github.com/julianstephens/keepup/internal/storage"
	"github.com/julianstephens/keepup/internal/storage/postgres"
	"github.com/julianstephens/keepup/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. Use 'keyring' to read the connection string from the OS keyring. Credentials must NOT be embedded in a connection string given here." type:"string" default:"~/.config/keepup/keepup.db"`
	Policy  string `help:"Policy file (YAML) with level bands, fallback penalty and reward multipliers." type:"string" default:"~/.config/keepup/policy.yaml"`
	Debug   bool   `help:"Also log to stderr at debug level."`

	Init     system.InitCmd     `cmd:"" help:"Initialize keepup storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Today    day.TodayCmd       `cmd:"" help:"Show today's activities."`
	Complete day.CompleteCmd    `cmd:"" help:"Complete an activity inside its window."`
	Skip     day.SkipCmd        `cmd:"" help:"Skip an activity without reward or penalty."`
	Export   day.ExportCmd      `cmd:"" help:"Export a day as an iCalendar file."`
	Sweep    system.SweepCmd    `cmd:"" help:"Expire overdue activities now."`
	Watch    system.WatchCmd    `cmd:"" help:"Keep expiring overdue activities until interrupted."`
	Validate system.ValidateCmd `cmd:"" help:"Check sets and the week for conflicting windows."`
	Profile  struct {
		Create profiles.ProfileCreateCmd `cmd:"" help:"Create your profile."`
		Show   profiles.ProfileShowCmd   `cmd:"" help:"Show your profile." default:"1"`
		Level  profiles.ProfileLevelCmd  `cmd:"" help:"Compare your level with your age level."`
	} `cmd:"" help:"Manage your profile."`
	Set struct {
		Add    activities.SetAddCmd    `cmd:"" help:"Add an activity set."`
		List   activities.SetListCmd   `cmd:"" help:"List activity sets." default:"1"`
		Show   activities.SetShowCmd   `cmd:"" help:"Show a set and its items."`
		Delete activities.SetDeleteCmd `cmd:"" help:"Delete a set and clear its assignments."`
	} `cmd:"" help:"Manage activity sets."`
	Item struct {
		Add activities.ItemAddCmd `cmd:"" help:"Add an activity to a set."`
	} `cmd:"" help:"Manage activities within sets."`
	Penalty struct {
		Add  activities.PenaltyAddCmd  `cmd:"" help:"Add a penalty."`
		List activities.PenaltyListCmd `cmd:"" help:"List penalties." default:"1"`
	} `cmd:"" help:"Manage penalties."`
	Assign struct {
		Weekly activities.AssignWeeklyCmd `cmd:"" help:"Use a set every week on a weekday."`
		Parity activities.AssignParityCmd `cmd:"" help:"Use a set on a weekday in odd or even months."`
		Clear  activities.AssignClearCmd  `cmd:"" help:"Clear a weekday's assignments."`
		Show   activities.AssignShowCmd   `cmd:"" help:"Show the week's assignments." default:"1"`
	} `cmd:"" help:"Assign activity sets to weekdays."`
	Inbox struct {
		List   mailbox.InboxListCmd   `cmd:"" help:"List messages, newest first." default:"1"`
		Unread mailbox.InboxUnreadCmd `cmd:"" help:"Print the number of unread messages."`
		Read   mailbox.InboxReadCmd   `cmd:"" help:"Mark all messages as read."`
		Delete mailbox.InboxDeleteCmd `cmd:"" help:"Delete one message."`
		Clear  mailbox.InboxClearCmd  `cmd:"" help:"Delete all messages."`
	} `cmd:"" help:"Penalty and level-up messages."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly routines with windows, rewards and penalties"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := run(ctx); err != nil {
		apperrors.Fatal(err)
	}
}

func run(ctx *kong.Context) error {
	policy, err := config.Load(CLI.Policy, CLI.Policy != constants.DefaultPolicyPath)
	if err != nil {
		return err
	}

	store, configDir, err := openStore(CLI.Config)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir, Level: policy.Log.Level}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	// Init, migrate and keyring commands manage storage themselves
	if needsLoad(ctx.Command()) {
		if err := store.Load(); err != nil {
			return err
		}
	}

	appCtx := &cli.Context{
		Store:  store,
		Config: policy,
	}
	return ctx.Run(appCtx)
}

func openStore(target string) (storage.Provider, string, error) {
	// "keyring" reads the OS keyring; the default path defers to the
	// connection string environment variable when it is set.
	trusted := target == "keyring"
	switch {
	case trusted:
		connStr, err := keyring.ResolveConnectionString(target)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read connection string: %w", err)
		}
		target = connStr
	case target == constants.DefaultConfigPath && os.Getenv(constants.ConnectionEnvVar) != "":
		connStr, err := keyring.ResolveConnectionString("")
		if err != nil {
			return nil, "", err
		}
		target = connStr
		trusted = true
	}

	if !isPostgres(target) {
		path, err := expandPath(target)
		if err != nil {
			return nil, "", err
		}
		return sqlite.NewStore(path), filepath.Dir(path), nil
	}

	if err := postgres.ValidateConnString(target); err != nil {
		// Embedded credentials are only rejected on the command line
		if !(trusted && errors.Is(err, postgres.ErrEmbeddedCredentials)) {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, "", fmt.Errorf("%w. Use '%s keyring set' with --config keyring, or a .pgpass file",
					err, constants.AppName)
			}
			return nil, "", err
		}
	}

	configDir, err := expandPath(filepath.Dir(constants.DefaultConfigPath))
	if err != nil {
		return nil, "", err
	}
	return postgres.New(target), configDir, nil
}

func needsLoad(command string) bool {
	for _, prefix := range []string{"init", "migrate", "keyring"} {
		if strings.HasPrefix(command, prefix) {
			return false
		}
	}
	return true
}

func isPostgres(target string) bool {
	return strings.HasPrefix(target, "postgres://") ||
		strings.HasPrefix(target, "postgresql://") ||
		strings.Contains(target, "host=")
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
