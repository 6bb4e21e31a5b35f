package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/maksimkurb/netpolicy/src/internal/config"
	"github.com/maksimkurb/netpolicy/src/internal/log"
	"github.com/maksimkurb/netpolicy/src/internal/migration"
	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func CreateUpgradeProfileCommand() *UpgradeProfileCommand {
	uc := &UpgradeProfileCommand{
		fs:  flag.NewFlagSet("upgrade-profile", flag.ExitOnError),
		out: os.Stdout,
	}

	uc.fs.BoolVar(&uc.Backup, "backup", false, "Back up every file before it is migrated")
	uc.fs.Var(&uc.Ignore, "ignore", "Migration to ignore permanently (repeatable or comma-separated)")
	uc.fs.StringVar(&uc.ProfileDir, "profile-dir", "", "Profile directory (default: from the configuration)")
	uc.fs.BoolVar(&uc.DryRun, "dry-run", false, "Only list pending migrations")

	return uc
}

// UpgradeProfileCommand runs the profile migrations.
type UpgradeProfileCommand struct {
	fs         *flag.FlagSet
	configPath string
	out        io.Writer

	Backup     bool
	Ignore     stringList
	ProfileDir string
	DryRun     bool
}

func (u *UpgradeProfileCommand) Name() string {
	return u.fs.Name()
}

func (u *UpgradeProfileCommand) Init(args []string, ctx *AppContext) error {
	if err := u.fs.Parse(args); err != nil {
		return err
	}

	path, err := filepath.Abs(ctx.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	u.configPath = path

	if u.ProfileDir == "" {
		u.ProfileDir = profileDirFor(path)
	}
	return nil
}

// profileDirFor reads the profile directory from the configuration. A file
// in an old layout may not load; the default location is used then.
func profileDirFor(configPath string) string {
	if cfg, err := config.LoadConfig(configPath); err == nil {
		return cfg.GetAbsProfileDir()
	}
	return utils.GetAbsolutePath(config.DefaultProfileDir, filepath.Dir(configPath))
}

func (u *UpgradeProfileCommand) Run() error {
	lock, err := utils.LockProfile(u.ProfileDir)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	migrator := migration.NewMigrator(u.ProfileDir, migration.Default(u.configPath, u.ProfileDir))

	if u.DryRun {
		pending, err := migrator.Pending()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Fprintln(u.out, "Profile is up to date")
		}
		for _, m := range pending {
			fmt.Fprintf(u.out, "%s\t%s\n", m.Name, m.Title)
		}
		return nil
	}

	report, err := migrator.Run(migration.StaticDecider(u.Backup, u.Ignore))
	if report != nil {
		printReport(u.out, report)
	}
	if err != nil {
		log.Errorf("Profile upgrade stopped: %v", err)
		return err
	}
	return nil
}

func printReport(w io.Writer, r *migration.Report) {
	if len(r.Applied)+len(r.Ignored)+len(r.Postponed) == 0 {
		fmt.Fprintln(w, "Profile is up to date")
	}
	for _, name := range r.Applied {
		fmt.Fprintf(w, "applied   %s\n", name)
	}
	for _, name := range r.Ignored {
		fmt.Fprintf(w, "ignored   %s\n", name)
	}
	for _, name := range r.Postponed {
		fmt.Fprintf(w, "postponed %s\n", name)
	}
}
