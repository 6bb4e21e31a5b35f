package migration

import (
	"fmt"
	"io"
	"os"

	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

// Decision is what to do with one pending migration.
type Decision int

const (
	// NoMigration leaves the migration pending for the next run.
	NoMigration Decision = iota
	// IgnoreMigration skips the migration now and in future runs.
	IgnoreMigration
	// ProceedMigration runs the migration.
	ProceedMigration
	// ProceedWithBackup backs up the affected files, then runs the migration.
	ProceedWithBackup
)

func (d Decision) String() string {
	switch d {
	case IgnoreMigration:
		return "ignore"
	case ProceedMigration:
		return "proceed"
	case ProceedWithBackup:
		return "proceed with backup"
	default:
		return "none"
	}
}

// Migration is one upgrade step.
type Migration struct {
	Name  string
	Title string
	// CanMigrate reports whether there is anything to upgrade.
	CanMigrate func() (bool, error)
	// Backup copies the files Migrate will change. Optional.
	Backup func() error
	Migrate func() error
}

// Decider chooses what to do with a pending migration.
type Decider func(m Migration) Decision

// StaticDecider proceeds with every migration except those named in ignore.
func StaticDecider(withBackup bool, ignore []string) Decider {
	ignored := make(map[string]bool, len(ignore))
	for _, name := range ignore {
		ignored[name] = true
	}
	return func(m Migration) Decision {
		switch {
		case ignored[m.Name]:
			return IgnoreMigration
		case withBackup:
			return ProceedWithBackup
		default:
			return ProceedMigration
		}
	}
}

// BackupPath returns the first free backup name for path: path.bak, then
// path.bak.1, path.bak.2 and so on.
func BackupPath(path string) string {
	candidate := path + ".bak"
	for i := 1; ; i++ {
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s.bak.%d", path, i)
	}
}

// BackupFile copies path to BackupPath(path) and returns the backup name.
func BackupFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer utils.CloseOrWarn(src)

	info, err := src.Stat()
	if err != nil {
		return "", err
	}

	target := BackupPath(path)
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		utils.CloseOrWarn(dst)
		_ = os.Remove(target)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(target)
		return "", err
	}
	return target, nil
}
