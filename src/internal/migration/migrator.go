package migration

import (
	"fmt"
	"path/filepath"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

// Report lists what a run did, by migration name.
type Report struct {
	Applied   []string
	Ignored   []string
	Postponed []string
	// Skipped were ignored in an earlier run.
	Skipped []string
}

// Migrator runs migrations in table order.
type Migrator struct {
	statePath  string
	migrations []Migration
}

// NewMigrator creates a migrator keeping its state in profileDir.
func NewMigrator(profileDir string, migrations []Migration) *Migrator {
	return &Migrator{
		statePath:  filepath.Join(profileDir, StateFileName),
		migrations: migrations,
	}
}

// Pending returns migrations that can run and were not ignored before.
func (m *Migrator) Pending() ([]Migration, error) {
	st, err := loadState(m.statePath)
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, mig := range m.migrations {
		if st.isIgnored(mig.Name) {
			continue
		}
		ok, err := canMigrate(mig)
		if err != nil {
			return nil, err
		}
		if ok {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Run asks decide about every pending migration and carries out the
// decision. The first failing backup or migration stops the run.
func (m *Migrator) Run(decide Decider) (*Report, error) {
	st, err := loadState(m.statePath)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, mig := range m.migrations {
		if st.isIgnored(mig.Name) {
			report.Skipped = append(report.Skipped, mig.Name)
			continue
		}
		ok, err := canMigrate(mig)
		if err != nil {
			return report, err
		}
		if !ok {
			continue
		}

		decision := decide(mig)
		log.Debugf("Migration %s: %s", mig.Name, decision)

		switch decision {
		case IgnoreMigration:
			st.ignore(mig.Name)
			if err := st.save(m.statePath); err != nil {
				return report, err
			}
			report.Ignored = append(report.Ignored, mig.Name)
			log.Infof("Migration %q will not be offered again", mig.Title)
			continue
		case ProceedWithBackup:
			if mig.Backup != nil {
				if err := mig.Backup(); err != nil {
					log.Errorf("Backup for migration %q failed: %v", mig.Title, err)
					return report, nperrors.NewMigrationError(fmt.Sprintf("backup for %s failed", mig.Name), err)
				}
			}
		case ProceedMigration:
		default:
			report.Postponed = append(report.Postponed, mig.Name)
			continue
		}

		if err := mig.Migrate(); err != nil {
			log.Errorf("Migration %q failed: %v", mig.Title, err)
			return report, nperrors.NewMigrationError(fmt.Sprintf("migration %s failed", mig.Name), err)
		}
		report.Applied = append(report.Applied, mig.Name)
		log.Infof("Migration %q applied", mig.Title)
	}
	return report, nil
}

func canMigrate(mig Migration) (bool, error) {
	if mig.CanMigrate == nil || mig.Migrate == nil {
		return false, nil
	}
	ok, err := mig.CanMigrate()
	if err != nil {
		return false, nperrors.NewMigrationError(fmt.Sprintf("failed to check migration %s", mig.Name), err)
	}
	return ok, nil
}
