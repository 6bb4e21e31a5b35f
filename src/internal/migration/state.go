package migration

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

// StateFileName is kept in the profile directory.
const StateFileName = "migrations.toml"

type state struct {
	Ignored []string `toml:"ignored"`
}

func loadState(path string) (*state, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &state{}, nil
	}
	if err != nil {
		return nil, nperrors.NewMigrationError("failed to read migration state", err)
	}

	var s state
	if err := toml.Unmarshal(content, &s); err != nil {
		return nil, nperrors.NewMigrationError("failed to parse "+filepath.Base(path), err)
	}
	return &s, nil
}

func (s *state) isIgnored(name string) bool {
	return slices.Contains(s.Ignored, name)
}

func (s *state) ignore(name string) {
	if !s.isIgnored(name) {
		s.Ignored = append(s.Ignored, name)
		slices.Sort(s.Ignored)
	}
}

func (s *state) save(path string) error {
	content, err := toml.Marshal(s)
	if err != nil {
		return nperrors.NewMigrationError("failed to encode migration state", err)
	}
	if err := utils.WriteFileAtomic(path, content, 0644); err != nil {
		return nperrors.NewMigrationError("failed to write migration state", err)
	}
	return nil
}
