package cookies

import (
	"encoding/json"
	"os"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/utils"
)

// FileName is the cookie store file inside the profile directory.
const FileName = "cookies.json"

const storageVersion = 1

type storageFile struct {
	Version int     `json:"version"`
	Cookies []Entry `json:"cookies"`
}

func loadEntries(path string) ([]*Entry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, nperrors.NewStorageError("failed to read cookie store", err)
	}

	var file storageFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nperrors.NewStorageError("failed to parse cookie store "+path, err)
	}

	entries := make([]*Entry, 0, len(file.Cookies))
	for i := range file.Cookies {
		e := file.Cookies[i]
		if e.Name == "" || e.Host == "" || e.Domain == "" {
			continue
		}
		entries = append(entries, &e)
	}
	return entries, nil
}

func saveEntries(path string, entries []Entry) error {
	data, err := json.MarshalIndent(storageFile{Version: storageVersion, Cookies: entries}, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFileAtomic(path, data, 0600)
}

// WriteFile stores entries in the cookie store format. Migrations use it to
// convert legacy cookie files.
func WriteFile(path string, entries []Entry) error {
	if err := saveEntries(path, entries); err != nil {
		return nperrors.NewStorageError("failed to write cookie store", err)
	}
	return nil
}
