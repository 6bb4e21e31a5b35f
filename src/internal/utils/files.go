package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/maksimkurb/netpolicy/src/internal/log"
)

func CloseOrPanic(file io.Closer) {
	if err := file.Close(); err != nil {
		panic(err)
	}
}

func CloseOrWarn(file io.Closer) {
	if err := file.Close(); err != nil {
		log.Warnf("Failed to close file: %v", err)
	}
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		CloseOrWarn(tmp)
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
