package utils

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// LockFileName is created inside the profile directory while it is locked.
const LockFileName = ".lock"

// ErrProfileLocked is returned when another process holds the profile lock.
var ErrProfileLocked = errors.New("profile is locked by another process")

// ProfileLock is an exclusive advisory lock on a profile directory. It keeps
// two netpolicy processes from writing the same cookie store and cache.
type ProfileLock struct {
	mu   sync.Mutex
	file *os.File
}

// LockProfile creates dir if needed and takes the lock without blocking.
func LockProfile(dir string) (*ProfileLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filepath.Join(dir, LockFileName), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if err := lockFile(file); err != nil {
		CloseOrWarn(file)
		return nil, err
	}
	return &ProfileLock{file: file}, nil
}

// Unlock releases the lock. It is safe to call more than once.
func (l *ProfileLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := unlockFile(l.file)
	CloseOrWarn(l.file)
	l.file = nil
	return err
}
