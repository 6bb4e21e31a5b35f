//go:build unix

package utils

import (
	"errors"
	"testing"
)

func TestLockProfile(t *testing.T) {
	dir := t.TempDir()

	lock, err := LockProfile(dir)
	if err != nil {
		t.Fatalf("LockProfile failed: %v", err)
	}

	if _, err := LockProfile(dir); !errors.Is(err, ErrProfileLocked) {
		t.Fatalf("Expected ErrProfileLocked, got %v", err)
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("second Unlock must be a no-op, got %v", err)
	}

	again, err := LockProfile(dir)
	if err != nil {
		t.Fatalf("expected lock to be free after Unlock, got %v", err)
	}
	_ = again.Unlock()
}
