package browser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const sessionLockName = ".session.lock"

// SessionLock guards a browser profile directory so only one session drives it at a time.
type SessionLock struct {
	lock *flock.Flock
}

// LockProfile takes an exclusive, non-blocking lock on the profile directory.
func LockProfile(profileDir string) (*SessionLock, error) {
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory %s: %w", profileDir, err)
	}

	lock := flock.New(filepath.Join(profileDir, sessionLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock profile directory %s: %w", profileDir, err)
	}
	if !locked {
		return nil, fmt.Errorf("profile directory %s is in use by another session", profileDir)
	}
	return &SessionLock{lock: lock}, nil
}

// Release unlocks the profile directory.
func (s *SessionLock) Release() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}
