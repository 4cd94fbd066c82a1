package ioutils

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process already holds the lock of a
// collection.
var ErrLocked = errors.New("collection is locked by another musiccheck process")

// CollectionLock keeps two fixing runs from moving files in the same
// collection at once. The lock file lives in the temp directory so the
// collection itself stays untouched.
type CollectionLock struct {
	flock *flock.Flock
	root  string
}

// NewCollectionLock creates the lock for the collection at root.
func NewCollectionLock(root string) (*CollectionLock, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	sum := sha1.Sum([]byte(abs))
	path := filepath.Join(os.TempDir(), "musiccheck-"+hex.EncodeToString(sum[:8])+".lock")

	return &CollectionLock{flock: flock.New(path), root: abs}, nil
}

// Path returns the lock file path.
func (l *CollectionLock) Path() string {
	return l.flock.Path()
}

// TryLock acquires the lock without blocking. It returns ErrLocked if the
// lock is held elsewhere.
func (l *CollectionLock) TryLock() error {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", l.root, err)
	}
	if !acquired {
		return fmt.Errorf("%s: %w", l.root, ErrLocked)
	}
	return nil
}

// Unlock releases the lock.
func (l *CollectionLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", l.root, err)
	}
	return nil
}
