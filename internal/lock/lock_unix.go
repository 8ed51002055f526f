//go:build unix

package lock

import (
	"fmt"
	"os"
	"syscall"
)

// LockFile attempts to acquire an exclusive, non-blocking advisory lock for
// the log file at path.
//
// On Unix systems, this uses flock(2) on a sibling file named path+Suffix.
// flock locks belong to the open file description, so a second LockFile on
// the same path fails even inside one process.
//
// The returned file handle must remain open for the duration of the lock.
func LockFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path+Suffix, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to open lock file: %w", err)
	}

	err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		f.Close()
		return nil, ErrLocked
	}

	return f, nil
}

// UnlockFile releases a lock acquired via LockFile.
//
// On Unix systems, this releases the advisory flock and closes the file. The
// lock file itself is left in place.
func UnlockFile(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
