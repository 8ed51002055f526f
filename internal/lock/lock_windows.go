//go:build windows

package lock

import (
	"os"
)

// LockFile attempts to acquire an exclusive lock for the log file at path.
//
// On Windows, this is implemented by atomically creating a file named
// path+Suffix. If the file already exists, the log is assumed to be in use by
// another Bitcask instance.
//
// The returned file handle must be kept open for the duration of the lock.
func LockFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path+Suffix, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		return nil, ErrLocked
	}

	return f, nil
}

// UnlockFile releases a lock acquired via LockFile.
//
// On Windows, this removes the lock file from disk. UnlockFile should be
// called exactly once for each successful LockFile call.
func UnlockFile(f *os.File) error {
	name := f.Name()
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}
