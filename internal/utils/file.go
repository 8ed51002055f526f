package utils

import (
	"os"
	"path/filepath"
)

// Creates every missing directory above the given file path
func EnsureParentDir(path string) error {
	// 0 (special bit - ignored), 7 (rwx - owner), 5 (r-x - user group), 5 (r-x - others)
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// Truncates a file at a given offset and syncs the new length to disk
func TruncateAt(f *os.File, offset int64) error {
	if err := f.Truncate(offset); err != nil {
		return err
	}
	return f.Sync()
}

// Indicates if the given path exists or not (works for both files and directories)
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
