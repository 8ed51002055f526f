// Package lock keeps a second engine from opening a log file that is already
// owned by another engine, in this process or another one.
package lock

import "errors"

// ErrLocked is returned when the log file is already owned by another engine.
var ErrLocked = errors.New("log file already in use by another bitcask instance")

// Suffix is appended to the log file path to name its lock file.
const Suffix = ".lock"
