package bitcask

import (
	"errors"

	"github.com/0xRadioAc7iv/kvcache/internal/lock"
	"github.com/0xRadioAc7iv/kvcache/internal/record"
)

var (
	// ErrNilValue is returned by Put when no value is supplied. Nothing is
	// written to the log.
	ErrNilValue = errors.New("bitcask: put without a value")

	// ErrCorruptRecord is returned when the index points at bytes that do not
	// decode to a live record for the requested key.
	ErrCorruptRecord = errors.New("bitcask: corrupt record")

	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("bitcask: engine is closed")

	// ErrRangeUnsupported is returned by Range when the engine was not opened
	// with an ordered index.
	ErrRangeUnsupported = errors.New("bitcask: range scans need the btree index")

	// ErrTornTail is returned by Put and Delete when the log was opened with
	// an unreadable tail and repair disabled. Reopen with
	// WithRepairTornTail(true) to write again.
	ErrTornTail = errors.New("bitcask: log has a torn tail")

	ErrLocked        = lock.ErrLocked
	ErrValueTooLarge = record.ErrValueTooLarge
	ErrKeyTooLarge   = record.ErrKeyTooLarge
)
