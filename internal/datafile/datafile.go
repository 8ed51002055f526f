// Package datafile implements the append-only log file that backs the engine.
//
// A Datafile tracks its logical end offset. Every append is a single WriteAt
// at that offset, and the offset only advances once the whole record has been
// written, so a failed append leaves the logical end where it was.
package datafile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/0xRadioAc7iv/kvcache/internal/utils"
)

// ErrShortRead is returned when fewer bytes than requested could be read,
// which means the log is truncated or the location is wrong.
var ErrShortRead = errors.New("datafile: short read")

// Datafile is an open append-only log file.
type Datafile struct {
	file       *os.File
	offset     int64 // logical end of the log
	syncWrites bool
}

// OpenOrCreate opens the log at path for reading and writing, creating it and
// any missing parent directories. An existing file is never truncated.
func OpenOrCreate(path string, syncWrites bool) (*Datafile, error) {
	if err := utils.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	// Sets the offset to the end of the file
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("seek log file: %w", err)
	}

	return &Datafile{file: f, offset: offset, syncWrites: syncWrites}, nil
}

// Append writes data at the end of the log and returns the offset at which it
// begins.
func (d *Datafile) Append(data []byte) (int64, error) {
	n, err := d.file.WriteAt(data, d.offset)
	if err != nil {
		return 0, fmt.Errorf("append at offset %d: %w", d.offset, err)
	}
	if n != len(data) {
		return 0, fmt.Errorf("append at offset %d: %w", d.offset, io.ErrShortWrite)
	}

	if d.syncWrites {
		if err := d.file.Sync(); err != nil {
			return 0, fmt.Errorf("sync after append: %w", err)
		}
	}

	offset := d.offset
	d.offset += int64(n)
	return offset, nil
}

// ReadAt reads exactly length bytes starting at offset.
func (d *Datafile) ReadAt(offset int64, length uint32) ([]byte, error) {
	buf := make([]byte, length)

	n, err := d.file.ReadAt(buf, offset)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %d bytes at offset %d, got %d: %w", length, offset, n, ErrShortRead)
	}
	return nil, fmt.Errorf("read at offset %d: %w", offset, err)
}

// Section returns a reader over the first size bytes of the log. Reads through
// it do not move the file's own offset.
func (d *Datafile) Section(size int64) *io.SectionReader {
	return io.NewSectionReader(d.file, 0, size)
}

// Size is the logical length of the log in bytes.
func (d *Datafile) Size() int64 {
	return d.offset
}

// Truncate discards everything from offset onwards. Only used to drop a torn
// tail found during recovery.
func (d *Datafile) Truncate(offset int64) error {
	if offset > d.offset {
		return fmt.Errorf("truncate at %d beyond end %d", offset, d.offset)
	}
	if err := utils.TruncateAt(d.file, offset); err != nil {
		return fmt.Errorf("truncate at %d: %w", offset, err)
	}
	d.offset = offset
	return nil
}

// Sync flushes the log to stable storage.
func (d *Datafile) Sync() error {
	return d.file.Sync()
}

// Name is the path the log was opened with.
func (d *Datafile) Name() string {
	return d.file.Name()
}

// Close closes the underlying file without syncing it.
func (d *Datafile) Close() error {
	return d.file.Close()
}
