package bitcask

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/phuslu/log"

	"github.com/0xRadioAc7iv/kvcache/internal"
	"github.com/0xRadioAc7iv/kvcache/internal/datafile"
	"github.com/0xRadioAc7iv/kvcache/internal/lock"
	"github.com/0xRadioAc7iv/kvcache/internal/record"
	"github.com/0xRadioAc7iv/kvcache/internal/utils"
)

// Bitcask is an open log plus the index rebuilt from it.
type Bitcask struct {
	path     string
	lockFile *os.File
	datafile *datafile.Datafile
	keyDir   KeyDir
	logger   *log.Logger
	closed   bool
	tornTail int64 // offset of an unreadable tail left in place, -1 if none
}

// Open opens the log at path, creating it and its parent directories if
// needed, and rebuilds the index by replaying the whole log.
func Open(path string, opts ...Option) (*Bitcask, error) {
	cfg := internal.DefaultConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	keyDir, err := newKeyDir(cfg.Index)
	if err != nil {
		return nil, err
	}

	exists := utils.PathExists(path)

	df, err := datafile.OpenOrCreate(path, cfg.SyncWrites)
	if err != nil {
		return nil, err
	}

	lf, err := lock.LockFile(path)
	if err != nil {
		df.Close()
		return nil, err
	}

	if !exists {
		cfg.Logger.Info().Str("path", path).Msg("log file does not exist, created one")
	}

	bk := &Bitcask{
		path:     path,
		lockFile: lf,
		datafile: df,
		keyDir:   keyDir,
		logger:   cfg.Logger,
		tornTail: -1,
	}

	if err := bk.loadKeyDir(cfg.RepairTornTail); err != nil {
		df.Close()
		lock.UnlockFile(lf)
		return nil, err
	}

	return bk, nil
}

func (bk *Bitcask) loadKeyDir(repair bool) error {
	scanner := bk.scanLog()

	records := 0
	counted := func(yield func(Entry) bool) {
		for entry := range scanner.All() {
			records++
			if !yield(entry) {
				return
			}
		}
	}
	bk.keyDir.Rebuild(counted)

	offset, clean := scanner.Stopped()
	if !clean {
		size := bk.datafile.Size()
		bk.logger.Warn().
			Str("path", bk.path).
			Int64("offset", offset).
			Int64("size", size).
			Int64("lost_bytes", size-offset).
			Msg("log ends with an unreadable record, ignoring the tail")

		if !repair {
			// Appends after the tail would be unreachable on the next replay.
			bk.tornTail = offset
			bk.logger.Warn().Str("path", bk.path).Msg("log is read-only until reopened with tail repair")
		} else {
			if err := bk.datafile.Truncate(offset); err != nil {
				return fmt.Errorf("repair torn tail: %w", err)
			}
			bk.logger.Info().Str("path", bk.path).Int64("size", offset).Msg("truncated torn tail")
		}
	}

	bk.logger.Info().
		Str("path", bk.path).
		Int64("size", bk.datafile.Size()).
		Int("records", records).
		Int("keys", bk.keyDir.Len()).
		Msg("bitcask opened")

	return nil
}

func (bk *Bitcask) checkWritable() error {
	if bk.closed {
		return ErrClosed
	}
	if bk.tornTail >= 0 {
		return fmt.Errorf("%w at offset %d", ErrTornTail, bk.tornTail)
	}
	return nil
}

func (bk *Bitcask) scanLog() *Scanner {
	return newScanner(bk.datafile.Section(bk.datafile.Size()))
}

// Put appends a record for key and points the index at it. A nil value is
// rejected with ErrNilValue; an empty non-nil value is stored as such.
func (bk *Bitcask) Put(key, value []byte) error {
	if err := bk.checkWritable(); err != nil {
		return err
	}
	if value == nil {
		return ErrNilValue
	}

	encoded, err := record.EncodePut(key, value)
	if err != nil {
		return err
	}

	offset, err := bk.datafile.Append(encoded)
	if err != nil {
		bk.logger.Error().Err(err).Str("path", bk.path).Msg("put failed")
		return fmt.Errorf("put: %w", err)
	}

	bk.keyDir.Insert(key, KeyDirEntry{Offset: uint64(offset), RecordSize: uint32(len(encoded))})
	return nil
}

// Get returns the latest value stored for key. A missing key is reported as
// ok == false with a nil error.
func (bk *Bitcask) Get(key []byte) (value []byte, ok bool, err error) {
	if bk.closed {
		return nil, false, ErrClosed
	}

	entry, ok := bk.keyDir.Lookup(key)
	if !ok {
		return nil, false, nil
	}

	diskRecord, err := bk.readRecord(entry)
	if err != nil {
		return nil, false, err
	}

	if diskRecord.IsTombstone() || !bytes.Equal(diskRecord.Key, key) {
		return nil, false, fmt.Errorf("%w: offset %d does not hold a live record for the key", ErrCorruptRecord, entry.Offset)
	}

	return diskRecord.Value, true, nil
}

// GetString is Get with the value decoded as text. Invalid UTF-8 sequences
// are replaced with U+FFFD.
func (bk *Bitcask) GetString(key []byte) (string, bool, error) {
	value, ok, err := bk.Get(key)
	if err != nil || !ok {
		return "", ok, err
	}
	return strings.ToValidUTF8(string(value), "�"), true, nil
}

func (bk *Bitcask) readRecord(entry KeyDirEntry) (*record.DiskRecord, error) {
	buf, err := bk.datafile.ReadAt(int64(entry.Offset), entry.RecordSize)
	if err != nil {
		if errors.Is(err, datafile.ErrShortRead) {
			return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
		}
		return nil, fmt.Errorf("get: %w", err)
	}

	diskRecord, err := record.DecodeRecordFromBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: offset %d: %w", ErrCorruptRecord, entry.Offset, err)
	}

	return diskRecord, nil
}

// Delete appends a tombstone for key and drops it from the index. The
// tombstone is written whether or not the key currently exists.
func (bk *Bitcask) Delete(key []byte) error {
	if err := bk.checkWritable(); err != nil {
		return err
	}

	encoded, err := record.EncodeTombstone(key)
	if err != nil {
		return err
	}

	if _, err := bk.datafile.Append(encoded); err != nil {
		bk.logger.Error().Err(err).Str("path", bk.path).Msg("delete failed")
		return fmt.Errorf("delete: %w", err)
	}

	bk.keyDir.Remove(key)
	return nil
}

// Has reports whether key currently has a value, without reading the log.
func (bk *Bitcask) Has(key []byte) bool {
	if bk.closed {
		return false
	}
	_, ok := bk.keyDir.Lookup(key)
	return ok
}

// Len is the number of live keys.
func (bk *Bitcask) Len() int {
	if bk.closed {
		return 0
	}
	return bk.keyDir.Len()
}

// Keys returns the live keys. They are sorted when the btree index is in use.
func (bk *Bitcask) Keys() [][]byte {
	if bk.closed {
		return nil
	}
	return bk.keyDir.Keys()
}

// Range calls fn with every live key in [start, end) and its value, in key
// order, until fn returns false. A nil end means no upper bound. It needs the
// btree index. The key set is captured before fn is first called, so fn may
// Put or Delete; those changes are not reflected in the ongoing walk.
func (bk *Bitcask) Range(start, end []byte, fn func(key, value []byte) bool) error {
	if bk.closed {
		return ErrClosed
	}

	ordered, ok := bk.keyDir.(*BTreeKeyDir)
	if !ok {
		return ErrRangeUnsupported
	}

	type located struct {
		key   []byte
		entry KeyDirEntry
	}

	var snapshot []located
	ordered.AscendRange(start, end, func(key []byte, entry KeyDirEntry) bool {
		snapshot = append(snapshot, located{key: key, entry: entry})
		return true
	})

	for _, item := range snapshot {
		diskRecord, err := bk.readRecord(item.entry)
		if err != nil {
			return err
		}
		if diskRecord.IsTombstone() {
			return fmt.Errorf("%w: offset %d holds a tombstone", ErrCorruptRecord, item.entry.Offset)
		}
		if !fn(item.key, diskRecord.Value) {
			return nil
		}
	}

	return nil
}

// Scan returns a fresh Scanner over the whole log as it is now. It reads the
// log directly and ignores the index.
func (bk *Bitcask) Scan() (*Scanner, error) {
	if bk.closed {
		return nil, ErrClosed
	}
	return bk.scanLog(), nil
}

// Entries is Scan as a sequence.
func (bk *Bitcask) Entries() (iter.Seq[Entry], error) {
	scanner, err := bk.Scan()
	if err != nil {
		return nil, err
	}
	return scanner.All(), nil
}

// Size is the current length of the log in bytes.
func (bk *Bitcask) Size() int64 {
	return bk.datafile.Size()
}

// Path is the log file the engine was opened on.
func (bk *Bitcask) Path() string {
	return bk.path
}

// Sync flushes the log to stable storage.
func (bk *Bitcask) Sync() error {
	if bk.closed {
		return ErrClosed
	}
	return bk.datafile.Sync()
}

// Close syncs and closes the log and releases the lock. Calling Close more
// than once is a no-op.
func (bk *Bitcask) Close() error {
	if bk.closed {
		return nil
	}
	bk.closed = true

	var errs []error
	if err := bk.datafile.Sync(); err != nil {
		errs = append(errs, fmt.Errorf("sync log: %w", err))
	}
	if err := bk.datafile.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close log: %w", err))
	}
	if err := lock.UnlockFile(bk.lockFile); err != nil {
		errs = append(errs, fmt.Errorf("release lock: %w", err))
	}

	bk.logger.Info().Str("path", bk.path).Int64("size", bk.datafile.Size()).Msg("bitcask closed")

	return errors.Join(errs...)
}
