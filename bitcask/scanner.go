package bitcask

import (
	"fmt"
	"io"
	"iter"
	"math"
	"strings"

	"github.com/0xRadioAc7iv/kvcache/internal/record"
)

// Entry describes one record found while scanning the log.
type Entry struct {
	Key     []byte
	Offset  uint64 // Byte offset of the record in the log
	Length  uint32 // Total record length (header + key + value)
	Deleted bool   // Record is a tombstone
}

// KeyString returns the key as text, replacing invalid UTF-8 sequences with
// U+FFFD.
func (e Entry) KeyString() string {
	return strings.ToValidUTF8(string(e.Key), "�")
}

func (e Entry) String() string {
	return fmt.Sprintf("Entry { key: %q, offset: %d, length: %d, deleted: %t }",
		e.KeyString(), e.Offset, e.Length, e.Deleted)
}

// Scanner walks the log from byte 0 to the length it had when the scanner was
// created. Appends made after that are not observed. A Scanner is single use;
// create a new one to scan again.
//
// Scanning stops at the first record that cannot be read in full (short
// header, short key or value, invalid value length). That is reported by
// Stopped rather than as an error.
type Scanner struct {
	r       *io.SectionReader
	offset  int64
	done    bool
	anomaly bool
}

func newScanner(r *io.SectionReader) *Scanner {
	return &Scanner{r: r}
}

// Next returns the next entry, or false once the scan has ended.
func (s *Scanner) Next() (Entry, bool) {
	if s.done {
		return Entry{}, false
	}

	entry, ok := s.readEntry()
	if !ok {
		s.done = true
		s.anomaly = s.offset < s.r.Size()
		return Entry{}, false
	}

	s.offset += int64(entry.Length)
	return entry, true
}

func (s *Scanner) readEntry() (Entry, bool) {
	size := s.r.Size()
	if s.offset >= size {
		return Entry{}, false
	}

	header := make([]byte, record.DiskRecordHeaderSizeBytes)
	if _, err := s.r.ReadAt(header, s.offset); err != nil {
		return Entry{}, false
	}

	keySize, valueSize, err := record.DecodeHeader(header)
	if err != nil {
		return Entry{}, false
	}

	total := record.Size(keySize, valueSize)
	if total > math.MaxUint32 || s.offset+total > size {
		return Entry{}, false
	}

	key := make([]byte, keySize)
	if _, err := s.r.ReadAt(key, s.offset+record.DiskRecordHeaderSizeBytes); err != nil && keySize > 0 {
		return Entry{}, false
	}

	// The value range was bounds checked above and is skipped, not read.
	return Entry{
		Key:     key,
		Offset:  uint64(s.offset),
		Length:  uint32(total),
		Deleted: valueSize == record.TombstoneValueSize,
	}, true
}

// All returns the remaining entries as a sequence.
func (s *Scanner) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for {
			entry, ok := s.Next()
			if !ok || !yield(entry) {
				return
			}
		}
	}
}

// Stopped reports where the scan ended and whether it ended cleanly at the end
// of the log. A false clean means the bytes from offset onwards could not be
// parsed as a record, typically a torn final write. It is only meaningful once
// Next has returned false.
func (s *Scanner) Stopped() (offset int64, clean bool) {
	return s.offset, !s.anomaly
}
