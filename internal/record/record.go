package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// DiskRecord is a single mutation as laid out in the log file.
//
// A record with ValueSize == TombstoneValueSize marks its key as deleted and
// carries no value bytes.
type DiskRecord struct {
	KeySize   uint32 // Length of Key in Bytes
	ValueSize int32  // Length of Value in Bytes, or TombstoneValueSize
	Key       []byte
	Value     []byte
}

// KeySize (4) + ValueSize (4)
const DiskRecordHeaderSizeBytes = 8

// TombstoneValueSize is the value length written for a deleted key.
const TombstoneValueSize int32 = -1

var (
	ErrShortBuffer        = errors.New("record: buffer too short for declared lengths")
	ErrTrailingBytes      = errors.New("record: buffer longer than declared lengths")
	ErrInvalidValueLength = errors.New("record: invalid value length")
	ErrValueTooLarge      = errors.New("record: value too large")
	ErrKeyTooLarge        = errors.New("record: key too large")
)

func CreateRecord(key, value []byte) (DiskRecord, error) {
	if uint64(len(key)) > math.MaxUint32 {
		return DiskRecord{}, ErrKeyTooLarge
	}
	if int64(len(value)) >= math.MaxInt32 {
		return DiskRecord{}, ErrValueTooLarge
	}

	record := DiskRecord{
		KeySize:   uint32(len(key)),
		ValueSize: int32(len(value)),
		Key:       key,
		Value:     value,
	}

	if record.Size() > math.MaxUint32 {
		return DiskRecord{}, ErrValueTooLarge
	}

	return record, nil
}

func CreateTombstoneRecord(key []byte) (DiskRecord, error) {
	if uint64(len(key)) > math.MaxUint32-DiskRecordHeaderSizeBytes {
		return DiskRecord{}, ErrKeyTooLarge
	}

	return DiskRecord{
		KeySize:   uint32(len(key)),
		ValueSize: TombstoneValueSize,
		Key:       key,
		Value:     nil,
	}, nil
}

// IsTombstone reports whether the record marks its key as deleted.
func (r *DiskRecord) IsTombstone() bool {
	return r.ValueSize == TombstoneValueSize
}

// Size is the total encoded length of the record (header + key + value).
func (r *DiskRecord) Size() int64 {
	return Size(r.KeySize, r.ValueSize)
}

// Size returns the total encoded length of a record with the given header
// fields. Tombstones contribute no value bytes.
func Size(keySize uint32, valueSize int32) int64 {
	return DiskRecordHeaderSizeBytes + int64(keySize) + int64(max(valueSize, 0))
}

func EncodeRecordToBytes(record *DiskRecord) ([]byte, error) {
	if record.ValueSize < TombstoneValueSize {
		return nil, ErrInvalidValueLength
	}

	buf := &bytes.Buffer{}
	buf.Grow(int(record.Size()))

	if err := binary.Write(buf, binary.LittleEndian, record.KeySize); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, record.ValueSize); err != nil {
		return nil, err
	}
	if _, err := buf.Write(record.Key); err != nil {
		return nil, err
	}
	if !record.IsTombstone() {
		if _, err := buf.Write(record.Value); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// EncodePut serializes a live key/value record.
func EncodePut(key, value []byte) ([]byte, error) {
	record, err := CreateRecord(key, value)
	if err != nil {
		return nil, err
	}
	return EncodeRecordToBytes(&record)
}

// EncodeTombstone serializes a delete marker for key.
func EncodeTombstone(key []byte) ([]byte, error) {
	record, err := CreateTombstoneRecord(key)
	if err != nil {
		return nil, err
	}
	return EncodeRecordToBytes(&record)
}

// DecodeHeader parses the fixed 8-byte header at the start of data.
func DecodeHeader(data []byte) (keySize uint32, valueSize int32, err error) {
	if len(data) < DiskRecordHeaderSizeBytes {
		return 0, 0, ErrShortBuffer
	}

	keySize = binary.LittleEndian.Uint32(data[0:4])
	valueSize = int32(binary.LittleEndian.Uint32(data[4:8]))

	if valueSize < TombstoneValueSize {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidValueLength, valueSize)
	}

	return keySize, valueSize, nil
}

// DecodeRecordFromBytes parses a buffer holding exactly one record.
//
// Key and Value alias data. Value is nil for tombstones.
func DecodeRecordFromBytes(data []byte) (*DiskRecord, error) {
	keySize, valueSize, err := DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	total := Size(keySize, valueSize)
	if int64(len(data)) < total {
		return nil, ErrShortBuffer
	}
	if int64(len(data)) > total {
		return nil, ErrTrailingBytes
	}

	keyEnd := DiskRecordHeaderSizeBytes + int64(keySize)

	record := &DiskRecord{
		KeySize:   keySize,
		ValueSize: valueSize,
		Key:       data[DiskRecordHeaderSizeBytes:keyEnd],
	}
	if !record.IsTombstone() {
		record.Value = data[keyEnd:total]
	}

	return record, nil
}
