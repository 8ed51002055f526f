package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestEncodeDecodeRecord(t *testing.T) {
	key := []byte("language")
	value := []byte("go")

	original, err := CreateRecord(key, value)
	if err != nil {
		t.Fatalf("unexpected create error: %v", err)
	}

	encoded, err := EncodeRecordToBytes(&original)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	if int64(len(encoded)) != original.Size() {
		t.Fatalf("encoded length %d, want %d", len(encoded), original.Size())
	}

	decoded, err := DecodeRecordFromBytes(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if decoded.KeySize != original.KeySize {
		t.Errorf("KeySize mismatch: got %v, want %v", decoded.KeySize, original.KeySize)
	}
	if decoded.ValueSize != original.ValueSize {
		t.Errorf("ValueSize mismatch: got %v, want %v", decoded.ValueSize, original.ValueSize)
	}
	if !bytes.Equal(decoded.Key, key) {
		t.Errorf("Key mismatch: got %v, want %v", decoded.Key, key)
	}
	if !bytes.Equal(decoded.Value, value) {
		t.Errorf("Value mismatch: got %v, want %v", decoded.Value, value)
	}
	if decoded.IsTombstone() {
		t.Errorf("live record decoded as tombstone")
	}
}

func TestEncodeDecodeTombstone(t *testing.T) {
	encoded, err := EncodeTombstone([]byte("gone"))
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	if len(encoded) != DiskRecordHeaderSizeBytes+4 {
		t.Fatalf("tombstone length %d, want %d", len(encoded), DiskRecordHeaderSizeBytes+4)
	}

	decoded, err := DecodeRecordFromBytes(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if !decoded.IsTombstone() {
		t.Fatalf("expected tombstone, got ValueSize %d", decoded.ValueSize)
	}
	if string(decoded.Key) != "gone" {
		t.Errorf("Key mismatch: got %q", decoded.Key)
	}
	if decoded.Value != nil {
		t.Errorf("tombstone carries value %v", decoded.Value)
	}
}

func TestEncodeEmptyValueIsNotTombstone(t *testing.T) {
	encoded, err := EncodePut([]byte("k"), []byte{})
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	decoded, err := DecodeRecordFromBytes(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if decoded.IsTombstone() {
		t.Fatal("empty value decoded as tombstone")
	}
	if len(decoded.Value) != 0 {
		t.Errorf("expected empty value, got %v", decoded.Value)
	}
}

func TestDecodeErrorsOnTruncatedData(t *testing.T) {
	encoded, err := EncodePut([]byte("abc"), []byte("xy"))
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	for i := 0; i < len(encoded); i++ {
		_, err := DecodeRecordFromBytes(encoded[:i])
		if err == nil {
			t.Fatalf("expected error when decoding truncated data of length %d, got nil", i)
		}
		if !errors.Is(err, ErrShortBuffer) {
			t.Fatalf("length %d: expected ErrShortBuffer, got %v", i, err)
		}
	}
}

func TestDecodeErrorsOnTrailingData(t *testing.T) {
	encoded, err := EncodePut([]byte("abc"), []byte("xy"))
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	_, err = DecodeRecordFromBytes(append(encoded, 0))
	if !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestDecodeHeaderRejectsInvalidValueLength(t *testing.T) {
	header := make([]byte, DiskRecordHeaderSizeBytes)
	binary.LittleEndian.PutUint32(header[0:4], 1)
	binary.LittleEndian.PutUint32(header[4:8], uint32(0xFFFFFFFE)) // -2

	if _, _, err := DecodeHeader(header); !errors.Is(err, ErrInvalidValueLength) {
		t.Fatalf("expected ErrInvalidValueLength, got %v", err)
	}
}

func TestEncodedByteLayout(t *testing.T) {
	encoded, err := EncodePut([]byte("a"), []byte("b"))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// Expected bytes structure:
	// uint32 KeySize
	// int32 ValueSize
	// []byte Key
	// []byte Value
	want := []byte{1, 0, 0, 0, 1, 0, 0, 0, 'a', 'b'}
	if !bytes.Equal(encoded, want) {
		t.Fatalf("layout mismatch: got %v want %v", encoded, want)
	}

	tombstone, err := EncodeTombstone([]byte("a"))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	want = []byte{1, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF, 'a'}
	if !bytes.Equal(tombstone, want) {
		t.Fatalf("tombstone layout mismatch: got %v want %v", tombstone, want)
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		name      string
		keySize   uint32
		valueSize int32
		want      int64
	}{
		{"live record", 3, 5, 16},
		{"empty value", 3, 0, 11},
		{"tombstone", 3, TombstoneValueSize, 11},
		{"empty key", 0, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Size(tt.keySize, tt.valueSize); got != tt.want {
				t.Errorf("Size(%d, %d) = %d, want %d", tt.keySize, tt.valueSize, got, tt.want)
			}
		})
	}
}
