package bitcask

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func keyDirs() map[string]KeyDir {
	return map[string]KeyDir{
		"hash":  NewHashKeyDir(),
		"btree": NewBTreeKeyDir(),
	}
}

func TestKeyDir_InsertLookupRemove(t *testing.T) {
	for name, kd := range keyDirs() {
		t.Run(name, func(t *testing.T) {
			_, ok := kd.Lookup([]byte("k"))
			assert.False(t, ok)

			kd.Insert([]byte("k"), KeyDirEntry{Offset: 0, RecordSize: 10})
			kd.Insert([]byte("k"), KeyDirEntry{Offset: 10, RecordSize: 12})

			entry, ok := kd.Lookup([]byte("k"))
			assert.True(t, ok)
			assert.Equal(t, KeyDirEntry{Offset: 10, RecordSize: 12}, entry)
			assert.Equal(t, 1, kd.Len())

			kd.Remove([]byte("k"))
			kd.Remove([]byte("never"))

			_, ok = kd.Lookup([]byte("k"))
			assert.False(t, ok)
			assert.Equal(t, 0, kd.Len())
		})
	}
}

func TestKeyDir_InsertCopiesKey(t *testing.T) {
	for name, kd := range keyDirs() {
		t.Run(name, func(t *testing.T) {
			key := []byte("abc")
			kd.Insert(key, KeyDirEntry{Offset: 1})
			key[0] = 'x'

			_, ok := kd.Lookup([]byte("abc"))
			assert.True(t, ok)
		})
	}
}

func TestKeyDir_Rebuild(t *testing.T) {
	entries := []Entry{
		{Key: []byte("a"), Offset: 0, Length: 10},
		{Key: []byte("b"), Offset: 10, Length: 10},
		{Key: []byte("a"), Offset: 20, Length: 11},
		{Key: []byte("b"), Offset: 31, Length: 9, Deleted: true},
		{Key: []byte("c"), Offset: 40, Length: 9, Deleted: true},
		{Key: []byte("d"), Offset: 49, Length: 10},
	}

	for name, kd := range keyDirs() {
		t.Run(name, func(t *testing.T) {
			kd.Insert([]byte("stale"), KeyDirEntry{Offset: 999})

			kd.Rebuild(slices.Values(entries))

			assert.Equal(t, 2, kd.Len())

			a, ok := kd.Lookup([]byte("a"))
			assert.True(t, ok)
			assert.Equal(t, KeyDirEntry{Offset: 20, RecordSize: 11}, a)

			_, ok = kd.Lookup([]byte("b"))
			assert.False(t, ok)
			_, ok = kd.Lookup([]byte("stale"))
			assert.False(t, ok)

			keys := kd.Keys()
			slices.SortFunc(keys, func(x, y []byte) int { return slices.Compare(x, y) })
			assert.Equal(t, [][]byte{[]byte("a"), []byte("d")}, keys)
		})
	}
}

func TestBTreeKeyDir_Ordered(t *testing.T) {
	kd := NewBTreeKeyDir()
	for i, k := range []string{"delta", "alpha", "charlie", "bravo"} {
		kd.Insert([]byte(k), KeyDirEntry{Offset: uint64(i)})
	}

	var keys []string
	for _, k := range kd.Keys() {
		keys = append(keys, string(k))
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta"}, keys)

	var ranged []string
	kd.AscendRange([]byte("b"), []byte("d"), func(key []byte, _ KeyDirEntry) bool {
		ranged = append(ranged, string(key))
		return true
	})
	assert.Equal(t, []string{"bravo", "charlie"}, ranged)
}

func TestNewKeyDir(t *testing.T) {
	kd, err := newKeyDir("")
	assert.NoError(t, err)
	assert.IsType(t, HashKeyDir{}, kd)

	kd, err = newKeyDir(IndexBTree)
	assert.NoError(t, err)
	assert.IsType(t, &BTreeKeyDir{}, kd)

	_, err = newKeyDir("unknown")
	assert.Error(t, err)
}
