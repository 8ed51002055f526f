package bitcask

import (
	"fmt"
	"iter"

	"github.com/google/btree"

	"github.com/0xRadioAc7iv/kvcache/internal"
)

// KeyDirEntry is the location of the latest record for a key.
//
// RecordSize is the total size of the record on disk (header + key + value),
// which is exactly what has to be read back to serve a Get.
type KeyDirEntry struct {
	Offset     uint64 // Byte offset in the log where the record starts
	RecordSize uint32 // Total size of the record on disk
}

// KeyDir is the in-memory index mapping keys to their latest on-disk record.
//
// It is never persisted. Rebuild replays a log scan in append order, so later
// records win and tombstones remove their key.
type KeyDir interface {
	Lookup(key []byte) (KeyDirEntry, bool)
	Insert(key []byte, entry KeyDirEntry)
	Remove(key []byte)
	Rebuild(entries iter.Seq[Entry])
	Len() int
	Keys() [][]byte
}

func newKeyDir(kind string) (KeyDir, error) {
	switch kind {
	case internal.IndexHash, "":
		return NewHashKeyDir(), nil
	case internal.IndexBTree:
		return NewBTreeKeyDir(), nil
	default:
		return nil, fmt.Errorf("unknown index kind %q", kind)
	}
}

func replay(kd KeyDir, entries iter.Seq[Entry]) {
	for entry := range entries {
		if entry.Deleted {
			kd.Remove(entry.Key)
			continue
		}
		kd.Insert(entry.Key, KeyDirEntry{Offset: entry.Offset, RecordSize: entry.Length})
	}
}

// HashKeyDir is a KeyDir backed by a Go map. Keys() is unordered.
type HashKeyDir map[string]KeyDirEntry

func NewHashKeyDir() HashKeyDir {
	return make(HashKeyDir)
}

func (kd HashKeyDir) Lookup(key []byte) (KeyDirEntry, bool) {
	entry, ok := kd[string(key)]
	return entry, ok
}

func (kd HashKeyDir) Insert(key []byte, entry KeyDirEntry) {
	kd[string(key)] = entry
}

func (kd HashKeyDir) Remove(key []byte) {
	delete(kd, string(key))
}

func (kd HashKeyDir) Rebuild(entries iter.Seq[Entry]) {
	clear(kd)
	replay(kd, entries)
}

func (kd HashKeyDir) Len() int {
	return len(kd)
}

func (kd HashKeyDir) Keys() [][]byte {
	keys := make([][]byte, 0, len(kd))
	for k := range kd {
		keys = append(keys, []byte(k))
	}
	return keys
}

type keyDirItem struct {
	key   string
	entry KeyDirEntry
}

func lessKeyDirItem(a, b keyDirItem) bool {
	return a.key < b.key
}

// BTreeKeyDir is a KeyDir kept in key order, so Keys() is sorted and
// AscendRange can walk a key range without touching the log.
type BTreeKeyDir struct {
	tree *btree.BTreeG[keyDirItem]
}

const btreeDegree = 32

func NewBTreeKeyDir() *BTreeKeyDir {
	return &BTreeKeyDir{tree: btree.NewG[keyDirItem](btreeDegree, lessKeyDirItem)}
}

func (kd *BTreeKeyDir) Lookup(key []byte) (KeyDirEntry, bool) {
	item, ok := kd.tree.Get(keyDirItem{key: string(key)})
	return item.entry, ok
}

func (kd *BTreeKeyDir) Insert(key []byte, entry KeyDirEntry) {
	kd.tree.ReplaceOrInsert(keyDirItem{key: string(key), entry: entry})
}

func (kd *BTreeKeyDir) Remove(key []byte) {
	kd.tree.Delete(keyDirItem{key: string(key)})
}

func (kd *BTreeKeyDir) Rebuild(entries iter.Seq[Entry]) {
	kd.tree.Clear(false)
	replay(kd, entries)
}

func (kd *BTreeKeyDir) Len() int {
	return kd.tree.Len()
}

func (kd *BTreeKeyDir) Keys() [][]byte {
	keys := make([][]byte, 0, kd.tree.Len())
	kd.tree.Ascend(func(item keyDirItem) bool {
		keys = append(keys, []byte(item.key))
		return true
	})
	return keys
}

// AscendRange calls fn for every key in [start, end) in ascending order until
// fn returns false. A nil end means no upper bound.
func (kd *BTreeKeyDir) AscendRange(start, end []byte, fn func(key []byte, entry KeyDirEntry) bool) {
	visit := func(item keyDirItem) bool {
		return fn([]byte(item.key), item.entry)
	}

	if end == nil {
		kd.tree.AscendGreaterOrEqual(keyDirItem{key: string(start)}, visit)
		return
	}
	kd.tree.AscendRange(keyDirItem{key: string(start)}, keyDirItem{key: string(end)}, visit)
}
