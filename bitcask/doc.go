// Package bitcask is a single-file, append-only, log-structured key-value
// store.
//
// Every Put and Delete appends one record to the log; nothing is rewritten in
// place. An in-memory index maps each key to the location of its latest
// record and is rebuilt by replaying the whole log on Open.
//
// Record layout (little-endian):
//
//	key_length:u32 value_length:i32 key value
//
// A value_length of -1 marks a tombstone and carries no value bytes.
//
// A Bitcask is not safe for concurrent use. Callers that share one must
// serialize access themselves.
//
// Example:
//
//	db, err := bitcask.Open("/tmp/data/kv.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	err = db.Put([]byte("foo"), []byte("bar"))
//	val, ok, err := db.Get([]byte("foo"))
package bitcask
