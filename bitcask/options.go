package bitcask

import (
	"github.com/phuslu/log"

	"github.com/0xRadioAc7iv/kvcache/internal"
)

type Option func(*internal.Config)

// Index kinds accepted by WithIndex.
const (
	IndexHash  = internal.IndexHash
	IndexBTree = internal.IndexBTree
)

// WithIndex selects the in-memory index implementation.
func WithIndex(kind string) Option {
	return func(c *internal.Config) {
		c.Index = kind
	}
}

// WithSyncWrites fsyncs the log after every append.
func WithSyncWrites(sync bool) Option {
	return func(c *internal.Config) {
		c.SyncWrites = sync
	}
}

// WithRepairTornTail truncates unparseable bytes at the end of the log when
// it is opened, so that later appends stay reachable on replay.
func WithRepairTornTail(repair bool) Option {
	return func(c *internal.Config) {
		c.RepairTornTail = repair
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *internal.Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}
