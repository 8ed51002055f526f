package internal

import (
	"os"

	"github.com/phuslu/log"
)

type Config struct {
	Index          string
	SyncWrites     bool
	RepairTornTail bool
	Logger         *log.Logger
}

const (
	IndexHash  = "hash"
	IndexBTree = "btree"
)

const DEFAULT_INDEX = IndexHash
const DEFAULT_LOG_LEVEL = "info"

func DefaultConfig() *Config {
	return &Config{
		Index:  DEFAULT_INDEX,
		Logger: NewLogger(DEFAULT_LOG_LEVEL),
	}
}

// NewLogger returns a stderr logger at the given level. Unknown levels fall
// back to info.
func NewLogger(level string) *log.Logger {
	return &log.Logger{
		Level:  log.ParseLevel(level),
		Writer: &log.IOWriter{Writer: os.Stderr},
	}
}
