package utils

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/0xRadioAc7iv/kvcache/internal"
)

type CLIInputs struct {
	Path           string
	Index          string
	LogLevel       string
	SyncWrites     bool
	RepairTornTail bool
	Dump           bool
}

// Log file used when -path is not given: <tmp>/data/kv.db
func DefaultLogPath() string {
	return filepath.Join(os.TempDir(), "data", "kv.db")
}

func HandleCLIInputs() *CLIInputs {
	inputs := &CLIInputs{}

	flag.StringVar(&inputs.Path, "path", DefaultLogPath(), "Log file to open (created if missing)")
	flag.StringVar(&inputs.Index, "index", internal.DEFAULT_INDEX, "In-memory index: hash or btree")
	flag.StringVar(&inputs.LogLevel, "loglevel", internal.DEFAULT_LOG_LEVEL, "Log level: debug, info, warn, error")
	flag.BoolVar(&inputs.SyncWrites, "sync", false, "fsync the log after every write")
	flag.BoolVar(&inputs.RepairTornTail, "repair", false, "Truncate an unreadable tail of the log on open")
	flag.BoolVar(&inputs.Dump, "dump", false, "Print every record in the log and exit")
	flag.Parse()

	return inputs
}

var ErrEmptyCommand = errors.New("empty command")

// Splits a shell-like command line into a lowercased command name and its
// arguments. Quotes and escapes follow POSIX shell rules, so values may
// contain spaces: put city "new york"
func SplitStringIntoCommandAndArguments(line string) (cmd string, args []string, err error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return "", nil, err
	}

	if len(words) == 0 {
		return "", nil, ErrEmptyCommand
	}

	return strings.ToLower(words[0]), words[1:], nil
}
