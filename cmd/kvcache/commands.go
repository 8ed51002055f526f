package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/0xRadioAc7iv/kvcache/bitcask"
)

func execute(db *bitcask.Bitcask, cmd string, args []string) string {
	switch cmd {
	case "ping":
		return "PONG!"
	case "put", "set":
		if len(args) != 2 {
			return "usage: PUT <key> <value>"
		}
		return commandPut(db, args[0], args[1])
	case "get":
		if len(args) != 1 {
			return "usage: GET <key>"
		}
		return commandGet(db, args[0])
	case "del", "delete":
		if len(args) != 1 {
			return "usage: DEL <key>"
		}
		return commandDelete(db, args[0])
	case "exists":
		if len(args) != 1 {
			return "usage: EXISTS <key>"
		}
		return strconv.FormatBool(db.Has([]byte(args[0])))
	case "count":
		return strconv.Itoa(db.Len())
	case "list":
		return commandList(db)
	case "scan":
		var sb strings.Builder
		if err := dump(db, &sb); err != nil {
			return "error: " + err.Error()
		}
		return strings.TrimRight(sb.String(), "\n")
	case "help":
		return strings.TrimSpace(helpString)
	default:
		return "Invalid Command"
	}
}

func commandPut(db *bitcask.Bitcask, key, value string) string {
	if err := db.Put([]byte(key), []byte(value)); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func commandGet(db *bitcask.Bitcask, key string) string {
	value, ok, err := db.GetString([]byte(key))
	if err != nil {
		return "error: " + err.Error()
	}
	if !ok {
		return "nil"
	}
	return value
}

func commandDelete(db *bitcask.Bitcask, key string) string {
	if err := db.Delete([]byte(key)); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func commandList(db *bitcask.Bitcask) string {
	keys := db.Keys()
	if len(keys) == 0 {
		return "nil"
	}

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, strings.ToValidUTF8(string(k), "�"))
	}

	return "----- KEYS START -----\n" + strings.Join(lines, "\n") + "\n----- KEYS END -----"
}

// dump writes every record in the log, superseded ones and tombstones
// included, one per line.
func dump(db *bitcask.Bitcask, w io.Writer) error {
	entries, err := db.Entries()
	if err != nil {
		return err
	}

	for entry := range entries {
		if _, err := fmt.Fprintln(w, entry); err != nil {
			return err
		}
	}
	return nil
}

const helpString = `
Available Commands:

PING
  Check if the shell is alive.
  Response: PONG!

PUT <key> <value>   (alias SET)
  Store a value for the given key. Quote values containing spaces.
  Overwrites the value if the key already exists.
  Response: ok

GET <key>
  Retrieve the value associated with the key.
  Response: value | nil

DEL <key>   (alias DELETE)
  Delete the key. A tombstone is written even if the key does not exist.
  Response: ok

EXISTS <key>
  Check if a key exists.
  Response: true | false

COUNT
  Return the total number of live keys.
  Response: integer

LIST
  List all live keys (sorted with -index btree).
  Response: list of keys | nil

SCAN
  Print every record in the log, including overwritten and deleted ones.

HELP
  Show this help message.

EXIT
  Close the log and quit.
`
