package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/phuslu/log"

	"github.com/0xRadioAc7iv/kvcache/bitcask"
	"github.com/0xRadioAc7iv/kvcache/internal"
	"github.com/0xRadioAc7iv/kvcache/internal/utils"
)

func main() {
	inputs := utils.HandleCLIInputs()
	logger := internal.NewLogger(inputs.LogLevel)

	db, err := bitcask.Open(inputs.Path,
		bitcask.WithIndex(inputs.Index),
		bitcask.WithSyncWrites(inputs.SyncWrites),
		bitcask.WithRepairTornTail(inputs.RepairTornTail),
		bitcask.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Str("path", inputs.Path).Msg("error while opening")
	}

	if inputs.Dump {
		err := dump(db, os.Stdout)
		closeDB(db, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("error while dumping log")
		}
		return
	}

	go func() {
		<-utils.NotifyOnInterruptOrKill()
		closeDB(db, logger)
		os.Exit(0)
	}()

	fmt.Printf("Opened %v\n", db.Path())
	fmt.Println("Type commands. 'help' for information or 'exit' to quit.")

	repl(db, os.Stdin)
	closeDB(db, logger)
}

func repl(db *bitcask.Bitcask, in *os.File) {
	reader := bufio.NewReader(in)

	for {
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}

		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		if line == "exit" {
			return
		}

		cmd, args, err := utils.SplitStringIntoCommandAndArguments(line)
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}

		fmt.Println(execute(db, cmd, args))
	}
}

func closeDB(db *bitcask.Bitcask, logger *log.Logger) {
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("error while closing")
	}
}
