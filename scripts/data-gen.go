/*
	Churn-heavy load generator. Several workers share one engine behind an
	external mutex, then the log is reopened and every key is checked against
	what the workers last wrote.
*/

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/0xRadioAc7iv/kvcache/bitcask"
	"github.com/0xRadioAc7iv/kvcache/internal"
	"github.com/0xRadioAc7iv/kvcache/internal/utils"
)

const (
	concurrency = 6

	// Fixed universe
	totalKeys   = 100
	totalValues = 100

	// Per-cycle behavior
	keysPerCycleWrite  = 20
	keysPerCycleDelete = 10
	cyclesPerWorker    = 500

	progressEvery = 100
)

// store serializes access to the engine and mirrors every mutation in a map.
type store struct {
	mu    sync.Mutex
	db    *bitcask.Bitcask
	model map[string]string
}

func (s *store) put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Put([]byte(key), []byte(value)); err != nil {
		return err
	}
	s.model[key] = value
	return nil
}

func (s *store) delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Delete([]byte(key)); err != nil {
		return err
	}
	delete(s.model, key)
	return nil
}

func main() {
	path := flag.String("path", utils.DefaultLogPath(), "Log file to churn")
	flag.Parse()

	logger := internal.NewLogger("warn")

	db, err := bitcask.Open(*path, bitcask.WithLogger(logger))
	if err != nil {
		fmt.Println("open error:", err)
		os.Exit(1)
	}

	start := time.Now()
	fmt.Println("Starting Bitcask churn-heavy load generator")

	keys := makeKeys(totalKeys)
	values := makeValues(totalValues)

	s := &store{db: db, model: make(map[string]string)}
	for _, k := range keys {
		if v, ok, err := db.GetString([]byte(k)); err == nil && ok {
			s.model[k] = v
		}
	}

	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(id, s, keys, values)
		}(i)
	}

	wg.Wait()
	fmt.Printf("Load finished in %v, log is %d bytes\n", time.Since(start), db.Size())

	if err := db.Close(); err != nil {
		fmt.Println("close error:", err)
		os.Exit(1)
	}

	if mismatches := verify(*path, logger, keys, s.model); mismatches > 0 {
		fmt.Printf("Recovery check failed: %d mismatched keys\n", mismatches)
		os.Exit(1)
	}
	fmt.Printf("Recovery check passed for %d live keys\n", len(s.model))
}

func runWorker(id int, s *store, keys []string, values []string) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

	for cycle := 1; cycle <= cyclesPerWorker; cycle++ {

		// ---- WRITE / OVERWRITE PHASE ----
		for i := 0; i < keysPerCycleWrite; i++ {
			key := keys[rng.Intn(len(keys))]
			val := values[rng.Intn(len(values))]

			if err := s.put(key, val); err != nil {
				fmt.Printf("[worker %d] PUT error: %v\n", id, err)
				return
			}
		}

		// ---- DELETE PHASE ----
		for i := 0; i < keysPerCycleDelete; i++ {
			key := keys[rng.Intn(len(keys))]

			if err := s.delete(key); err != nil {
				fmt.Printf("[worker %d] DELETE error: %v\n", id, err)
				return
			}
		}

		// ---- REWRITE PHASE (forces overwrite garbage) ----
		for i := 0; i < keysPerCycleWrite/2; i++ {
			key := keys[rng.Intn(len(keys))]
			val := values[rng.Intn(len(values))]

			if err := s.put(key, val); err != nil {
				fmt.Printf("[worker %d] REWRITE error: %v\n", id, err)
				return
			}
		}

		if cycle%progressEvery == 0 {
			fmt.Printf("[worker %d] completed %d cycles\n", id, cycle)
		}
	}
}

func verify(path string, logger *log.Logger, keys []string, model map[string]string) int {
	db, err := bitcask.Open(path, bitcask.WithLogger(logger))
	if err != nil {
		fmt.Println("reopen error:", err)
		return len(keys)
	}
	defer db.Close()

	mismatches := 0
	for _, k := range keys {
		got, ok, err := db.GetString([]byte(k))
		want, wantOK := model[k]
		if err != nil || ok != wantOK || got != want {
			mismatches++
		}
	}
	return mismatches
}

func makeKeys(n int) []string {
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = fmt.Sprintf("key-%03d", i)
	}
	return keys
}

func makeValues(n int) []string {
	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = fmt.Sprintf("value-%03d-xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx", i)
	}
	return values
}
