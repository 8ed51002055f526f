package utils

import (
	"os"
	"os/signal"
	"syscall"
)

// NotifyOnInterruptOrKill returns a channel that receives once the process
// gets an interrupt (Ctrl+C) or termination signal (SIGTERM), so the caller
// can shut down cleanly.
func NotifyOnInterruptOrKill() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	return sigChan
}
