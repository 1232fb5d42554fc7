//go:build !windows

package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

// Notify registers ch for the signals that should end the process.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}

// NotifyReset registers ch for SIGHUP, treated as a system-level
// interruption that force-resets the active session instead of exiting.
func NotifyReset(ch chan os.Signal) {
	signal.Notify(ch, syscall.SIGHUP)
}
