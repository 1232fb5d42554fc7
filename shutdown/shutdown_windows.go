//go:build windows

package shutdown

import (
	"os"
	"os/signal"
)

// Notify registers ch for the signals that should end the process.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt)
}

// NotifyReset is a no-op on Windows; there is no SIGHUP equivalent.
func NotifyReset(ch chan os.Signal) {}
