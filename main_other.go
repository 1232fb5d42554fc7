//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// The OS hotkey APIs require the main thread; run() moves to a
	// goroutine under mainthread's control.
	mainthread.Init(run)
}
