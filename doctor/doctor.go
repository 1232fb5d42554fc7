// Package doctor runs interactive system diagnostics for the -doctor flag:
// hotkey delivery, microphone capture, transcription configuration, and the
// clipboard/paste path. Each check prints PASS or FAIL with a concrete fix
// where one is known.
package doctor

import (
	"fmt"
	"os"
	"time"

	"murmur/audio"
	"murmur/clipboard"
	"murmur/config"
	"murmur/hotkey"
	"murmur/insert"
	"murmur/paste"
	"murmur/recorder"
	"murmur/transcriber"
)

// Run executes all checks and returns an exit code (0 = all pass).
func Run(cfg *config.Config) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("murmur doctor - interactive system diagnostics")
	fmt.Println("==============================================")

	allPass := true
	for _, check := range []func(*config.Config) bool{
		checkHotkey,
		checkMicrophone,
		checkTranscription,
		checkInsertion,
	} {
		if !check(cfg) {
			allPass = false
		}
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkHotkey(_ *config.Config) bool {
	fmt.Println()
	fmt.Println("[1/4] Hotkey detection")

	if msg, err := hotkey.Diagnose(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	} else {
		fmt.Printf("  %s\n", msg)
	}

	fmt.Println("Press Ctrl+Shift+Space...")
	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkMicrophone(_ *config.Config) bool {
	fmt.Println()
	fmt.Println("[2/4] Microphone capture")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return false
	}
	for _, d := range devices {
		fmt.Printf("  found: %s\n", d.Name)
	}

	capture, err := ctx.NewCapture(nil, audio.CaptureConfig{SampleRate: 16000, Channels: 1})
	if err != nil {
		fmt.Printf("  FAIL: cannot open capture device: %v\n", err)
		return false
	}
	rec := recorder.New(capture)
	if err := rec.Start(); err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	fmt.Print("  Recording 2 seconds, say something...")
	time.Sleep(2 * time.Second)
	path, ok := rec.Stop()
	fmt.Println(" done")
	defer rec.Delete()
	if !ok {
		fmt.Println("  FAIL: no audio captured")
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() <= 44 {
		fmt.Println("  FAIL: artifact is empty")
		return false
	}
	fmt.Printf("  PASS: captured %.1f KB to %s\n", float64(info.Size())/1024, path)
	return true
}

func checkTranscription(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[3/4] Transcription configuration")

	c := transcriber.NewCoordinator(cfg)
	fmt.Printf("  backend: %s (mode=%s)\n", c.BackendName(), cfg.Mode)
	if reason := c.Validate(); reason != "" {
		fmt.Printf("  FAIL: %s\n", reason)
		return false
	}
	fmt.Println("  PASS: backend configuration looks usable")
	return true
}

func checkInsertion(_ *config.Config) bool {
	fmt.Println()
	fmt.Println("[4/4] Clipboard and paste")

	sender := paste.NewSender()
	if !sender.Available() {
		fmt.Println("  FAIL: paste keystroke unavailable")
		fmt.Println("  Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		return false
	}

	fmt.Println("Focus a text editor window...")
	for i := 5; i > 0; i-- {
		fmt.Printf("  %d...\n", i)
		time.Sleep(time.Second)
	}

	board := clipboard.NewSystem()
	prior, _ := board.ReadText()
	result := insert.New(board, sender).Insert("murmur-doctor-test")
	if result == insert.Failed {
		fmt.Println("  FAIL: insertion protocol reported failure")
		return false
	}
	fmt.Printf("  insertion result: %s\n", result)

	// The inserter restores the prior clipboard itself; confirm it did.
	if restored, err := board.ReadText(); err == nil && restored != prior && result == insert.Inserted {
		fmt.Printf("  FAIL: clipboard not preserved (got %q)\n", restored)
		return false
	}
	fmt.Println("  PASS: clipboard and paste verified")
	return true
}
