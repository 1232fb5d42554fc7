package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"murmur/audio"
	"murmur/beep"
	"murmur/clipboard"
	"murmur/encoder"
	"murmur/insert"
	"murmur/paste"
	"murmur/recorder"
	"murmur/session"
	"murmur/transcriber"
)

// runTestMode drives a full session pipeline headlessly: audio comes from a
// replayed WAV file, insertion lands on an in-memory clipboard, and stdin
// commands stand in for the hotkey. Used by scripted end-to-end checks.
//
// Commands: KEYDOWN, KEYUP, ESCAPE, RESET, WAIT (until idle), STATE, TEXT,
// SLEEP <ms>, QUIT.
func runTestMode(coordinator *transcriber.Coordinator, wavPath string) {
	beep.Disable()

	pcm, err := recorder.ReadWAV(wavPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}

	fakeCtx := audio.NewFakeContext(pcm)
	capture, err := fakeCtx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	board := clipboard.NewFake()
	sender := paste.NewFakeSender()
	// Clipboard-only delivery leaves the transcript readable via TEXT.
	sender.SetAvailable(false)

	d := &delegate{
		rec:      recorder.New(capture),
		coord:    coordinator,
		inserter: insert.New(board, sender),
	}
	machine := session.NewMachine(d)
	d.machine = machine

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "KEYDOWN":
			machine.Handle(session.HotkeyPressed())
		case cmd == "KEYUP":
			machine.Handle(session.StopRecording())
		case cmd == "ESCAPE":
			machine.Handle(session.EscapePressed())
		case cmd == "RESET":
			d.emergencyCleanup()
			machine.ForceReset()
		case cmd == "WAIT":
			waitIdle(machine)
		case cmd == "STATE":
			fmt.Println(machine.State())
		case cmd == "TEXT":
			text, _ := board.ReadText()
			fmt.Println(text)
		case cmd == "QUIT":
			gracefulShutdown(d)
		case strings.HasPrefix(cmd, "SLEEP "):
			if ms, err := strconv.Atoi(cmd[6:]); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		}
	}
	gracefulShutdown(d)
}

func waitIdle(m *session.Machine) {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if m.State() == session.Idle {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	fmt.Fprintln(os.Stderr, "WAIT timed out")
}
