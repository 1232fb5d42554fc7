package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"murmur/audio"
	"murmur/beep"
	"murmur/clipboard"
	"murmur/config"
	"murmur/doctor"
	"murmur/encoder"
	"murmur/hotkey"
	"murmur/insert"
	"murmur/log"
	"murmur/paste"
	"murmur/recorder"
	"murmur/session"
	"murmur/shutdown"
	"murmur/transcriber"
)

var version = "dev"

var shutdownOnce sync.Once

func gracefulShutdown(d *delegate) {
	shutdownOnce.Do(func() {
		if n := int(d.completed.Load()); n > 0 {
			log.SessionEnd(n)
		}
		log.Close()
		os.Exit(0)
	})
}

func run() {
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	mockFlag := flag.Bool("mock", false, "Drive state transitions without recording or inserting")
	testFlag := flag.String("test", "", "Test mode: replay the given WAV file, driven by stdin commands")
	quietFlag := flag.Bool("quiet", false, "Disable feedback sounds")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfg))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	if *quietFlag {
		beep.Disable()
	}

	coordinator := transcriber.NewCoordinator(cfg)
	if reason := coordinator.Validate(); reason != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", reason)
		log.Warn(reason)
	}
	coordinator.Warm()
	log.SessionStart(coordinator.BackendName(), cfg.Language)

	if *testFlag != "" {
		runTestMode(coordinator, *testFlag)
		return
	}

	audioCtx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer audioCtx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		selectedDevice = findDevice(audioCtx, *deviceFlag)
		if selectedDevice == nil {
			fmt.Fprintf(os.Stderr, "Warning: device %q not found, using default\n", *deviceFlag)
		}
	} else if *setupFlag {
		selectedDevice, err = selectDevice(audioCtx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v, using default\n", err)
		}
	}

	capture, err := audioCtx.NewCapture(selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	rec := recorder.New(capture)
	rec.SetSilenceWarning(func(warned bool) {
		if warned {
			log.Warn("no voice detected in the last few seconds")
		}
	})

	d := &delegate{
		rec:      rec,
		coord:    coordinator,
		inserter: insert.New(clipboard.NewSystem(), paste.NewSender()),
	}
	machine := session.NewMachine(d)
	d.machine = machine

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey registration failed: %v", err)
		fmt.Fprintf(os.Stderr, "Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	resetChan := make(chan os.Signal, 1)
	shutdown.NotifyReset(resetChan)

	mode := "hold"
	if cfg.HybridHotkey {
		mode = "hybrid tap/hold"
	}
	fmt.Printf("murmur ready: %s Ctrl+Shift+Space to dictate (%s via %s)\n",
		mode, cfg.Mode, coordinator.BackendName())

	eventLoop(cfg, machine, d, hk, *mockFlag, sigChan, resetChan)
}

// eventLoop translates hotkey, escape and signal activity into session
// events. It owns the process for its remaining lifetime.
func eventLoop(cfg *config.Config, machine *session.Machine, d *delegate,
	hk hotkey.Hotkey, mock bool, sigChan, resetChan chan os.Signal) {

	start := hk.Keydown()
	stop := hk.Keyup()
	if cfg.HybridHotkey {
		hy := hotkey.NewHybrid(hk, time.Duration(cfg.LongPressMs)*time.Millisecond)
		start = hy.Start()
		stop = hy.StopChan()
	}

	for {
		select {
		case <-start:
			if mock {
				// -mock should persist across sessions even though the
				// machine clears the flag on every return to idle.
				machine.SetMockMode(true)
			}
			machine.Handle(session.HotkeyPressed())

		case <-stop:
			if machine.State() == session.Recording {
				machine.Handle(session.StopRecording())
			}

		case <-hk.Escape():
			// Escape only means cancel while a session is on screen.
			if machine.State() != session.Idle {
				machine.Handle(session.EscapePressed())
			}

		case <-resetChan:
			// System-level interruption: clean up outside the machine,
			// then snap it back to idle without waiting on anything.
			d.emergencyCleanup()
			machine.ForceReset()

		case <-sigChan:
			gracefulShutdown(d)
		}
	}
}

// initCrashLog routes runtime panics to a file next to the other logs,
// which is the only place to look when a CGO crash takes the process down.
func initCrashLog() {
	path := filepath.Join(log.Dir(), "crash_log.txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(f, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(f, debug.CrashOptions{})
}
