package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"murmur/beep"
	"murmur/insert"
	"murmur/log"
	"murmur/recorder"
	"murmur/session"
	"murmur/transcriber"
)

// How long a terminal state stays visible before the session dismisses
// itself back to idle.
const dismissDelay = 1500 * time.Millisecond

// delegate wires the state machine's side effects to the recorder, the
// transcription pipeline, the inserter and the feedback cues. It also plays
// the presentation layer's part: terminal states dismiss back to idle after
// a short display interval.
type delegate struct {
	rec      *recorder.Recorder
	coord    *transcriber.Coordinator
	inserter *insert.Inserter
	machine  *session.Machine // set right after construction

	completed atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (d *delegate) ShowPanel() { log.Info("panel shown") }
func (d *delegate) HidePanel() { log.Info("panel hidden") }

func (d *delegate) StartRecording() {
	beep.PlayStart()
	if err := d.rec.Start(); err != nil {
		log.Errorf("recording start failed: %v", err)
		// Feed the failure back as an event; dispatch is still busy with
		// hotkeyPressed, so it must go through a fresh goroutine.
		go d.machine.Handle(session.TranscriptionFailed("microphone unavailable: " + err.Error()))
	}
}

// StopRecording finalizes the artifact and hands it to the coordinator in
// the background. The coordinator's outcome feeds back into the machine as
// events; the artifact is deleted once transcription resolves.
func (d *delegate) StopRecording() {
	beep.PlayEnd()

	path, ok := d.rec.Stop()
	if !ok {
		go d.machine.Handle(session.TranscriptionCompleted(""))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()

	go func() {
		defer cancel()
		d.machine.Handle(session.TranscriptionStarted())

		text, err := d.coord.Transcribe(ctx, path)
		d.rec.Delete()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				// Session was cancelled; the machine already moved on.
				return
			}
			d.machine.Handle(session.TranscriptionFailed(err.Error()))
			return
		}
		d.completed.Add(1)
		d.machine.Handle(session.TranscriptionCompleted(text))
	}()
}

// Cancel aborts the in-flight transcription and discards the recording.
func (d *delegate) Cancel() {
	d.cancelTranscription()
	d.rec.Stop()
	d.rec.Delete()
}

func (d *delegate) cancelTranscription() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()
}

func (d *delegate) InsertText(text string) session.InsertResult {
	switch d.inserter.Insert(text) {
	case insert.Inserted:
		return session.InsertFull
	case insert.CopiedToClipboard:
		return session.InsertClipboardOnly
	default:
		return session.InsertFailed
	}
}

func (d *delegate) StateChanged(s session.State) {
	if s == session.Error {
		beep.PlayError()
		log.Error("session error: " + d.machine.ErrorMessage())
	}
	if s.Terminal() {
		time.AfterFunc(dismissDelay, func() {
			d.machine.Handle(session.DismissCompleted())
		})
	}
}

// emergencyCleanup releases recording and transcription resources outside
// the machine, ahead of a ForceReset.
func (d *delegate) emergencyCleanup() {
	d.cancelTranscription()
	d.rec.Stop()
	d.rec.Delete()
}
