package session

import (
	"sync"
	"testing"
	"time"
)

type fakeDelegate struct {
	mu            sync.Mutex
	showPanel     int
	hidePanel     int
	startRec      int
	stopRec       int
	cancels       int
	inserted      []string
	stateChanges  []State
	insertResult  InsertResult
	insertBlocker chan struct{}
}

func newFakeDelegate() *fakeDelegate {
	return &fakeDelegate{insertResult: InsertFull}
}

func (d *fakeDelegate) ShowPanel()      { d.mu.Lock(); d.showPanel++; d.mu.Unlock() }
func (d *fakeDelegate) HidePanel()      { d.mu.Lock(); d.hidePanel++; d.mu.Unlock() }
func (d *fakeDelegate) StartRecording() { d.mu.Lock(); d.startRec++; d.mu.Unlock() }
func (d *fakeDelegate) StopRecording()  { d.mu.Lock(); d.stopRec++; d.mu.Unlock() }
func (d *fakeDelegate) Cancel()         { d.mu.Lock(); d.cancels++; d.mu.Unlock() }

func (d *fakeDelegate) InsertText(text string) InsertResult {
	d.mu.Lock()
	d.inserted = append(d.inserted, text)
	result := d.insertResult
	blocker := d.insertBlocker
	d.mu.Unlock()
	if blocker != nil {
		<-blocker
	}
	return result
}

func (d *fakeDelegate) StateChanged(s State) {
	d.mu.Lock()
	d.stateChanges = append(d.stateChanges, s)
	d.mu.Unlock()
}

func (d *fakeDelegate) counts() (show, hide, start, stop, cancel, insert int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.showPanel, d.hidePanel, d.startRec, d.stopRec, d.cancels, len(d.inserted)
}

func TestHotkeyStartsRecording(t *testing.T) {
	d := newFakeDelegate()
	m := NewMachine(d)

	m.Handle(HotkeyPressed())

	if m.State() != Recording {
		t.Fatalf("state = %v, want recording", m.State())
	}
	show, _, start, _, _, _ := d.counts()
	if show != 1 {
		t.Errorf("ShowPanel calls = %d, want 1", show)
	}
	if start != 1 {
		t.Errorf("StartRecording calls = %d, want 1", start)
	}
}

func TestStopThenCompletedInserts(t *testing.T) {
	for _, tt := range []struct {
		name   string
		result InsertResult
		want   State
	}{
		{"inserted", InsertFull, Success},
		{"clipboardOnly", InsertClipboardOnly, CopiedToClipboard},
		{"failed", InsertFailed, Error},
	} {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDelegate()
			d.insertResult = tt.result
			m := NewMachine(d)

			m.Handle(HotkeyPressed())
			m.Handle(StopRecording())
			m.Handle(TranscriptionStarted())
			m.Handle(TranscriptionCompleted("Hello world"))

			if m.State() != tt.want {
				t.Fatalf("state = %v, want %v", m.State(), tt.want)
			}
			d.mu.Lock()
			inserted := append([]string(nil), d.inserted...)
			d.mu.Unlock()
			if len(inserted) != 1 || inserted[0] != "Hello world" {
				t.Errorf("InsertText calls = %v, want [Hello world]", inserted)
			}
			if tt.want == Error && m.ErrorMessage() != "insertion failed" {
				t.Errorf("error message = %q, want insertion failed", m.ErrorMessage())
			}
		})
	}
}

func TestSecondHotkeyPressStopsRecording(t *testing.T) {
	d := newFakeDelegate()
	m := NewMachine(d)

	m.Handle(HotkeyPressed())
	m.Handle(HotkeyPressed())

	if m.State() != Recording {
		t.Fatalf("state = %v, want recording until transcription starts", m.State())
	}
	if _, _, _, stop, _, _ := d.counts(); stop != 1 {
		t.Errorf("StopRecording calls = %d, want 1", stop)
	}
}

func TestWhitespaceTranscriptGoesEmpty(t *testing.T) {
	d := newFakeDelegate()
	m := NewMachine(d)

	m.Handle(HotkeyPressed())
	m.Handle(TranscriptionCompleted("   "))

	if m.State() != Empty {
		t.Fatalf("state = %v, want empty", m.State())
	}
	if _, _, _, _, _, insert := d.counts(); insert != 0 {
		t.Error("InsertText invoked for whitespace-only transcript")
	}
}

func TestEscapeCancels(t *testing.T) {
	d := newFakeDelegate()
	m := NewMachine(d)

	m.Handle(HotkeyPressed())
	m.Handle(StopRecording())
	m.Handle(TranscriptionStarted())
	m.Handle(EscapePressed())

	if m.State() != Cancelled {
		t.Fatalf("state = %v, want cancelled", m.State())
	}
	if _, hide, _, _, cancel, _ := d.counts(); cancel != 1 || hide != 1 {
		t.Errorf("Cancel = %d, HidePanel = %d, want 1 each", cancel, hide)
	}
}

func TestForceResetBypassesCallbacks(t *testing.T) {
	d := newFakeDelegate()
	m := NewMachine(d)

	m.Handle(HotkeyPressed())
	m.Handle(TranscriptionStarted())

	d.mu.Lock()
	d.hidePanel, d.cancels = 0, 0
	d.stateChanges = nil
	d.mu.Unlock()

	m.ForceReset()

	if m.State() != Idle {
		t.Fatalf("state = %v, want idle", m.State())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancels != 0 || d.hidePanel != 0 {
		t.Error("ForceReset invoked delegate callbacks")
	}
	if len(d.stateChanges) != 0 {
		t.Errorf("StateChanged fired on ForceReset: %v", d.stateChanges)
	}
}

func TestForceResetDiscardsInFlightResult(t *testing.T) {
	d := newFakeDelegate()
	d.insertBlocker = make(chan struct{})
	m := NewMachine(d)

	m.Handle(HotkeyPressed())
	m.Handle(TranscriptionStarted())

	done := make(chan struct{})
	go func() {
		m.Handle(TranscriptionCompleted("late result"))
		close(done)
	}()

	// Wait for the dispatch to reach the blocking InsertText call.
	deadline := time.After(time.Second)
	for {
		d.mu.Lock()
		n := len(d.inserted)
		d.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("InsertText never invoked")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// Must not block even though a dispatch is mid-flight.
	m.ForceReset()
	close(d.insertBlocker)
	<-done

	if m.State() != Idle {
		t.Fatalf("state = %v, want idle after reset discarded the result", m.State())
	}
}

func TestDismissReturnsToIdle(t *testing.T) {
	d := newFakeDelegate()
	m := NewMachine(d)

	m.Handle(HotkeyPressed())
	m.Handle(TranscriptionCompleted("hi"))
	if m.State() != Success {
		t.Fatalf("state = %v, want success", m.State())
	}

	m.Handle(DismissCompleted())
	if m.State() != Idle {
		t.Fatalf("state = %v, want idle", m.State())
	}
}

func TestDismissWhileIdleIsNoOp(t *testing.T) {
	d := newFakeDelegate()
	m := NewMachine(d)

	m.Handle(DismissCompleted())

	if m.State() != Idle {
		t.Fatalf("state = %v, want idle", m.State())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.stateChanges) != 0 {
		t.Errorf("StateChanged fired for ignored event: %v", d.stateChanges)
	}
}

func TestUnknownPairsIgnored(t *testing.T) {
	for _, tt := range []struct {
		name  string
		setup []Event
		ev    Event
		want  State
	}{
		{"idle/stopRecording", nil, StopRecording(), Idle},
		{"idle/transcriptionCompleted", nil, TranscriptionCompleted("x"), Idle},
		{"idle/escapePressed", nil, EscapePressed(), Idle},
		{"recording/dismissCompleted", []Event{HotkeyPressed()}, DismissCompleted(), Recording},
		{"success/hotkeyPressed", []Event{HotkeyPressed(), TranscriptionCompleted("x")}, HotkeyPressed(), Success},
		{"success/escapePressed", []Event{HotkeyPressed(), TranscriptionCompleted("x")}, EscapePressed(), Success},
	} {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDelegate()
			m := NewMachine(d)
			for _, ev := range tt.setup {
				m.Handle(ev)
			}
			m.Handle(tt.ev)
			if m.State() != tt.want {
				t.Errorf("state = %v, want %v unchanged", m.State(), tt.want)
			}
		})
	}
}

func TestMockModeSuppressesSideEffects(t *testing.T) {
	d := newFakeDelegate()
	m := NewMachine(d)
	m.SetMockMode(true)

	m.Handle(HotkeyPressed())
	if _, _, start, _, _, _ := d.counts(); start != 0 {
		t.Error("StartRecording invoked in mock mode")
	}
	if show, _, _, _, _, _ := d.counts(); show != 1 {
		t.Error("ShowPanel suppressed in mock mode")
	}

	m.Handle(TranscriptionCompleted("mock text"))
	if m.State() != Success {
		t.Fatalf("state = %v, want success", m.State())
	}
	if _, _, _, _, _, insert := d.counts(); insert != 0 {
		t.Error("InsertText invoked in mock mode")
	}
}

func TestMockModeAutoClearsOnIdle(t *testing.T) {
	d := newFakeDelegate()
	m := NewMachine(d)
	m.SetMockMode(true)

	m.Handle(HotkeyPressed())
	m.Handle(EscapePressed())
	if _, _, _, _, cancel, _ := d.counts(); cancel != 0 {
		t.Error("Cancel invoked in mock mode")
	}

	m.Handle(DismissCompleted())
	if m.MockMode() {
		t.Error("mock mode survived return to idle")
	}
}

func TestStateStrings(t *testing.T) {
	for s, want := range map[State]string{
		Idle:              "idle",
		Recording:         "recording",
		Processing:        "processing",
		Success:           "success",
		CopiedToClipboard: "copiedToClipboard",
		Error:             "error",
		Empty:             "empty",
		Cancelled:         "cancelled",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
