// Package session holds the dictation session state machine. It is the
// single source of truth for session state: collaborators feed it events,
// it applies the transition table and drives side effects through the
// Delegate. Events are processed one at a time in arrival order.
package session

import (
	"strings"
	"sync"

	"murmur/log"
)

// State is the current phase of the dictation session.
type State int

const (
	Idle State = iota
	Recording
	Processing
	Success
	CopiedToClipboard
	Error
	Empty
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Processing:
		return "processing"
	case Success:
		return "success"
	case CopiedToClipboard:
		return "copiedToClipboard"
	case Error:
		return "error"
	case Empty:
		return "empty"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is an end-of-session state waiting for the
// presentation layer's dismissCompleted.
func (s State) Terminal() bool {
	switch s {
	case Success, CopiedToClipboard, Error, Empty, Cancelled:
		return true
	}
	return false
}

type eventKind int

const (
	evHotkeyPressed eventKind = iota
	evStopRecording
	evTranscriptionStarted
	evTranscriptionCompleted
	evTranscriptionFailed
	evEscapePressed
	evDismissCompleted
)

// Event is one external stimulus for the machine. Construct events with the
// functions below; the zero value is hotkeyPressed.
type Event struct {
	kind   eventKind
	text   string // transcriptionCompleted
	reason string // transcriptionFailed
}

func HotkeyPressed() Event        { return Event{kind: evHotkeyPressed} }
func StopRecording() Event        { return Event{kind: evStopRecording} }
func TranscriptionStarted() Event { return Event{kind: evTranscriptionStarted} }
func EscapePressed() Event        { return Event{kind: evEscapePressed} }
func DismissCompleted() Event     { return Event{kind: evDismissCompleted} }

func TranscriptionCompleted(text string) Event {
	return Event{kind: evTranscriptionCompleted, text: text}
}

func TranscriptionFailed(reason string) Event {
	return Event{kind: evTranscriptionFailed, reason: reason}
}

func (e Event) String() string {
	switch e.kind {
	case evHotkeyPressed:
		return "hotkeyPressed"
	case evStopRecording:
		return "stopRecording"
	case evTranscriptionStarted:
		return "transcriptionStarted"
	case evTranscriptionCompleted:
		return "transcriptionCompleted"
	case evTranscriptionFailed:
		return "transcriptionFailed"
	case evEscapePressed:
		return "escapePressed"
	case evDismissCompleted:
		return "dismissCompleted"
	default:
		return "unknown"
	}
}

// InsertResult is the delegate's report of how text delivery landed.
type InsertResult int

const (
	InsertFull          InsertResult = iota // pasted into the focused app
	InsertClipboardOnly                     // left on the clipboard
	InsertFailed                            // could not be delivered at all
)

// Delegate receives the machine's outbound side effects. Implementations
// bridge to the recorder, the transcription pipeline, the inserter and the
// presentation layer. Calls arrive from whatever goroutine delivered the
// triggering event, one at a time.
type Delegate interface {
	ShowPanel()
	HidePanel()
	StartRecording()
	StopRecording()
	Cancel()
	InsertText(text string) InsertResult
	StateChanged(State)
}

// Machine is the session state machine. One instance per process.
type Machine struct {
	delegate Delegate

	// Serializes Handle end to end, side effects included.
	dispatchMu sync.Mutex

	// Guards the fields below. Never held across delegate calls, so
	// ForceReset can always take it without waiting on in-flight work.
	mu     sync.Mutex
	state  State
	errMsg string
	mock   bool
	gen    uint64
}

func NewMachine(delegate Delegate) *Machine {
	return &Machine{delegate: delegate}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ErrorMessage returns the display string carried by the error state.
func (m *Machine) ErrorMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

// SetMockMode suppresses the recording, cancel and insertion side effects
// while still driving real transitions. Clears itself whenever the machine
// returns to idle.
func (m *Machine) SetMockMode(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mock = on
}

func (m *Machine) MockMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mock
}

// ForceReset snaps the session back to idle for system-level interruptions.
// It bypasses every delegate callback and never waits on in-flight work; the
// caller is responsible for its own cleanup of recording and transcription
// resources. A Handle call racing with the reset discards its result.
func (m *Machine) ForceReset() {
	m.mu.Lock()
	from := m.state
	m.state = Idle
	m.errMsg = ""
	m.mock = false
	m.gen++
	m.mu.Unlock()

	log.EmergencyReset(from.String())
}

// Handle applies one event. Events absent from the transition table for the
// current state are ignored.
func (m *Machine) Handle(ev Event) {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	m.mu.Lock()
	from := m.state
	mock := m.mock
	gen := m.gen
	m.mu.Unlock()

	switch ev.kind {
	case evHotkeyPressed:
		switch from {
		case Idle:
			m.delegate.ShowPanel()
			if !mock {
				m.delegate.StartRecording()
			}
			m.commit(gen, from, ev, Recording, "")
		case Recording:
			m.stopToTranscribe(mock)
		}

	case evStopRecording:
		if from == Recording {
			m.stopToTranscribe(mock)
		}

	case evTranscriptionStarted:
		if from == Recording {
			m.commit(gen, from, ev, Processing, "")
		}

	case evTranscriptionCompleted:
		if from == Recording || from == Processing {
			to, msg := m.completed(ev.text, mock)
			m.commit(gen, from, ev, to, msg)
		}

	case evTranscriptionFailed:
		if from == Recording || from == Processing {
			m.commit(gen, from, ev, Error, ev.reason)
		}

	case evEscapePressed:
		if from == Recording || from == Processing {
			if !mock {
				m.delegate.Cancel()
			}
			m.delegate.HidePanel()
			m.commit(gen, from, ev, Cancelled, "")
		}

	case evDismissCompleted:
		if from.Terminal() {
			m.commit(gen, from, ev, Idle, "")
		}
	}
}

// stopToTranscribe stops capture and hands the artifact off. The state stays
// recording until the coordinator reports transcriptionStarted.
func (m *Machine) stopToTranscribe(mock bool) {
	if !mock {
		m.delegate.StopRecording()
	}
}

// completed maps a finished transcription to its terminal state.
func (m *Machine) completed(text string, mock bool) (State, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Empty, ""
	}
	if mock {
		return Success, ""
	}
	switch m.delegate.InsertText(trimmed) {
	case InsertFull:
		return Success, ""
	case InsertClipboardOnly:
		return CopiedToClipboard, ""
	default:
		return Error, "insertion failed"
	}
}

// commit applies the computed transition unless a ForceReset intervened
// while side effects were running, in which case the stale result is
// discarded.
func (m *Machine) commit(gen uint64, from State, ev Event, to State, errMsg string) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		log.Warnf("discarding stale transition to %s on %s, session was reset", to, ev)
		return
	}
	m.state = to
	m.errMsg = errMsg
	if to == Idle {
		m.mock = false
	}
	m.mu.Unlock()

	log.Transition(from.String(), ev.String(), to.String())
	m.delegate.StateChanged(to)
}
