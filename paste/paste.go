// Package paste simulates the platform paste keystroke at the current input
// focus. The keystroke is emitted as discrete modifier-down, key-down,
// key-up, modifier-up events so target applications see a real key sequence
// rather than a combined gesture.
package paste

// Sender delivers one paste keystroke to the focused application.
type Sender interface {
	// Available reports whether the input-simulation capability is usable
	// (device permissions, accessibility grants). When false the caller
	// falls back to clipboard-only delivery.
	Available() bool

	// Send emits the paste key sequence.
	Send() error
}
