// Package hotkey delivers global key events for driving dictation sessions:
// the dictation chord (Ctrl+Shift+Space) as keydown/keyup pairs, and the
// escape key for cancelling. On Linux it reads raw evdev devices; elsewhere
// it registers through the OS hotkey APIs.
package hotkey

// Hotkey is a registered global key listener. The channels carry edge
// events and never close; Escape may return nil on platforms where a global
// escape listener is unavailable.
type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
	Escape() <-chan struct{}
}

// signal delivers an edge event without blocking; a pending undelivered
// event makes a second one redundant.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
