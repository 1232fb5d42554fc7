// Package clipboard models the system clipboard as a set of (format, data)
// pairs with a revision counter, so callers can snapshot the user's content
// before touching it and verify that their own writes actually committed.
package clipboard

// Item is one clipboard representation: a format identifier and its payload.
type Item struct {
	Format string
	Data   []byte
}

// Snapshot is the complete clipboard content at one instant.
type Snapshot struct {
	Items []Item
}

// Empty reports whether the snapshot captured no content.
func (s Snapshot) Empty() bool { return len(s.Items) == 0 }

// Text returns the plain-text item, if any.
func (s Snapshot) Text() (string, bool) {
	for _, it := range s.Items {
		if it.Format == FormatText {
			return string(it.Data), true
		}
	}
	return "", false
}

const FormatText = "text/plain"

// Board is the clipboard surface the insertion protocol runs against.
type Board interface {
	// Snapshot captures every format/data pair currently on the clipboard.
	Snapshot() (Snapshot, error)

	// Restore puts a previously captured snapshot back. Restoring an empty
	// snapshot is a no-op: there is nothing to put back, and clearing the
	// clipboard would itself destroy foreign state.
	Restore(Snapshot) error

	ReadText() (string, error)
	WriteText(text string) error

	// ChangeCount returns a counter that advances whenever the clipboard
	// content changes. Used to poll for write commitment.
	ChangeCount() (uint64, error)
}
