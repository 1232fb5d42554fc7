package clipboard

import "sync"

// Fake is an in-memory Board with scriptable failure modes for exercising
// the insertion protocol's retry and restore paths.
type Fake struct {
	mu    sync.Mutex
	items []Item
	count uint64

	// DropWrites silently discards the next n WriteText calls, simulating
	// platform write coalescing where a write never commits.
	DropWrites int

	// WriteErr, when set, is returned by every WriteText call.
	WriteErr error

	// ReadErr, when set, is returned by ReadText and fails Snapshot.
	ReadErr error

	writeCalls int
}

func NewFake() *Fake { return &Fake{} }

// SetText seeds the clipboard, bypassing failure injection.
func (f *Fake) SetText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = []Item{{Format: FormatText, Data: []byte(text)}}
	f.count++
}

// SetItems seeds arbitrary multi-format content.
func (f *Fake) SetItems(items []Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = items
	f.count++
}

// Items returns a copy of the current content.
func (f *Fake) Items() []Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Item, len(f.items))
	copy(out, f.items)
	return out
}

// WriteCalls reports how many WriteText calls were made.
func (f *Fake) WriteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCalls
}

func (f *Fake) Snapshot() (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return Snapshot{}, f.ReadErr
	}
	items := make([]Item, len(f.items))
	copy(items, f.items)
	return Snapshot{Items: items}, nil
}

func (f *Fake) Restore(snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if snap.Empty() {
		return nil
	}
	f.items = make([]Item, len(snap.Items))
	copy(f.items, snap.Items)
	f.count++
	return nil
}

func (f *Fake) ReadText() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return "", f.ReadErr
	}
	for _, it := range f.items {
		if it.Format == FormatText {
			return string(it.Data), nil
		}
	}
	return "", nil
}

func (f *Fake) WriteText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeCalls++
	if f.WriteErr != nil {
		return f.WriteErr
	}
	if f.DropWrites > 0 {
		f.DropWrites--
		return nil
	}
	f.items = []Item{{Format: FormatText, Data: []byte(text)}}
	f.count++
	return nil
}

func (f *Fake) ChangeCount() (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, nil
}
