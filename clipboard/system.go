package clipboard

import (
	"hash/fnv"
	"sync"

	cb "github.com/atotto/clipboard"
)

// System is the real clipboard. The underlying platform layer only exposes
// the plain-text slot, so snapshots carry at most one item and the change
// count is derived from content polling rather than an OS revision counter.
type System struct {
	mu       sync.Mutex
	count    uint64
	lastHash uint64
	hashInit bool
}

func NewSystem() *System {
	return &System{}
}

func (s *System) Snapshot() (Snapshot, error) {
	text, err := cb.ReadAll()
	if err != nil {
		// An unreadable clipboard (empty, or holding only non-text content)
		// snapshots as empty rather than failing the whole protocol.
		return Snapshot{}, nil
	}
	if text == "" {
		return Snapshot{}, nil
	}
	return Snapshot{Items: []Item{{Format: FormatText, Data: []byte(text)}}}, nil
}

func (s *System) Restore(snap Snapshot) error {
	text, ok := snap.Text()
	if !ok {
		return nil
	}
	return cb.WriteAll(text)
}

func (s *System) ReadText() (string, error) {
	return cb.ReadAll()
}

func (s *System) WriteText(text string) error {
	return cb.WriteAll(text)
}

func (s *System) ChangeCount() (uint64, error) {
	text, err := cb.ReadAll()
	if err != nil {
		text = ""
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	sum := h.Sum64()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hashInit || sum != s.lastHash {
		s.hashInit = true
		s.lastHash = sum
		s.count++
	}
	return s.count, nil
}
