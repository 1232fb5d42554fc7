// Package insert places transcribed text at the current input focus through
// a hardened clipboard write-verify-paste-restore sequence. The user's prior
// clipboard content survives every outcome except the one where another
// process overwrote the clipboard during the paste window, in which case
// that overwrite is deliberately left in place.
package insert

import (
	"sync"
	"time"

	"murmur/clipboard"
	"murmur/log"
	"murmur/paste"
)

// Result is the outcome of one insertion attempt.
type Result int

const (
	// Inserted means the text was pasted into the focused application.
	Inserted Result = iota

	// CopiedToClipboard means input simulation was unavailable and the text
	// was left on the clipboard for manual pasting.
	CopiedToClipboard

	// Failed means the text could not be delivered at all. The prior
	// clipboard content has been restored.
	Failed
)

func (r Result) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case CopiedToClipboard:
		return "copiedToClipboard"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options tune the protocol's retry and timing behavior. Zero values take
// the defaults below.
type Options struct {
	MaxAttempts  int           // write-verify attempts (default 3)
	CommitWindow time.Duration // change-count poll window per write (default 200ms)
	PollInterval time.Duration // change-count poll step (default 10ms)
	RetryDelay   time.Duration // base inter-attempt delay, escalates per attempt (default 50ms)
	SettleDelay  time.Duration // wait for the target app to read the clipboard (default 300ms)
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.CommitWindow <= 0 {
		o.CommitWindow = 200 * time.Millisecond
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 10 * time.Millisecond
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 50 * time.Millisecond
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 300 * time.Millisecond
	}
	return o
}

type Inserter struct {
	board  clipboard.Board
	sender paste.Sender
	opts   Options

	// Guards the whole protocol. Contended callers fail fast rather than
	// queue: interleaved paste sequences would corrupt the target app.
	mu sync.Mutex
}

func New(board clipboard.Board, sender paste.Sender) *Inserter {
	return NewWithOptions(board, sender, Options{})
}

func NewWithOptions(board clipboard.Board, sender paste.Sender, opts Options) *Inserter {
	return &Inserter{board: board, sender: sender, opts: opts.withDefaults()}
}

// Insert delivers text to the focused application. At most one call runs at
// a time process-wide; a concurrent call returns Failed without touching the
// clipboard.
func (in *Inserter) Insert(text string) Result {
	if !in.mu.TryLock() {
		log.Insertion(Failed.String(), 0, 0)
		return Failed
	}
	defer in.mu.Unlock()

	start := time.Now()
	result, attempts := in.run(text)
	log.Insertion(result.String(), attempts, time.Since(start))
	return result
}

func (in *Inserter) run(text string) (Result, int) {
	if !in.sender.Available() {
		if err := in.board.WriteText(text); err != nil {
			return Failed, 0
		}
		return CopiedToClipboard, 0
	}

	snap, err := in.board.Snapshot()
	if err != nil {
		// Without a snapshot we cannot keep the restore guarantee, so we
		// refuse to touch the clipboard at all.
		return Failed, 0
	}

	attempts, ok := in.writeVerify(text)
	if !ok {
		in.board.Restore(snap)
		return Failed, attempts
	}

	if err := in.sender.Send(); err != nil {
		in.board.Restore(snap)
		return Failed, attempts
	}

	// Give the target application time to read the clipboard.
	time.Sleep(in.opts.SettleDelay)

	// Restore only if the clipboard still holds our text. If someone else
	// already overwrote it, restoring now would clobber their content.
	if current, err := in.board.ReadText(); err == nil && current == text {
		in.board.Restore(snap)
	}

	return Inserted, attempts
}

// writeVerify writes text to the clipboard and confirms the write actually
// committed, retrying with an escalating delay. Platform clipboards coalesce
// or drop rapid writes, so a successful WriteText call proves nothing on its
// own.
func (in *Inserter) writeVerify(text string) (attempts int, ok bool) {
	for attempt := 1; attempt <= in.opts.MaxAttempts; attempt++ {
		attempts = attempt

		before, countErr := in.board.ChangeCount()
		if err := in.board.WriteText(text); err == nil {
			if countErr == nil {
				in.awaitCommit(before)
			}
			if current, err := in.board.ReadText(); err == nil && current == text {
				return attempts, true
			}
		}

		if attempt < in.opts.MaxAttempts {
			time.Sleep(in.opts.RetryDelay * time.Duration(attempt))
		}
	}
	return attempts, false
}

// awaitCommit polls the clipboard revision counter for a bounded window,
// returning early once the write shows up.
func (in *Inserter) awaitCommit(before uint64) {
	deadline := time.Now().Add(in.opts.CommitWindow)
	for time.Now().Before(deadline) {
		if count, err := in.board.ChangeCount(); err != nil || count != before {
			return
		}
		time.Sleep(in.opts.PollInterval)
	}
}
