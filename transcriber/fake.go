package transcriber

import (
	"context"
	"sync"
)

// FakeBackend is a scriptable Backend for coordinator and wiring tests.
type FakeBackend struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int

	// Block, when set, is closed by the test to release an in-flight
	// Transcribe call.
	Block chan struct{}

	// OnTranscribe runs inside Transcribe before the result is returned.
	OnTranscribe func()
}

func NewFakeBackend(text string) *FakeBackend {
	return &FakeBackend{text: text}
}

func (f *FakeBackend) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeBackend) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeBackend) Name() string { return "fake" }

func (f *FakeBackend) Transcribe(ctx context.Context, wavPath string) (string, error) {
	f.mu.Lock()
	f.calls++
	text, err := f.text, f.err
	block := f.Block
	hook := f.OnTranscribe
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return text, err
}
