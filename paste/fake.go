package paste

import "sync"

// FakeSender records Send calls and lets tests hook the moment the paste
// keystroke fires (e.g., to simulate the target application reading or a
// third party overwriting the clipboard).
type FakeSender struct {
	mu        sync.Mutex
	available bool
	sendErr   error
	sends     int
	onSend    func()
}

func NewFakeSender() *FakeSender {
	return &FakeSender{available: true}
}

func (f *FakeSender) SetAvailable(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available = ok
}

func (f *FakeSender) SetSendErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

// OnSend registers a hook invoked synchronously inside Send.
func (f *FakeSender) OnSend(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSend = fn
}

func (f *FakeSender) Sends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sends
}

func (f *FakeSender) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *FakeSender) Send() error {
	f.mu.Lock()
	f.sends++
	err := f.sendErr
	hook := f.onSend
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}
