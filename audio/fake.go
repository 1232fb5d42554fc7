package audio

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var errDeviceUnavailable = errors.New("capture device unavailable")

const fakeChunkFrames = 1024

// FakeContext hands out FakeCapture devices that replay a fixed PCM buffer,
// then silence, until stopped. Used by recorder tests.
type FakeContext struct {
	pcm     []byte
	failing bool
}

func NewFakeContext(pcm []byte) *FakeContext {
	return &FakeContext{pcm: pcm}
}

// NewFailingContext hands out capture devices whose Start always fails,
// for exercising setup-error paths.
func NewFailingContext() *FakeContext {
	return &FakeContext{failing: true}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm, failing: f.failing}, nil
}

type FakeCapture struct {
	pcm     []byte
	failing bool

	callback atomic.Pointer[DataCallback]

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

func (f *FakeCapture) Start() error {
	if f.failing {
		return errDeviceUnavailable
	}

	f.mu.Lock()
	f.stopCh = make(chan struct{})
	f.done = make(chan struct{})
	stopCh, done := f.stopCh, f.done
	f.mu.Unlock()

	go func() {
		defer close(done)
		pos := 0
		silence := make([]byte, fakeChunkFrames*2)
		for {
			select {
			case <-stopCh:
				return
			case <-time.After(time.Millisecond):
			}
			cb := f.callback.Load()
			if cb == nil {
				continue
			}
			if pos < len(f.pcm) {
				end := min(pos+fakeChunkFrames*2, len(f.pcm))
				chunk := make([]byte, end-pos)
				copy(chunk, f.pcm[pos:end])
				pos = end
				(*cb)(chunk, uint32(len(chunk)/2))
			} else {
				(*cb)(silence, fakeChunkFrames)
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopCh == nil {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.done
}

func (f *FakeCapture) Close() { f.Stop() }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.callback.Store(&cb)
}

func (f *FakeCapture) ClearCallback() {
	f.callback.Store(nil)
}

func (f *FakeCapture) DeviceName() string { return "fake" }
