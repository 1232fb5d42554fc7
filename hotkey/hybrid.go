package hotkey

import (
	"sync/atomic"
	"time"
)

// Hybrid layers tap-to-toggle and hold-to-talk onto a single chord. A press
// always starts recording immediately; a release before the long-press
// threshold arms toggle mode and the next tap stops, while holding past the
// threshold stops on release.
type Hybrid struct {
	start  chan struct{}
	stop   chan struct{}
	toggle atomic.Bool
}

func NewHybrid(hk Hotkey, longPress time.Duration) *Hybrid {
	h := &Hybrid{
		start: make(chan struct{}, 1),
		stop:  make(chan struct{}, 1),
	}
	go h.run(hk, longPress)
	return h
}

// Start signals that a recording should begin.
func (h *Hybrid) Start() <-chan struct{} { return h.start }

// StopChan signals that the current recording should end, in both hold and
// toggle mode.
func (h *Hybrid) StopChan() <-chan struct{} { return h.stop }

// IsToggle reports whether the current recording was armed by a short tap.
func (h *Hybrid) IsToggle() bool { return h.toggle.Load() }

func (h *Hybrid) run(hk Hotkey, longPress time.Duration) {
	for {
		<-hk.Keydown()
		h.toggle.Store(false)
		signal(h.start)

		timer := time.NewTimer(longPress)
		select {
		case <-timer.C:
			// Held past the threshold: stop when the chord is released.
			<-hk.Keyup()
			signal(h.stop)
		case <-hk.Keyup():
			if !timer.Stop() {
				<-timer.C
			}
			// Short tap: recording stays on until the next tap.
			h.toggle.Store(true)
			<-hk.Keydown()
			<-hk.Keyup()
			signal(h.stop)
		}
	}
}
