// Package recorder captures microphone audio into a temporary WAV artifact
// and exposes a smoothed live level for presentation feedback. One artifact
// exists at a time; it is owned by the session and deleted once transcription
// resolves or the session is cancelled.
package recorder

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"murmur/audio"
)

const (
	SampleRate = 16000
	Channels   = 1

	// EMA weight for the live level. Higher reacts faster, lower is smoother.
	levelAlpha = 0.3

	tickInterval = 100 * time.Millisecond
)

type Recorder struct {
	capture audio.CaptureDevice

	levelBits atomic.Uint64 // smoothed 0..1 RMS, stored as float64 bits
	hadSpeech atomic.Bool   // any speech-level audio since last tick

	onSilence func(warned bool)

	mu        sync.Mutex
	file      *os.File
	path      string
	dataBytes uint32
	recording bool
	stopTick  chan struct{}
}

func New(capture audio.CaptureDevice) *Recorder {
	return &Recorder{capture: capture}
}

// SetSilenceWarning registers a callback fired with true when no voice has
// been heard for a while during recording, and false once speech resumes.
// Purely advisory; has no effect on the captured artifact.
func (r *Recorder) SetSilenceWarning(fn func(warned bool)) {
	r.onSilence = fn
}

// Start opens the capture device and begins writing a fresh WAV artifact.
// A device that cannot be opened is a setup error; no artifact is created.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return fmt.Errorf("recording already in progress")
	}

	f, err := os.CreateTemp("", "murmur-*.wav")
	if err != nil {
		return fmt.Errorf("creating audio artifact: %w", err)
	}
	if err := writeWAVHeader(f, 0); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("writing wav header: %w", err)
	}

	r.file = f
	r.path = f.Name()
	r.dataBytes = 0
	r.levelBits.Store(0)

	r.capture.SetCallback(r.onData)
	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		f.Close()
		os.Remove(f.Name())
		r.file = nil
		r.path = ""
		return fmt.Errorf("opening capture device: %w", err)
	}

	r.recording = true
	r.stopTick = make(chan struct{})
	if r.onSilence != nil {
		go r.watchSilence(r.stopTick)
	}
	return nil
}

func (r *Recorder) onData(data []byte, _ uint32) {
	rms := computeRMS(data)

	prev := math.Float64frombits(r.levelBits.Load())
	smoothed := levelAlpha*rms + (1-levelAlpha)*prev
	r.levelBits.Store(math.Float64bits(smoothed))

	if rms >= speechRMSThreshold {
		r.hadSpeech.Store(true)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording || r.file == nil {
		return
	}
	n, err := r.file.Write(data)
	if err == nil {
		r.dataBytes += uint32(n)
	}
}

// Stop ends capture and finalizes the artifact. Reports ok=false when no
// capture was active.
func (r *Recorder) Stop() (path string, ok bool) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return "", false
	}
	r.recording = false
	close(r.stopTick)
	r.mu.Unlock()

	// Stop outside the lock: the capture callback takes it.
	r.capture.Stop()
	r.capture.ClearCallback()

	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.file
	r.file = nil
	if f == nil {
		return "", false
	}
	if err := patchWAVHeader(f, r.dataBytes); err != nil {
		f.Close()
		os.Remove(r.path)
		r.path = ""
		return "", false
	}
	f.Close()
	return r.path, true
}

// Delete releases the artifact's backing file. Safe to call when no
// artifact exists, and safe to call twice.
func (r *Recorder) Delete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.path != "" {
		os.Remove(r.path)
		r.path = ""
	}
}

// Level returns the exponentially smoothed input level in [0, 1].
func (r *Recorder) Level() float64 {
	return math.Float64frombits(r.levelBits.Load())
}

// Duration returns the length of audio captured so far.
func (r *Recorder) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	frames := r.dataBytes / 2
	return time.Duration(float64(frames) / SampleRate * float64(time.Second))
}

func (r *Recorder) watchSilence(stop <-chan struct{}) {
	mon := newSilenceMonitor()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			switch mon.Tick(r.hadSpeech.Swap(false)) {
			case silenceWarn:
				r.onSilence(true)
			case silenceClear:
				r.onSilence(false)
			}
		}
	}
}

func computeRMS(data []byte) float64 {
	if len(data) < 2 {
		return 0
	}
	var sumSquares float64
	for i := 0; i+1 < len(data); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(data[i:]))
		normalized := float64(sample) / 32768.0
		sumSquares += normalized * normalized
	}
	return math.Sqrt(sumSquares / float64(len(data)/2))
}
