// Package transcriber turns a recorded audio artifact into text through one
// of two pluggable backends: an on-device whisper.cpp model or an
// OpenAI-compatible remote API. The Coordinator enforces the session's
// single-flight and cancellation contract on top of whichever backend is
// active.
package transcriber

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"murmur/config"
	"murmur/log"
)

// Failure taxonomy surfaced to the session as display strings. A failed
// transcription is terminal for its session; nothing here is retried.
var (
	ErrBusy            = errors.New("transcription already in flight")
	ErrNoModel         = errors.New("no speech model available")
	ErrModelLoad       = errors.New("speech model failed to load")
	ErrAudioUnreadable = errors.New("recorded audio could not be read")
	ErrNoText          = errors.New("backend returned no text")
)

// Backend runs one transcription over a finished WAV artifact.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Coordinator owns backend selection and the per-session concurrency
// contract: at most one transcription outstanding, cancellation observed
// before starting and again before delivering.
type Coordinator struct {
	cfg      *config.Config
	backend  Backend
	inFlight atomic.Bool
}

func NewCoordinator(cfg *config.Config) *Coordinator {
	var b Backend
	switch cfg.Mode {
	case config.ModeLocal:
		b = NewLocal(cfg.LocalModelPath, cfg.Language)
	default:
		b = NewRemote(cfg)
	}
	return &Coordinator{cfg: cfg, backend: b}
}

func (c *Coordinator) BackendName() string { return c.backend.Name() }

// Warm lets the remote backend pre-establish its TLS session at startup.
// No-op for the local backend.
func (c *Coordinator) Warm() {
	if r, ok := c.backend.(*Remote); ok {
		r.Warm()
	}
}

// Transcribe runs one transcription of the artifact at wavPath. A second
// call while one is outstanding returns ErrBusy. A result that arrives
// after ctx was cancelled is discarded and ctx.Err() returned instead.
func (c *Coordinator) Transcribe(ctx context.Context, wavPath string) (string, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer c.inFlight.Store(false)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	text, err := c.backend.Transcribe(ctx, wavPath)

	// The backend may have finished after the session was cancelled. The
	// caller asked for the result to be dropped, so drop it.
	if cerr := ctx.Err(); cerr != nil {
		return "", cerr
	}
	if err != nil {
		return "", err
	}

	log.Transcription(c.backend.Name(), artifactSeconds(wavPath), time.Since(start))
	log.TranscriptionText(text)
	return text, nil
}

// Validate reports a human-readable reason the active backend cannot work,
// or "" when it looks usable. It performs no transcription; main uses it for
// proactive warnings and the -doctor flag.
func (c *Coordinator) Validate() string {
	switch c.cfg.Mode {
	case config.ModeLocal:
		if c.cfg.LocalModelPath == "" {
			return "no local model configured (set local.model_path or MURMUR_MODEL_PATH)"
		}
		if _, err := os.Stat(c.cfg.LocalModelPath); err != nil {
			return fmt.Sprintf("local model not found at %s", c.cfg.LocalModelPath)
		}
	case config.ModeRemote:
		if c.cfg.RemoteAPIKey == "" {
			return "no API key configured (set remote.api_key or MURMUR_API_KEY)"
		}
	}
	return ""
}

// artifactSeconds estimates the artifact duration from its size, for
// logging only.
func artifactSeconds(wavPath string) float64 {
	info, err := os.Stat(wavPath)
	if err != nil || info.Size() <= wavHeaderSize {
		return 0
	}
	return float64(info.Size()-wavHeaderSize) / bytesPerSecond
}

const (
	wavHeaderSize  = 44
	bytesPerSecond = 16000 * 2 // 16 kHz mono PCM16
)
