package transcriber

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"murmur/recorder"
)

// Local runs whisper.cpp inference on-device. The model runtime is not
// reentrant, so every request across the whole process is funneled through
// one worker goroutine that owns the model. The model itself is loaded
// lazily on the first request and kept for the process lifetime.
type Local struct {
	modelPath string
	language  string

	startWorker sync.Once
	requests    chan localRequest
}

type localRequest struct {
	wavPath string
	reply   chan localReply
}

type localReply struct {
	text string
	err  error
}

func NewLocal(modelPath, language string) *Local {
	return &Local{
		modelPath: modelPath,
		language:  language,
		requests:  make(chan localRequest),
	}
}

func (l *Local) Name() string { return "whisper.cpp" }

// Transcribe hands the artifact to the worker goroutine and waits for its
// reply. Cancellation abandons the wait; the worker's eventual reply lands
// in the buffered channel and is garbage collected.
func (l *Local) Transcribe(ctx context.Context, wavPath string) (string, error) {
	l.startWorker.Do(func() { go l.worker() })

	req := localRequest{wavPath: wavPath, reply: make(chan localReply, 1)}
	select {
	case l.requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case rep := <-req.reply:
		return rep.text, rep.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// worker is the single execution context allowed to touch the model.
func (l *Local) worker() {
	var (
		model   whisperlib.Model
		loadErr error
	)
	for req := range l.requests {
		if model == nil && loadErr == nil {
			model, loadErr = l.loadModel()
		}
		if loadErr != nil {
			req.reply <- localReply{err: loadErr}
			continue
		}
		text, err := l.infer(model, req.wavPath)
		req.reply <- localReply{text: text, err: err}
	}
}

func (l *Local) loadModel() (whisperlib.Model, error) {
	if l.modelPath == "" {
		return nil, ErrNoModel
	}
	if _, err := os.Stat(l.modelPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoModel, l.modelPath)
	}
	model, err := whisperlib.New(l.modelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	return model, nil
}

// infer reads the artifact and runs one inference. Each inference gets a
// fresh whisper context; only the model is shared.
func (l *Local) infer(model whisperlib.Model, wavPath string) (string, error) {
	pcm, err := recorder.ReadWAV(wavPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAudioUnreadable, err)
	}

	wctx, err := model.NewContext()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	if l.language != "" {
		if err := wctx.SetLanguage(l.language); err != nil {
			return "", fmt.Errorf("unsupported language %q: %v", l.language, err)
		}
	}

	if err := wctx.Process(pcmToFloat32(pcm), nil, nil, nil); err != nil {
		return "", fmt.Errorf("inference failed: %v", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("reading segment: %v", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// pcmToFloat32 converts 16-bit signed little-endian PCM to float32 samples
// in [-1.0, 1.0], the format the bindings expect.
func pcmToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := range n {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:i*2+2]))) / 32768.0
	}
	return samples
}
