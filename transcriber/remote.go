package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"murmur/config"
	"murmur/encoder"
	"murmur/recorder"
)

// Remote posts the artifact to an OpenAI-compatible audio/transcriptions
// endpoint. The PCM payload is re-encoded to FLAC before upload, which cuts
// it to roughly half the wire size losslessly.
type Remote struct {
	endpoint    string
	model       string
	apiKey      string
	language    string
	temperature float64
	client      *TracedClient
}

func NewRemote(cfg *config.Config) *Remote {
	return &Remote{
		endpoint:    cfg.RemoteEndpoint,
		model:       cfg.RemoteModel,
		apiKey:      cfg.RemoteAPIKey,
		language:    cfg.Language,
		temperature: cfg.RemoteTemperature,
		client:      NewTracedClient(),
	}
}

func (r *Remote) Name() string { return "remote" }

// Warm opens the TLS connection ahead of the first real request. Called
// once at startup; failures are irrelevant.
func (r *Remote) Warm() {
	go r.client.Warm(r.endpoint)
}

type remoteResponse struct {
	Text string `json:"text"`
}

func (r *Remote) Transcribe(ctx context.Context, wavPath string) (string, error) {
	pcm, err := recorder.ReadWAV(wavPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAudioUnreadable, err)
	}
	flacData, err := encoder.EncodePCM16(pcm)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAudioUnreadable, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "audio.flac")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(flacData); err != nil {
		return "", err
	}
	writer.WriteField("model", r.model)
	writer.WriteField("response_format", "json")
	if r.language != "" {
		writer.WriteField("language", r.language)
	}
	if r.temperature > 0 {
		writer.WriteField("temperature", strconv.FormatFloat(r.temperature, 'f', -1, 64))
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backend rejected: %d %s", resp.StatusCode, truncate(string(resp.Body), 200))
	}

	var parsed remoteResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoText, err)
	}
	return parsed.Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
