package transcriber

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"

	"murmur/log"
)

// TracedClient is an HTTP client that records per-request network timings
// into the diagnostics log. Dictation latency is dominated by the network
// leg, and the breakdown tells a cold TLS handshake apart from a slow
// backend.
type TracedClient struct {
	client *http.Client
}

func NewTracedClient() *TracedClient {
	return &TracedClient{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

type TracedResponse struct {
	Body       []byte
	StatusCode int
	Header     http.Header
}

func (c *TracedClient) Do(req *http.Request) (*TracedResponse, error) {
	var dnsStart, tcpStart, tlsStart, wroteRequest time.Time
	var dns, tcp, tlsDur, ttfb time.Duration
	reused := false

	trace := &httptrace.ClientTrace{
		GotConn:           func(info httptrace.GotConnInfo) { reused = info.Reused },
		DNSStart:          func(_ httptrace.DNSStartInfo) { dnsStart = time.Now() },
		DNSDone:           func(_ httptrace.DNSDoneInfo) { dns = time.Since(dnsStart) },
		ConnectStart:      func(_, _ string) { tcpStart = time.Now() },
		ConnectDone:       func(_, _ string, _ error) { tcp = time.Since(tcpStart) },
		TLSHandshakeStart: func() { tlsStart = time.Now() },
		TLSHandshakeDone:  func(_ tls.ConnectionState, _ error) { tlsDur = time.Since(tlsStart) },
		WroteRequest:      func(_ httptrace.WroteRequestInfo) { wroteRequest = time.Now() },
		GotFirstResponseByte: func() {
			ttfb = time.Since(wroteRequest)
		},
	}

	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	log.Info(fmt.Sprintf("http %d in %v (reused=%v dns=%v tcp=%v tls=%v ttfb=%v)",
		resp.StatusCode, time.Since(start).Round(time.Millisecond),
		reused, dns.Round(time.Millisecond), tcp.Round(time.Millisecond),
		tlsDur.Round(time.Millisecond), ttfb.Round(time.Millisecond)))

	return &TracedResponse{
		Body:       body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}, nil
}

// Warm performs a HEAD request so the TLS session is established before the
// user's first dictation needs it.
func (c *TracedClient) Warm(url string) {
	req, err := http.NewRequest(http.MethodHead, url, nil)
	if err != nil {
		return
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
