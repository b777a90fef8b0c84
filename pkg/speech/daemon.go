package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/teslashibe/go-redlight/internal/httpc"
)

// Daemon speaks through the robot daemon's TTS endpoint. The daemon
// responds only after playback finishes, so Say blocks for the full
// utterance. The HTTP client deliberately has no request timeout: a
// hung backend stalls the caller, which is the documented contract.
type Daemon struct {
	BaseURL string
	client  *http.Client
}

// NewDaemon creates a provider for the daemon at the given base URL.
func NewDaemon(baseURL string) *Daemon {
	return &Daemon{
		BaseURL: baseURL,
		client:  httpc.Blocking,
	}
}

// Say posts the text to the daemon and waits for playback to complete.
func (d *Daemon) Say(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return WrapError("daemon", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.BaseURL+"/api/tts/say", bytes.NewReader(payload))
	if err != nil {
		return WrapError("daemon", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return WrapError("daemon", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return WrapError("daemon", fmt.Errorf("tts returned status %d: %s", resp.StatusCode, body))
	}
	return nil
}

// Health checks the daemon status endpoint.
func (d *Daemon) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"/api/daemon/status", nil)
	if err != nil {
		return WrapError("daemon", err)
	}

	resp, err := httpc.Client.Do(req)
	if err != nil {
		return WrapError("daemon", ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return WrapError("daemon", fmt.Errorf("status endpoint returned %d", resp.StatusCode))
	}
	return nil
}

// Close is a no-op for the daemon provider.
func (d *Daemon) Close() error { return nil }

// Verify Daemon implements Provider at compile time.
var _ Provider = (*Daemon)(nil)
