// Package printer adapts the receipt print pipeline behind the
// service.Dispatcher boundary. The actual rendering (HTML to raster to
// ESC/POS) lives in a separate listener on the restaurant LAN; this side
// only relays the order snapshot to it.
package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/novo-pos/api/internal/service"
)

// HTTPRelay POSTs order snapshots to the LAN print listener.
type HTTPRelay struct {
	url    string
	client *http.Client
}

// NewHTTPRelay creates a relay targeting the given print endpoint.
func NewHTTPRelay(url string) *HTTPRelay {
	return &HTTPRelay{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Dispatch sends the snapshot to the print listener. The caller decides
// whether a failure matters; order state never depends on the result.
func (p *HTTPRelay) Dispatch(ctx context.Context, snap service.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build print request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send to printer: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("printer responded %d", resp.StatusCode)
	}
	return nil
}

// Noop discards every dispatch. Used in tests and printerless deployments.
type Noop struct{}

func (Noop) Dispatch(ctx context.Context, snap service.Snapshot) error {
	return nil
}
