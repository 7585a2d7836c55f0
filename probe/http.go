package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Crowley723/site-monitor/monitor"
)

const userAgent = "site-monitor/1.0"

// HTTPProber checks reachability with a HEAD request, falling back to GET
// for servers that reject HEAD. Anything below 500 counts as reachable.
type HTTPProber struct {
	client *http.Client
}

func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, url string) monitor.ProbeResult {
	target := NormalizeURL(url)
	start := time.Now()

	status, err := p.do(ctx, http.MethodHead, target)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = p.do(ctx, http.MethodGet, target)
	}

	latency := time.Since(start).Milliseconds()

	if err != nil {
		return monitor.ProbeResult{Success: false, LatencyMs: latency, Err: err.Error()}
	}
	if status >= http.StatusInternalServerError {
		return monitor.ProbeResult{Success: false, LatencyMs: latency, Err: fmt.Sprintf("server returned %d", status)}
	}

	return monitor.ProbeResult{Success: true, LatencyMs: latency}
}

func (p *HTTPProber) do(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid probe request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// drain a little so keep-alive connections can be reused
	io.CopyN(io.Discard, resp.Body, 4096)

	return resp.StatusCode, nil
}

// NormalizeURL probes bare hosts such as "172.16.99.251" over plain http.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		return raw
	}
	return "http://" + raw
}
