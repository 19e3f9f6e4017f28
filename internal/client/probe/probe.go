// Package probe answers one question cheaply: is the backend reachable
// right now? The sync engine asks before each drain so a dead link costs
// one fast round trip instead of a queue's worth of timeouts.
package probe

import (
	"context"
	"net/http"
	"time"
)

// Timeout is deliberately short. Reachability is advisory; a slow answer is
// as useless as no answer.
const Timeout = 1500 * time.Millisecond

type Probe struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Probe {
	return &Probe{baseURL: baseURL, http: httpClient}
}

// IsReachable hits the unauthenticated health endpoint. Any failure,
// including a non-2xx status, counts as unreachable.
func (p *Probe) IsReachable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
