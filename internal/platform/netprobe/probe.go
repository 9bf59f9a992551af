// Package netprobe answers one question cheaply: does this device have
// network reachability right now? Field devices sit behind flaky hotspots,
// so the prober hits a lightweight HTTP endpoint before any store dial.
package netprobe

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
)

// Prober issues a GET against a known-cheap endpoint (a generate-204 style
// URL) and treats any response below 500 as proof of reachability.
type Prober struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
}

func New(url string, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Prober{
		url:     url,
		timeout: timeout,
		client:  &fasthttp.Client{},
	}
}

// Reachable returns nil when the probe endpoint answered. A prober with no
// URL configured always reports reachable so deployments can opt out.
func (p *Prober) Reachable(ctx context.Context) error {
	if p == nil || p.url == "" {
		return nil
	}

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return errors.New("probe deadline already expired")
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := p.client.DoTimeout(req, resp, timeout); err != nil {
		return errors.Wrap(err, "network probe failed")
	}
	if resp.StatusCode() >= fasthttp.StatusInternalServerError {
		return errors.Newf("network probe returned status %d", resp.StatusCode())
	}

	return nil
}
