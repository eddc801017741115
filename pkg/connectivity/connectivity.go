package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/samvad-connection/pkg/httpclient"
)

// Probe answers whether the network is currently reachable.
type Probe interface {
	IsOnline() bool
}

var (
	_ Probe = Static(true)
	_ Probe = Func(nil)
	_ Probe = (*HTTPProbe)(nil)
)

// Static always reports the same answer.
type Static bool

func (s Static) IsOnline() bool { return bool(s) }

// Func adapts a plain function to Probe.
type Func func() bool

func (f Func) IsOnline() bool {
	if f == nil {
		return true
	}
	return f()
}

// HTTPProbe treats any HTTP response from url as being online and
// remembers the answer for cacheFor.
type HTTPProbe struct {
	url      string
	client   *resty.Client
	cacheFor time.Duration
	now      func() time.Time

	mu        sync.Mutex
	checkedAt time.Time
	online    bool
}

// NewHTTPProbe builds a probe that issues HEAD requests against url.
func NewHTTPProbe(url string, timeout, cacheFor time.Duration) *HTTPProbe {
	return &HTTPProbe{
		url:      url,
		client:   httpclient.NewRestyHTTPClient(timeout),
		cacheFor: cacheFor,
		now:      time.Now,
	}
}

// IsOnline reports the cached answer or probes the network again.
func (p *HTTPProbe) IsOnline() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if !p.checkedAt.IsZero() && now.Sub(p.checkedAt) < p.cacheFor {
		return p.online
	}

	_, err := p.client.R().SetContext(context.Background()).Head(p.url)
	p.online = err == nil
	p.checkedAt = now
	return p.online
}
