package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// StatusError reports a response that arrived with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http response status %d", e.StatusCode)
	}
	return fmt.Sprintf("http response status %d: %s", e.StatusCode, e.Body)
}

// Option customizes a RestyTransport.
type Option func(*options)

type options struct {
	timeout time.Duration
	headers map[string]string
	oauth2  *clientcredentials.Config
	limiter *rate.Limiter
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHeaders sets headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) { o.headers = headers }
}

// WithOAuth2 authenticates requests with the client-credentials grant.
func WithOAuth2(cfg *clientcredentials.Config) Option {
	return func(o *options) { o.oauth2 = cfg }
}

// WithRateLimit waits on limiter before every request.
func WithRateLimit(limiter *rate.Limiter) Option {
	return func(o *options) { o.limiter = limiter }
}

// RestyTransport adapts resty.Client to the Transport interface.
type RestyTransport struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewRestyTransport creates a transport with the supplied options.
func NewRestyTransport(opts ...Option) *RestyTransport {
	o := options{timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	var c *resty.Client
	if o.oauth2 != nil {
		c = resty.NewWithClient(o.oauth2.Client(context.Background()))
	} else {
		c = resty.New()
	}
	c.SetTimeout(o.timeout)
	if len(o.headers) > 0 {
		c.SetHeaders(o.headers)
	}

	return &RestyTransport{client: c, limiter: o.limiter}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Send performs the request. GET requests never carry a body.
func (r *RestyTransport) Send(ctx context.Context, method, url string, body []byte) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	method = strings.ToUpper(strings.TrimSpace(method))
	req := r.client.R().SetContext(ctx)
	if method != http.MethodGet && len(body) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	if resp.IsError() {
		return "", &StatusError{StatusCode: resp.StatusCode(), Body: readBodySnippet(resp.Body())}
	}
	// Go strings hold arbitrary bytes, so non-UTF-8 bodies pass through untouched.
	return string(resp.Body()), nil
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
