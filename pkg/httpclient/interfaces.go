package httpclient

import "context"

// Transport performs one blocking request and returns the raw response body.
// Any I/O failure or non-2xx status is returned as an error.
type Transport interface {
	Send(ctx context.Context, method, url string, body []byte) (string, error)
}

var _ Transport = (*RestyTransport)(nil)
