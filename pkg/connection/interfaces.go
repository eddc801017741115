package connection

import "context"

// Transport performs one blocking request and returns the raw response body.
type Transport interface {
	Send(ctx context.Context, method, url string, body []byte) (string, error)
}

// OfflineStore is keyed storage for the last successful response of an endpoint.
type OfflineStore interface {
	Read(key string) (string, bool, error)
	Write(key, value string) error
}

// ConnectivityProbe reports whether the network can be used.
type ConnectivityProbe interface {
	IsOnline() bool
}

// Logger defines the logging surface the executor relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}

type alwaysOnline struct{}

func (alwaysOnline) IsOnline() bool { return true }
