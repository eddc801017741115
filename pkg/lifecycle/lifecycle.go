// Package lifecycle describes the notifications a connection emits while
// it runs, for consumers that want them outside the callback hooks.
package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

// Kind names a lifecycle notification.
type Kind string

const (
	KindRequestCreated         Kind = "request_created"
	KindResponseReceived       Kind = "response_received"
	KindSuccess                Kind = "success"
	KindFailure                Kind = "failure"
	KindNoResponse             Kind = "no_response"
	KindOfflineDataUnsupported Kind = "offline_data_unsupported"
	KindOfflineDataUnavailable Kind = "offline_data_unavailable"
	KindError                  Kind = "error"
)

// Source tells which path produced a notification.
type Source string

const (
	SourceNetwork Source = "network"
	SourceOffline Source = "offline"
)

// Event is one lifecycle notification of one execution.
type Event struct {
	ExecutionID string    `json:"execution_id"`
	Kind        Kind      `json:"kind"`
	Source      Source    `json:"source"`
	Method      string    `json:"method"`
	Endpoint    string    `json:"endpoint"`
	OfflineKey  string    `json:"offline_key,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	At          time.Time `json:"at"`
}

// Observer receives lifecycle events. Observe is called on the callback
// context and must not block.
type Observer interface {
	Observe(evt Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(evt Event)

func (f ObserverFunc) Observe(evt Event) { f(evt) }

// NewExecutionID returns a fresh identifier for one execution.
func NewExecutionID() string { return uuid.NewString() }
