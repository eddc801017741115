package connection

import (
	"fmt"

	"github.com/samvad-hq/samvad-connection/pkg/lifecycle"
)

// Method is the HTTP verb of a request.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
)

// offlineScheme prefixes the endpoint reported for offline reads.
const offlineScheme = "offline://"

// Config is shared by every connection built from the same runtime.
type Config struct {
	// BaseEndpoint is prepended verbatim to every relative endpoint.
	BaseEndpoint string
}

// Spec is the frozen configuration of one execution.
type Spec struct {
	Endpoint      string
	Method        Method
	Payload       any
	OfflineKey    string
	UseCacheFirst bool
	ShowLoader    bool
}

// OutcomeKind classifies how a path run ended.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota + 1
	OutcomeFailure
	OutcomeNoResponse
	OutcomeError
	OutcomeOfflineUnsupported
	OutcomeOfflineUnavailable
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeNoResponse:
		return "no_response"
	case OutcomeError:
		return "error"
	case OutcomeOfflineUnsupported:
		return "offline_data_unsupported"
	case OutcomeOfflineUnavailable:
		return "offline_data_unavailable"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the terminal result of one path run. Value is set only for
// OutcomeSuccess; Err carries the fault behind an error, a parse failure or
// an unreadable offline record.
type Outcome[T any] struct {
	Kind   OutcomeKind
	Value  T
	Err    error
	Source lifecycle.Source
}
