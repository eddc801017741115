package connection

// Hooks is the capability set a caller plugs into a connection. Every field
// is optional. All hooks except MutateRequest run on the callback context.
type Hooks[T any] struct {
	ShowLoader func()
	HideLoader func()

	// MutateRequest rewrites the payload before it is sent, e.g. to sign it.
	MutateRequest func(payload any) any
	// MutateResponse rewrites the raw body before parsing. An empty result
	// is reported as a failure.
	MutateResponse func(raw string) string

	OnRequestCreated         func(endpoint string, payload any)
	OnResponseReceived       func(raw string)
	OnResponseGenerated      func(value T)
	OnNoResponse             func()
	OnOfflineDataUnsupported func()
	OnOfflineDataUnavailable func()
	OnError                  func(err error)
}
