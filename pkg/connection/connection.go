// Package connection executes one logical request against the network, with
// an offline fallback to the last persisted response, and reports the result
// through typed callbacks on the caller's callback context.
//
// A Connection is configured with chainable setters and consumed by a single
// call to Post or Get:
//
//	conn := connection.New[[]Post](deps).
//		Endpoint("/posts").
//		OfflineEndpoint("posts").
//		Parser(parser.JSON[[]Post]()).
//		Success(func(posts []Post) { ... })
//	err := conn.Post(ctx)
package connection

import (
	"context"
	"errors"
	"sync"

	"github.com/samvad-hq/samvad-connection/pkg/lifecycle"
	"github.com/samvad-hq/samvad-connection/pkg/parser"
)

var (
	// ErrAlreadyExecuted is returned when Post or Get is called a second time.
	ErrAlreadyExecuted = errors.New("connection: already executed")
	// ErrNoTransport is returned when executing without a transport.
	ErrNoTransport = errors.New("connection: no transport configured")
)

// Deps are the collaborators a connection calls into. Only Transport is
// required: a nil Store behaves as an empty store, a nil Probe as always
// online, and a nil Dispatcher runs callbacks on the posting goroutine.
type Deps struct {
	Config     Config
	Transport  Transport
	Store      OfflineStore
	Probe      ConnectivityProbe
	Dispatcher Dispatcher
	Observer   lifecycle.Observer
	Logger     Logger
}

// Connection configures and runs one request. It is single-use.
type Connection[T any] struct {
	deps Deps

	mu       sync.Mutex
	cfg      Config
	spec     Spec
	hooks    Hooks[T]
	parser   parser.Parser[T]
	success  func(T)
	failure  func()
	complete func(Outcome[T])
	executed bool
	done     chan struct{}
}

// New returns a connection with the defaults: POST, an empty JSON
// object payload, loader shown, no offline key, and a parser that always fails.
func New[T any](deps Deps) *Connection[T] {
	if deps.Probe == nil {
		deps.Probe = alwaysOnline{}
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = Immediate{}
	}
	deps.Logger = ensureLogger(deps.Logger)

	return &Connection[T]{
		deps: deps,
		cfg:  deps.Config,
		spec: Spec{
			Method:     MethodPost,
			Payload:    map[string]any{},
			ShowLoader: true,
		},
		parser: parser.Default[T](),
		done:   make(chan struct{}),
	}
}

// Endpoint sets the path appended to the base endpoint.
func (c *Connection[T]) Endpoint(endpoint string) *Connection[T] {
	c.mu.Lock()
	c.spec.Endpoint = endpoint
	c.mu.Unlock()
	return c
}

// OfflineEndpoint sets the key the response is persisted under. The optional
// uniqueRowID is appended to the key, e.g. to cache one record per row.
func (c *Connection[T]) OfflineEndpoint(key string, uniqueRowID ...string) *Connection[T] {
	for _, id := range uniqueRowID {
		key += id
	}
	c.mu.Lock()
	c.spec.OfflineKey = key
	c.mu.Unlock()
	return c
}

// Payload sets the value sent as the JSON request body.
func (c *Connection[T]) Payload(payload any) *Connection[T] {
	c.mu.Lock()
	c.spec.Payload = payload
	c.mu.Unlock()
	return c
}

// Config replaces the base configuration for this connection only.
func (c *Connection[T]) Config(cfg Config) *Connection[T] {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	return c
}

// Loader toggles the ShowLoader/HideLoader hooks.
func (c *Connection[T]) Loader(show bool) *Connection[T] {
	c.mu.Lock()
	c.spec.ShowLoader = show
	c.mu.Unlock()
	return c
}

// UseCacheFirst delivers the persisted response, if any, while the network
// request is still running.
func (c *Connection[T]) UseCacheFirst(enabled bool) *Connection[T] {
	c.mu.Lock()
	c.spec.UseCacheFirst = enabled
	c.mu.Unlock()
	return c
}

// Success sets the callback for a parsed, non-nil value.
func (c *Connection[T]) Success(fn func(T)) *Connection[T] {
	c.mu.Lock()
	c.success = fn
	c.mu.Unlock()
	return c
}

// Failure sets the callback for unusable responses.
func (c *Connection[T]) Failure(fn func()) *Connection[T] {
	c.mu.Lock()
	c.failure = fn
	c.mu.Unlock()
	return c
}

// Complete sets a callback that receives every terminal outcome.
func (c *Connection[T]) Complete(fn func(Outcome[T])) *Connection[T] {
	c.mu.Lock()
	c.complete = fn
	c.mu.Unlock()
	return c
}

// Parser sets the response parser. A nil parser restores the default.
func (c *Connection[T]) Parser(p parser.Parser[T]) *Connection[T] {
	if p == nil {
		p = parser.Default[T]()
	}
	c.mu.Lock()
	c.parser = p
	c.mu.Unlock()
	return c
}

// Hooks sets the lifecycle hooks.
func (c *Connection[T]) Hooks(h Hooks[T]) *Connection[T] {
	c.mu.Lock()
	c.hooks = h
	c.mu.Unlock()
	return c
}

// Spec returns a copy of the current configuration.
func (c *Connection[T]) Spec() Spec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec
}

// Post executes the request with the POST method.
func (c *Connection[T]) Post(ctx context.Context) error {
	return c.execute(ctx, MethodPost)
}

// Get executes the request with the GET method.
func (c *Connection[T]) Get(ctx context.Context) error {
	return c.execute(ctx, MethodGet)
}

// Done is closed once all background work of the execution has finished and
// every resulting callback has been posted. It never closes if the
// connection was not executed.
func (c *Connection[T]) Done() <-chan struct{} {
	return c.done
}

// execute freezes the configuration and starts the execution. It returns
// without waiting; results arrive through the callbacks.
func (c *Connection[T]) execute(ctx context.Context, method Method) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.mu.Lock()
	if c.executed {
		c.mu.Unlock()
		return ErrAlreadyExecuted
	}
	if c.deps.Transport == nil {
		c.mu.Unlock()
		return ErrNoTransport
	}
	c.executed = true
	c.spec.Method = method

	run := &execution[T]{
		id:         lifecycle.NewExecutionID(),
		cfg:        c.cfg,
		spec:       c.spec,
		hooks:      c.hooks,
		parser:     c.parser,
		success:    c.success,
		failure:    c.failure,
		complete:   c.complete,
		transport:  c.deps.Transport,
		store:      c.deps.Store,
		probe:      c.deps.Probe,
		dispatcher: c.deps.Dispatcher,
		observer:   c.deps.Observer,
		log:        c.deps.Logger,
	}
	c.mu.Unlock()

	run.start(ctx, c.done)
	return nil
}
