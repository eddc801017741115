package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/samvad-hq/samvad-connection/pkg/lifecycle"
	"github.com/samvad-hq/samvad-connection/pkg/parser"
)

// workerCapacity fits the route task plus the two paths it can queue.
const workerCapacity = 3

// execution is the state of one Post/Get call. Fields below the collaborators
// are owned by the callback context and must only be touched from posted
// callbacks.
type execution[T any] struct {
	id     string
	cfg    Config
	spec   Spec
	hooks  Hooks[T]
	parser parser.Parser[T]

	success  func(T)
	failure  func()
	complete func(Outcome[T])

	transport  Transport
	store      OfflineStore
	probe      ConnectivityProbe
	dispatcher Dispatcher
	observer   lifecycle.Observer
	log        Logger

	// set on the worker before any result is posted
	online bool

	networkDone  bool
	loaderHidden bool
}

func (r *execution[T]) start(ctx context.Context, done chan struct{}) {
	if r.spec.ShowLoader && r.hooks.ShowLoader != nil {
		r.post(r.hooks.ShowLoader)
	}
	if r.hooks.MutateRequest != nil {
		r.spec.Payload = r.hooks.MutateRequest(r.spec.Payload)
	}

	w := newWorker(workerCapacity, done)
	w.submit(func() { r.route(ctx, w) })
}

// route picks the paths for this execution based on connectivity.
func (r *execution[T]) route(ctx context.Context, w *worker) {
	defer w.close()

	r.online = r.probe.IsOnline()
	if !r.online {
		r.runOffline(false)
		return
	}
	if r.spec.UseCacheFirst {
		w.submit(func() { r.runOffline(true) })
	}
	w.submit(func() { r.runNetwork(ctx) })
}

func (r *execution[T]) resolvedEndpoint() string {
	return r.cfg.BaseEndpoint + r.spec.Endpoint
}

func (r *execution[T]) offlineEndpoint() string {
	return offlineScheme + r.spec.OfflineKey
}

// runNetwork runs on the worker.
func (r *execution[T]) runNetwork(ctx context.Context) {
	url := r.resolvedEndpoint()
	r.post(func() { r.requestCreated(url, lifecycle.SourceNetwork) })

	body, err := encodePayload(r.spec.Payload)
	if err != nil {
		r.post(func() {
			r.networkDone = true
			r.fault(err, lifecycle.SourceNetwork)
		})
		return
	}

	raw, err := r.transport.Send(ctx, string(r.spec.Method), url, body)
	if err != nil {
		r.log.WarnObj("request failed", "request_error", map[string]any{
			"execution_id": r.id,
			"endpoint":     url,
			"error":        err.Error(),
		})
		r.post(func() {
			r.networkDone = true
			r.fault(err, lifecycle.SourceNetwork)
		})
		return
	}

	var persistErr error
	if raw != "" && r.spec.OfflineKey != "" && r.store != nil {
		if persistErr = r.store.Write(r.spec.OfflineKey, raw); persistErr != nil {
			persistErr = fmt.Errorf("persist offline data %q: %w", r.spec.OfflineKey, persistErr)
			r.log.ErrorObj("failed to save offline data", "offline_error", map[string]any{
				"execution_id": r.id,
				"offline_key":  r.spec.OfflineKey,
				"error":        persistErr.Error(),
			})
		}
	}

	r.post(func() {
		r.networkDone = true
		r.onPostExecute(raw, lifecycle.SourceNetwork, persistErr)
	})
}

// runOffline runs on the worker. In silent mode nothing but a usable
// record reaches the callbacks.
func (r *execution[T]) runOffline(silent bool) {
	if r.spec.OfflineKey == "" {
		if !silent {
			r.post(r.offlineUnsupported)
		}
		return
	}

	endpoint := r.offlineEndpoint()
	if !silent {
		r.post(func() { r.requestCreated(endpoint, lifecycle.SourceOffline) })
	}

	var (
		raw   string
		found bool
		err   error
	)
	if r.store != nil {
		raw, found, err = r.store.Read(r.spec.OfflineKey)
	}
	if err != nil {
		err = fmt.Errorf("read offline data %q: %w", r.spec.OfflineKey, err)
		if !silent {
			r.post(func() {
				r.emitError(err, lifecycle.SourceOffline)
				r.offlineUnavailable(err)
			})
		}
		return
	}
	if !found || raw == "" {
		if !silent {
			r.post(func() { r.offlineUnavailable(nil) })
		}
		return
	}

	r.post(func() { r.onPostExecute(raw, lifecycle.SourceOffline, nil) })
}

// onPostExecute runs on the callback context and turns a raw body into
// exactly one terminal outcome.
func (r *execution[T]) onPostExecute(raw string, source lifecycle.Source, persistErr error) {
	silent := source == lifecycle.SourceOffline && r.online
	if silent && r.networkDone {
		r.log.DebugObj("dropping cached response that arrived after the network", "cache_first", map[string]any{
			"execution_id": r.id,
			"offline_key":  r.spec.OfflineKey,
		})
		return
	}

	if raw == "" {
		if !silent {
			r.noResponse(source)
		}
		return
	}

	if persistErr != nil {
		r.emitError(persistErr, source)
	}

	mutated := raw
	if r.hooks.MutateResponse != nil {
		mutated = r.hooks.MutateResponse(raw)
	}
	if mutated == "" {
		if !silent {
			r.fail(source, nil)
		}
		return
	}

	if r.hooks.OnResponseReceived != nil {
		r.hooks.OnResponseReceived(mutated)
	}
	r.observe(lifecycle.KindResponseReceived, source, "")

	value, err := r.parser.Parse(mutated)
	if errors.Is(err, parser.ErrNullValue) {
		// A null value is unusable data, not a fault.
		if !silent {
			r.fail(source, err)
		}
		return
	}
	if err != nil {
		if !silent {
			r.emitError(err, source)
			r.fail(source, err)
		}
		return
	}
	if isNil(value) {
		if !silent {
			r.fail(source, parser.ErrNullValue)
		}
		return
	}

	if r.hooks.OnResponseGenerated != nil {
		r.hooks.OnResponseGenerated(value)
	}
	r.succeed(value, source)
}

func (r *execution[T]) requestCreated(endpoint string, source lifecycle.Source) {
	r.log.DebugObj("request created", "request", map[string]any{
		"execution_id": r.id,
		"method":       r.spec.Method,
		"endpoint":     endpoint,
	})
	if r.hooks.OnRequestCreated != nil {
		r.hooks.OnRequestCreated(endpoint, r.spec.Payload)
	}
	r.observe(lifecycle.KindRequestCreated, source, "")
}

func (r *execution[T]) succeed(value T, source lifecycle.Source) {
	if r.success != nil {
		r.success(value)
	}
	r.hideLoader()
	r.observe(lifecycle.KindSuccess, source, "")
	r.finish(Outcome[T]{Kind: OutcomeSuccess, Value: value, Source: source})
}

func (r *execution[T]) fail(source lifecycle.Source, cause error) {
	if r.failure != nil {
		r.failure()
	}
	r.hideLoader()
	r.observe(lifecycle.KindFailure, source, errString(cause))
	r.finish(Outcome[T]{Kind: OutcomeFailure, Err: cause, Source: source})
}

func (r *execution[T]) noResponse(source lifecycle.Source) {
	if r.hooks.OnNoResponse != nil {
		r.hooks.OnNoResponse()
	}
	r.hideLoader()
	r.observe(lifecycle.KindNoResponse, source, "")
	r.finish(Outcome[T]{Kind: OutcomeNoResponse, Source: source})
}

func (r *execution[T]) offlineUnsupported() {
	if r.hooks.OnOfflineDataUnsupported != nil {
		r.hooks.OnOfflineDataUnsupported()
	}
	r.hideLoader()
	r.observe(lifecycle.KindOfflineDataUnsupported, lifecycle.SourceOffline, "")
	r.finish(Outcome[T]{Kind: OutcomeOfflineUnsupported, Source: lifecycle.SourceOffline})
}

func (r *execution[T]) offlineUnavailable(cause error) {
	if r.hooks.OnOfflineDataUnavailable != nil {
		r.hooks.OnOfflineDataUnavailable()
	}
	r.hideLoader()
	r.observe(lifecycle.KindOfflineDataUnavailable, lifecycle.SourceOffline, errString(cause))
	r.finish(Outcome[T]{Kind: OutcomeOfflineUnavailable, Err: cause, Source: lifecycle.SourceOffline})
}

// fault reports an error that ends the path run.
func (r *execution[T]) fault(err error, source lifecycle.Source) {
	r.emitError(err, source)
	r.finish(Outcome[T]{Kind: OutcomeError, Err: err, Source: source})
}

// emitError reports an error without ending the path run.
func (r *execution[T]) emitError(err error, source lifecycle.Source) {
	if r.hooks.OnError != nil {
		r.hooks.OnError(err)
	}
	r.hideLoader()
	r.observe(lifecycle.KindError, source, errString(err))
}

func (r *execution[T]) hideLoader() {
	if !r.spec.ShowLoader || r.loaderHidden {
		return
	}
	r.loaderHidden = true
	if r.hooks.HideLoader != nil {
		r.hooks.HideLoader()
	}
}

func (r *execution[T]) finish(out Outcome[T]) {
	if r.complete != nil {
		r.complete(out)
	}
}

func (r *execution[T]) observe(kind lifecycle.Kind, source lifecycle.Source, detail string) {
	if r.observer == nil {
		return
	}
	endpoint := r.resolvedEndpoint()
	if source == lifecycle.SourceOffline {
		endpoint = r.offlineEndpoint()
	}
	r.observer.Observe(lifecycle.Event{
		ExecutionID: r.id,
		Kind:        kind,
		Source:      source,
		Method:      string(r.spec.Method),
		Endpoint:    endpoint,
		OfflineKey:  r.spec.OfflineKey,
		Detail:      detail,
		At:          time.Now().UTC(),
	})
}

func (r *execution[T]) post(fn func()) {
	r.dispatcher.Post(fn)
}

// encodePayload serializes the payload as JSON; nil becomes an empty object.
func encodePayload(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return body, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
