package connectivity

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestStaticAndFunc(t *testing.T) {
	if !Static(true).IsOnline() || Static(false).IsOnline() {
		t.Fatalf("static probe returned wrong answer")
	}
	if Func(func() bool { return false }).IsOnline() {
		t.Fatalf("func probe should report offline")
	}
	var nilFunc Func
	if !nilFunc.IsOnline() {
		t.Fatalf("nil func probe should default to online")
	}
}

func TestHTTPProbeCachesResult(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	now := time.Unix(1000, 0)
	p := NewHTTPProbe(srv.URL, time.Second, time.Minute)
	p.now = func() time.Time { return now }

	if !p.IsOnline() || !p.IsOnline() {
		t.Fatalf("expected online")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected cached probe, got %d hits", hits.Load())
	}

	now = now.Add(2 * time.Minute)
	p.IsOnline()
	if hits.Load() != 2 {
		t.Fatalf("expected re-probe after cache expiry, got %d hits", hits.Load())
	}
}

func TestHTTPProbeOfflineWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if NewHTTPProbe(url, 200*time.Millisecond, 0).IsOnline() {
		t.Fatalf("expected offline for closed server")
	}
}

func TestHTTPProbeTreatsErrorStatusAsOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if !NewHTTPProbe(srv.URL, time.Second, 0).IsOnline() {
		t.Fatalf("a reachable server is online regardless of status")
	}
}
