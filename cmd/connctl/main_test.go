package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-connection/pkg/connection"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseMethod(t *testing.T) {
	cases := map[string]connection.Method{
		"get":  connection.MethodGet,
		"GET":  connection.MethodGet,
		"post": connection.MethodPost,
		"":     connection.MethodPost,
	}
	for raw, want := range cases {
		got, err := parseMethod(raw)
		if err != nil || got != want {
			t.Fatalf("parseMethod(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := parseMethod("DELETE"); err == nil {
		t.Fatalf("expected DELETE to be rejected")
	}
}

func TestNewFetchParser(t *testing.T) {
	if _, err := newFetchParser("a", "b"); err == nil {
		t.Fatalf("expected path and selector to be exclusive")
	}

	p, err := newFetchParser("", "li.item")
	if err != nil {
		t.Fatalf("newFetchParser: %v", err)
	}
	v, err := p.Parse(`<ul><li class="item">one</li><li class="item">two</li></ul>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if texts, ok := v.([]string); !ok || len(texts) != 2 || texts[1] != "two" {
		t.Fatalf("unexpected selector result %#v", v)
	}

	p, _ = newFetchParser("data.name", "")
	if v, err := p.Parse(`{"data":{"name":"x"}}`); err != nil || v != "x" {
		t.Fatalf("unexpected path result %#v err=%v", v, err)
	}
}

func TestFetchThenCacheGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/posts/1" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"id":1,"title":"hello"}`)
	}))
	defer srv.Close()

	t.Setenv("BASE_ENDPOINT", srv.URL)
	t.Setenv("STORAGE_TYPE", "bbolt")
	t.Setenv("BBOLT_PATH", filepath.Join(t.TempDir(), "offline.db"))
	t.Setenv("LOG_LEVEL", "error")

	out, err := execute(t, "fetch", "/posts/1", "-X", "GET", "--offline-key", "post/", "--row-id", "1", "--path", "title")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var view outcomeView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if view.Outcome != "success" || view.Value != "hello" || view.Source != "network" {
		t.Fatalf("unexpected outcome %#v", view)
	}

	out, err = execute(t, "cache", "get", "post/1")
	if err != nil {
		t.Fatalf("cache get: %v", err)
	}
	if strings.TrimSpace(out) != `{"id":1,"title":"hello"}` {
		t.Fatalf("unexpected cached record %q", out)
	}

	if _, err := execute(t, "cache", "get", "missing"); err == nil {
		t.Fatalf("expected error for missing record")
	}
}

func TestFetchRejectsInvalidPayload(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "none")
	t.Setenv("LOG_LEVEL", "error")
	if _, err := execute(t, "fetch", "/posts", "-d", "{not json"); err == nil {
		t.Fatalf("expected invalid payload error")
	}
}
