package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-connection/internal/domain"
	"github.com/samvad-hq/samvad-connection/internal/storage"
	"github.com/samvad-hq/samvad-connection/pkg/connection"
	"github.com/samvad-hq/samvad-connection/pkg/connectivity"
	"github.com/samvad-hq/samvad-connection/pkg/httpclient"
)

func newPostsServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[{"id":1,"userId":7,"title":"first","body":"a"},{"id":2,"userId":7,"title":"second","body":"b"}]`)
		case http.MethodPost:
			var p domain.Post
			if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			p.ID = 101
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(p)
		}
	})
	mux.HandleFunc("/posts/2", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"id":2,"userId":7,"title":"second","body":"b"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("connection did not finish")
	}
}

func TestGetPostsCachesForOffline(t *testing.T) {
	srv := newPostsServer(t)
	store := storage.NewMemoryStore()
	deps := connection.Deps{
		Config:    connection.Config{BaseEndpoint: srv.URL},
		Transport: httpclient.NewRestyTransport(httpclient.WithTimeout(2 * time.Second)),
		Store:     store,
		Probe:     connectivity.Static(true),
	}

	var online []domain.Post
	conn := NewPostService(deps).GetPosts().Success(func(p []domain.Post) { online = p })
	if err := conn.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	wait(t, conn.Done())
	if len(online) != 2 || online[1].Title != "second" {
		t.Fatalf("unexpected posts %#v", online)
	}

	// Same service, no network: the persisted list is replayed.
	deps.Probe = connectivity.Static(false)
	var offline []domain.Post
	conn = NewPostService(deps).GetPosts().Success(func(p []domain.Post) { offline = p })
	if err := conn.Get(context.Background()); err != nil {
		t.Fatalf("Get offline: %v", err)
	}
	wait(t, conn.Done())
	if len(offline) != 2 || offline[0].ID != 1 {
		t.Fatalf("expected cached posts offline, got %#v", offline)
	}
}

func TestGetPostUsesPerIDOfflineKey(t *testing.T) {
	srv := newPostsServer(t)
	store := storage.NewMemoryStore()
	conn := NewPostService(connection.Deps{
		Config:    connection.Config{BaseEndpoint: srv.URL},
		Transport: httpclient.NewRestyTransport(),
		Store:     store,
	}).GetPost(2)

	if got := conn.Spec().OfflineKey; got != "posts/2" {
		t.Fatalf("unexpected offline key %q", got)
	}

	var got domain.Post
	conn.Success(func(p domain.Post) { got = p })
	if err := conn.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	wait(t, conn.Done())
	if got.ID != 2 {
		t.Fatalf("unexpected post %#v", got)
	}
	if _, ok, _ := store.Read("posts/2"); !ok {
		t.Fatalf("expected post persisted under posts/2")
	}
}

func TestCreatePostSendsPayload(t *testing.T) {
	srv := newPostsServer(t)
	conn := NewPostService(connection.Deps{
		Config:    connection.Config{BaseEndpoint: srv.URL},
		Transport: httpclient.NewRestyTransport(),
	}).CreatePost(domain.Post{UserID: 7, Title: "hello", Body: "world"})

	if conn.Spec().ShowLoader {
		t.Fatalf("sample connections run without a loader")
	}

	var created domain.Post
	conn.Success(func(p domain.Post) { created = p })
	if err := conn.Post(context.Background()); err != nil {
		t.Fatalf("Post: %v", err)
	}
	wait(t, conn.Done())
	if created.ID != 101 || created.Title != "hello" {
		t.Fatalf("unexpected created post %#v", created)
	}
}
