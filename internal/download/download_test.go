package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	c := NewClient(nil, nil)
	c.Backoff = time.Millisecond
	return c
}

func TestFetchWritesDestination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "archive-bytes")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "tool.zip")
	if err := testClient().Fetch(context.Background(), server.URL, dest, false); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != "archive-bytes" {
		t.Errorf("dest contents = %q", data)
	}
	if _, err := os.Stat(dest + ".part"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial file left behind")
	}
}

func TestFetchExhaustsRetriesAndLeavesNoPartial(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "tool.zip")

	err := testClient().Fetch(context.Background(), server.URL, dest, false)
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty dir, found %v", entries)
	}
}

func TestFetchSkipsExistingFile(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, "new-bytes")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "tool.zip")
	if err := os.WriteFile(dest, []byte("cached-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := testClient().Fetch(context.Background(), server.URL, dest, false); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("requests = %d, want 0 (cache hit)", got)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "cached-bytes" {
		t.Errorf("cached file was replaced: %q", data)
	}
}

func TestFetchForceRedownloads(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, "new-bytes")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "tool.zip")
	if err := os.WriteFile(dest, []byte("cached-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := testClient().Fetch(context.Background(), server.URL, dest, true); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "new-bytes" {
		t.Errorf("dest = %q, want new-bytes", data)
	}
}

func TestFetchSendsUserAgent(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "tool.zip")
	if err := testClient().Fetch(context.Background(), server.URL, dest, false); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if agent == "" || agent == "Go-http-client/1.1" {
		t.Errorf("expected a browser-style user agent, got %q", agent)
	}
}
