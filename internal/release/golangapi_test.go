package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baileyrd/naner-sub002/internal/catalog"
)

const golangIndexFixture = `[
	{"version": "go1.22.5", "stable": true, "files": [
		{"filename": "go1.22.5.windows-amd64.zip", "os": "windows", "arch": "amd64", "kind": "archive", "size": 100},
		{"filename": "go1.22.5.linux-amd64.tar.gz", "os": "linux", "arch": "amd64", "kind": "archive", "size": 90}
	]},
	{"version": "go1.23.0", "stable": true, "files": [
		{"filename": "go1.23.0.windows-amd64.zip", "os": "windows", "arch": "amd64", "kind": "archive", "size": 105}
	]},
	{"version": "go1.24rc1", "stable": false, "files": [
		{"filename": "go1.24rc1.windows-amd64.zip", "os": "windows", "arch": "amd64", "kind": "archive", "size": 110}
	]}
]`

func TestGolangAPIResolvePicksNewestStable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, golangIndexFixture)
	}))
	defer server.Close()

	r := NewResolver(nil)
	resolved, err := r.Resolve(context.Background(), catalog.ReleaseSource{
		Type:      catalog.SourceGolangAPI,
		GolangAPI: &catalog.GolangAPISource{Endpoint: server.URL + "/dl/?mode=json", OS: "windows", Arch: "amd64"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Version != "1.23.0" {
		t.Errorf("version = %q, want 1.23.0 (unstable releases excluded)", resolved.Version)
	}
	if resolved.FileName != "go1.23.0.windows-amd64.zip" {
		t.Errorf("fileName = %q", resolved.FileName)
	}
	if resolved.Size != 105 {
		t.Errorf("size = %d, want 105", resolved.Size)
	}
}

func TestGolangAPIResolveNoMatchingPlatform(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, golangIndexFixture)
	}))
	defer server.Close()

	r := NewResolver(nil)
	_, err := r.Resolve(context.Background(), catalog.ReleaseSource{
		Type:      catalog.SourceGolangAPI,
		GolangAPI: &catalog.GolangAPISource{Endpoint: server.URL, OS: "plan9", Arch: "mips"},
	})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
