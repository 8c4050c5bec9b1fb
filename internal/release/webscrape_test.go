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

func TestWebScrapeResolvePicksNewestByVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="msys2-base-x86_64-20231026.tar.xz">old</a>
			<a href="msys2-base-x86_64-20240727.tar.xz">new</a>
			<a href="msys2-base-x86_64-20220503.tar.xz">older</a>
		</body></html>`)
	}))
	defer server.Close()

	r := NewResolver(nil)
	resolved, err := r.Resolve(context.Background(), catalog.ReleaseSource{
		Type: catalog.SourceWebScrape,
		WebScrape: &catalog.WebScrapeSource{
			IndexURL:      server.URL + "/distrib/",
			FilenameRegex: `msys2-base-x86_64-[0-9]{8}\.tar\.xz`,
			VersionRegex:  `([0-9]{8})`,
		},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Version != "20240727" {
		t.Errorf("version = %q, want 20240727", resolved.Version)
	}
	if resolved.FileName != "msys2-base-x86_64-20240727.tar.xz" {
		t.Errorf("fileName = %q", resolved.FileName)
	}
	want := server.URL + "/distrib/msys2-base-x86_64-20240727.tar.xz"
	if resolved.URL != want {
		t.Errorf("url = %q, want %q", resolved.URL, want)
	}
}

func TestWebScrapeResolveNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>nothing here</body></html>`)
	}))
	defer server.Close()

	r := NewResolver(nil)
	_, err := r.Resolve(context.Background(), catalog.ReleaseSource{
		Type: catalog.SourceWebScrape,
		WebScrape: &catalog.WebScrapeSource{
			IndexURL:      server.URL,
			FilenameRegex: `tool-[0-9]+\.zip`,
		},
	})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
