// Package release resolves a vendor's declared release source into a
// concrete version and download location.
package release

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/baileyrd/naner-sub002/internal/catalog"
)

var (
	// ErrNoMatch reports that a source yielded zero usable candidates.
	ErrNoMatch = errors.New("no matching release found")
	// ErrRateLimited reports that the release API rejected the request.
	ErrRateLimited = errors.New("release api rate limited")
)

// Resolved is the outcome of a successful resolution attempt. It is created
// fresh on every attempt and only persisted through the install manifest.
type Resolved struct {
	Version  string
	URL      string
	FileName string
	Size     int64
}

// Resolver turns release source specs into resolved releases.
type Resolver struct {
	Client    *http.Client
	UserAgent string
	Logf      func(format string, args ...any)
}

// NewResolver returns a resolver with a bounded request timeout.
func NewResolver(logf func(format string, args ...any)) *Resolver {
	return &Resolver{
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: "naner/1.0",
		Logf:      logf,
	}
}

// Resolve dispatches on the populated variant of the spec.
func (r *Resolver) Resolve(ctx context.Context, src catalog.ReleaseSource) (Resolved, error) {
	if err := src.Validate(); err != nil {
		return Resolved{}, err
	}

	switch src.Type {
	case catalog.SourceGitHub:
		return r.resolveGitHub(ctx, src.GitHub)
	case catalog.SourceStatic:
		return r.resolveStatic(src.Static)
	case catalog.SourceWebScrape:
		return r.resolveWebScrape(ctx, src.WebScrape)
	case catalog.SourceGolangAPI:
		return r.resolveGolangAPI(ctx, src.GolangAPI)
	default:
		return Resolved{}, fmt.Errorf("%w: source type %q", catalog.ErrInvalidSpec, src.Type)
	}
}

func (r *Resolver) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func (r *Resolver) get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set("User-Agent", r.UserAgent)
	return r.Client.Do(req)
}
