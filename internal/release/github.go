package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/baileyrd/naner-sub002/internal/catalog"
)

// githubAPIBaseURL is a variable so tests can point the resolver at a stub
// server.
var githubAPIBaseURL = "https://api.github.com"

type githubReleaseAsset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type githubRelease struct {
	TagName string               `json:"tag_name"`
	Assets  []githubReleaseAsset `json:"assets"`
}

func (r *Resolver) resolveGitHub(ctx context.Context, src *catalog.GitHubSource) (Resolved, error) {
	resolved, err := r.fetchLatestGitHub(ctx, src)
	if err == nil {
		return resolved, nil
	}

	if src.Fallback != nil {
		// The fallback is a pinned URL that goes stale over time; make the
		// degraded path stand out in the log.
		r.logf("github resolve failed for %s/%s (%v); using pinned fallback %s",
			src.Owner, src.Repo, err, src.Fallback.Version)
		return Resolved{
			Version:  src.Fallback.Version,
			URL:      src.Fallback.URL,
			FileName: src.Fallback.FileName,
		}, nil
	}
	return Resolved{}, err
}

func (r *Resolver) fetchLatestGitHub(ctx context.Context, src *catalog.GitHubSource) (Resolved, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/latest", githubAPIBaseURL, src.Owner, src.Repo)

	resp, err := r.get(ctx, endpoint, "application/vnd.github+json")
	if err != nil {
		return Resolved{}, fmt.Errorf("query %s/%s release: %w", src.Owner, src.Repo, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return Resolved{}, fmt.Errorf("%w: %s/%s: %s", ErrRateLimited, src.Owner, src.Repo, resp.Status)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Resolved{}, fmt.Errorf("query %s/%s release: unexpected status %s", src.Owner, src.Repo, resp.Status)
	}

	var rel githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Resolved{}, fmt.Errorf("decode %s/%s release: %w", src.Owner, src.Repo, err)
	}

	asset, ok := matchAsset(rel.Assets, src.AssetPattern)
	if !ok {
		return Resolved{}, fmt.Errorf("%w: no asset matches %q in %s/%s", ErrNoMatch, src.AssetPattern, src.Owner, src.Repo)
	}

	version := strings.TrimPrefix(rel.TagName, "v")
	if version == "" {
		version = rel.TagName
	}

	return Resolved{
		Version:  version,
		URL:      asset.BrowserDownloadURL,
		FileName: asset.Name,
		Size:     asset.Size,
	}, nil
}

// matchAsset returns the first asset whose name matches the glob-style
// pattern, where '*' stands for any run of characters. Matching is
// case-insensitive.
func matchAsset(assets []githubReleaseAsset, pattern string) (githubReleaseAsset, bool) {
	re := globToRegexp(pattern)
	for _, asset := range assets {
		if re.MatchString(asset.Name) {
			return asset, true
		}
	}
	return githubReleaseAsset{}, false
}

func globToRegexp(pattern string) *regexp.Regexp {
	parts := strings.Split(pattern, "*")
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("(?i)^" + strings.Join(quoted, ".*") + "$")
}
