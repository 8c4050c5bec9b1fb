package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/baileyrd/naner-sub002/internal/catalog"
)

const defaultGolangIndex = "https://go.dev/dl/?mode=json"

type golangReleaseFile struct {
	Filename string `json:"filename"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Kind     string `json:"kind"`
	Size     int64  `json:"size"`
	Checksum string `json:"sha256"`
}

type golangRelease struct {
	Version string              `json:"version"`
	Stable  bool                `json:"stable"`
	Files   []golangReleaseFile `json:"files"`
}

func (r *Resolver) resolveGolangAPI(ctx context.Context, src *catalog.GolangAPISource) (Resolved, error) {
	endpoint := src.Endpoint
	if endpoint == "" {
		endpoint = defaultGolangIndex
	}
	kind := src.Kind
	if kind == "" {
		kind = "archive"
	}

	resp, err := r.get(ctx, endpoint, "application/json")
	if err != nil {
		return Resolved{}, fmt.Errorf("fetch toolchain index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Resolved{}, fmt.Errorf("fetch toolchain index: unexpected status %s", resp.Status)
	}

	var releases []golangRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return Resolved{}, fmt.Errorf("decode toolchain index: %w", err)
	}

	var best *Resolved
	for _, rel := range releases {
		if !rel.Stable {
			continue
		}
		version := strings.TrimPrefix(rel.Version, "go")
		for _, file := range rel.Files {
			if file.OS != src.OS || file.Arch != src.Arch || file.Kind != kind {
				continue
			}
			if best != nil && CompareVersions(version, best.Version) <= 0 {
				continue
			}
			best = &Resolved{
				Version:  version,
				URL:      downloadURLFor(endpoint, file.Filename),
				FileName: file.Filename,
				Size:     file.Size,
			}
		}
	}

	if best == nil {
		return Resolved{}, fmt.Errorf("%w: no %s/%s %s entry in toolchain index", ErrNoMatch, src.OS, src.Arch, kind)
	}
	return *best, nil
}

// downloadURLFor derives the artifact URL from the index endpoint, so a test
// or mirror endpoint serves its own files.
func downloadURLFor(endpoint, filename string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "https://go.dev/dl/" + filename
	}
	parsed.RawQuery = ""
	base := strings.TrimSuffix(parsed.String(), "/")
	return base + "/" + filename
}
