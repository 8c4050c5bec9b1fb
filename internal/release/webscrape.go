package release

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"sort"

	"github.com/baileyrd/naner-sub002/internal/catalog"
)

func (r *Resolver) resolveWebScrape(ctx context.Context, src *catalog.WebScrapeSource) (Resolved, error) {
	fileRe, err := regexp.Compile(src.FilenameRegex)
	if err != nil {
		return Resolved{}, fmt.Errorf("%w: filenameRegex: %v", catalog.ErrInvalidSpec, err)
	}
	versionRe := fileRe
	if src.VersionRegex != "" {
		versionRe, err = regexp.Compile(src.VersionRegex)
		if err != nil {
			return Resolved{}, fmt.Errorf("%w: versionRegex: %v", catalog.ErrInvalidSpec, err)
		}
	}

	resp, err := r.get(ctx, src.IndexURL, "")
	if err != nil {
		return Resolved{}, fmt.Errorf("fetch index %s: %w", src.IndexURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Resolved{}, fmt.Errorf("fetch index %s: unexpected status %s", src.IndexURL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Resolved{}, fmt.Errorf("read index %s: %w", src.IndexURL, err)
	}

	candidates := uniqueStrings(fileRe.FindAllString(string(body), -1))
	if len(candidates) == 0 {
		return Resolved{}, fmt.Errorf("%w: %q matched nothing at %s", ErrNoMatch, src.FilenameRegex, src.IndexURL)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return CompareVersions(extractVersion(versionRe, candidates[i]), extractVersion(versionRe, candidates[j])) > 0
	})

	best := candidates[0]
	downloadURL, err := resolveAgainstIndex(src.IndexURL, best)
	if err != nil {
		return Resolved{}, err
	}

	return Resolved{
		Version:  extractVersion(versionRe, best),
		URL:      downloadURL,
		FileName: best,
	}, nil
}

// extractVersion pulls the version portion out of a filename, preferring the
// first capture group when the pattern declares one.
func extractVersion(re *regexp.Regexp, name string) string {
	match := re.FindStringSubmatch(name)
	if match == nil {
		return name
	}
	if len(match) > 1 && match[1] != "" {
		return match[1]
	}
	return match[0]
}

func resolveAgainstIndex(indexURL, fileName string) (string, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return "", fmt.Errorf("parse index url: %w", err)
	}
	ref, err := url.Parse(fileName)
	if err != nil {
		return "", fmt.Errorf("parse file name: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
