package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec reports a release source that cannot be resolved because its
// declaration is incomplete or contradictory.
var ErrInvalidSpec = errors.New("invalid release source spec")

// SourceType identifies the strategy used to discover a vendor's release.
type SourceType string

const (
	SourceGitHub    SourceType = "github"
	SourceStatic    SourceType = "static"
	SourceWebScrape SourceType = "web-scrape"
	SourceGolangAPI SourceType = "golang-api"
)

// InstallType distinguishes plain archives from installer packages.
type InstallType string

const (
	InstallArchive   InstallType = "archive"
	InstallInstaller InstallType = "installer"
)

// StaticRelease pins an exact version and download location.
type StaticRelease struct {
	Version  string `json:"version" yaml:"version"`
	URL      string `json:"url" yaml:"url"`
	FileName string `json:"fileName" yaml:"fileName"`
}

// GitHubSource queries the latest-release endpoint of a repository and picks
// the first asset matching AssetPattern. When the API is unreachable and a
// Fallback is configured, the resolver returns the fallback instead.
type GitHubSource struct {
	Owner        string         `json:"owner" yaml:"owner"`
	Repo         string         `json:"repo" yaml:"repo"`
	AssetPattern string         `json:"assetPattern" yaml:"assetPattern"`
	Fallback     *StaticRelease `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// WebScrapeSource discovers releases by scanning an index page for filenames.
type WebScrapeSource struct {
	IndexURL      string `json:"indexUrl" yaml:"indexUrl"`
	FilenameRegex string `json:"filenameRegex" yaml:"filenameRegex"`
	VersionRegex  string `json:"versionRegex" yaml:"versionRegex"`
}

// GolangAPISource queries a JSON toolchain version index (go.dev/dl style)
// and filters its files by platform.
type GolangAPISource struct {
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	OS       string `json:"os" yaml:"os"`
	Arch     string `json:"arch" yaml:"arch"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// ReleaseSource is a tagged union: exactly one variant is populated,
// selected by Type at load time.
type ReleaseSource struct {
	Type      SourceType
	GitHub    *GitHubSource
	Static    *StaticRelease
	WebScrape *WebScrapeSource
	GolangAPI *GolangAPISource
}

// Validate checks that exactly one variant is populated and that the
// populated variant carries its required fields.
func (s ReleaseSource) Validate() error {
	populated := 0
	for _, set := range []bool{s.GitHub != nil, s.Static != nil, s.WebScrape != nil, s.GolangAPI != nil} {
		if set {
			populated++
		}
	}
	if populated != 1 {
		return fmt.Errorf("%w: %d variants populated", ErrInvalidSpec, populated)
	}

	switch s.Type {
	case SourceGitHub:
		if s.GitHub == nil || s.GitHub.Owner == "" || s.GitHub.Repo == "" || s.GitHub.AssetPattern == "" {
			return fmt.Errorf("%w: github source requires owner, repo and assetPattern", ErrInvalidSpec)
		}
	case SourceStatic:
		if s.Static == nil || s.Static.URL == "" || s.Static.FileName == "" {
			return fmt.Errorf("%w: static source requires url and fileName", ErrInvalidSpec)
		}
	case SourceWebScrape:
		if s.WebScrape == nil || s.WebScrape.IndexURL == "" || s.WebScrape.FilenameRegex == "" {
			return fmt.Errorf("%w: web-scrape source requires indexUrl and filenameRegex", ErrInvalidSpec)
		}
	case SourceGolangAPI:
		if s.GolangAPI == nil || s.GolangAPI.OS == "" || s.GolangAPI.Arch == "" {
			return fmt.Errorf("%w: golang-api source requires os and arch", ErrInvalidSpec)
		}
	default:
		return fmt.Errorf("%w: unknown source type %q", ErrInvalidSpec, s.Type)
	}
	return nil
}

// VendorDefinition contains the metadata required to install a vendor.
type VendorDefinition struct {
	ID            string
	Name          string
	ExtractDir    string
	Enabled       bool
	Required      bool
	Dependencies  []string
	Release       ReleaseSource
	InstallType   InstallType
	InstallerArgs []string
	PostInstall   string
}

// Catalog is the full set of vendor definitions for an installation.
type Catalog struct {
	Version int
	Vendors map[string]VendorDefinition
}

// Enabled returns the definitions with Enabled set, keyed by id.
func (c Catalog) Enabled() map[string]VendorDefinition {
	out := make(map[string]VendorDefinition, len(c.Vendors))
	for id, def := range c.Vendors {
		if def.Enabled {
			out[id] = def
		}
	}
	return out
}

// Lookup returns the definition for the provided vendor id.
func (c Catalog) Lookup(id string) (VendorDefinition, bool) {
	def, ok := c.Vendors[id]
	return def, ok
}
