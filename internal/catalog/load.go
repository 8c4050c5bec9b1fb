package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// vendorDoc is the wire shape of a vendor definition. The release source is
// flattened here and converted into the tagged union after decoding.
type vendorDoc struct {
	Name          string           `json:"name" yaml:"name"`
	ExtractDir    string           `json:"extractDir" yaml:"extractDir"`
	Enabled       bool             `json:"enabled" yaml:"enabled"`
	Required      bool             `json:"required,omitempty" yaml:"required,omitempty"`
	Dependencies  []string         `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	InstallType   string           `json:"installType,omitempty" yaml:"installType,omitempty"`
	InstallerArgs []string         `json:"installerArgs,omitempty" yaml:"installerArgs,omitempty"`
	PostInstall   string           `json:"postInstall,omitempty" yaml:"postInstall,omitempty"`
	Release       releaseSourceDoc `json:"releaseSource" yaml:"releaseSource"`
}

type releaseSourceDoc struct {
	Type string `json:"type" yaml:"type"`

	// github
	Owner        string         `json:"owner,omitempty" yaml:"owner,omitempty"`
	Repo         string         `json:"repo,omitempty" yaml:"repo,omitempty"`
	AssetPattern string         `json:"assetPattern,omitempty" yaml:"assetPattern,omitempty"`
	Fallback     *StaticRelease `json:"fallback,omitempty" yaml:"fallback,omitempty"`

	// static
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
	FileName string `json:"fileName,omitempty" yaml:"fileName,omitempty"`

	// web-scrape
	IndexURL      string `json:"indexUrl,omitempty" yaml:"indexUrl,omitempty"`
	FilenameRegex string `json:"filenameRegex,omitempty" yaml:"filenameRegex,omitempty"`
	VersionRegex  string `json:"versionRegex,omitempty" yaml:"versionRegex,omitempty"`

	// golang-api
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	OS       string `json:"os,omitempty" yaml:"os,omitempty"`
	Arch     string `json:"arch,omitempty" yaml:"arch,omitempty"`
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

type catalogDoc struct {
	Version int                  `json:"version" yaml:"version"`
	Vendors map[string]vendorDoc `json:"vendors" yaml:"vendors"`
}

// Load reads a vendor catalog from disk. JSON documents are validated
// against the embedded schema before decoding; YAML documents are decoded
// directly and rely on Validate for structural checks.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(data)
	default:
		return parseJSON(data)
	}
}

// LoadDefault returns the embedded default vendor catalog.
func LoadDefault() (Catalog, error) {
	return parseJSON(defaultCatalog)
}

func parseJSON(data []byte) (Catalog, error) {
	if err := validateSchema(data); err != nil {
		return Catalog{}, err
	}
	var doc catalogDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	return fromDoc(doc)
}

func parseYAML(data []byte) (Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	return fromDoc(doc)
}

func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(catalogSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	if !result.Valid() {
		var b strings.Builder
		for _, desc := range result.Errors() {
			fmt.Fprintf(&b, "- %s\n", desc)
		}
		return fmt.Errorf("catalog schema violation:\n%s", b.String())
	}
	return nil
}

func fromDoc(doc catalogDoc) (Catalog, error) {
	cat := Catalog{Version: doc.Version, Vendors: make(map[string]VendorDefinition, len(doc.Vendors))}
	for id, vd := range doc.Vendors {
		def, err := vendorFromDoc(id, vd)
		if err != nil {
			return Catalog{}, err
		}
		cat.Vendors[id] = def
	}

	for id, def := range cat.Vendors {
		for _, dep := range def.Dependencies {
			if _, ok := cat.Vendors[dep]; !ok {
				return Catalog{}, fmt.Errorf("vendor %s depends on unknown vendor %s", id, dep)
			}
		}
	}
	return cat, nil
}

func vendorFromDoc(id string, vd vendorDoc) (VendorDefinition, error) {
	if vd.Name == "" || vd.ExtractDir == "" {
		return VendorDefinition{}, fmt.Errorf("vendor %s: name and extractDir are required", id)
	}

	src, err := sourceFromDoc(vd.Release)
	if err != nil {
		return VendorDefinition{}, fmt.Errorf("vendor %s: %w", id, err)
	}

	installType := InstallType(vd.InstallType)
	if installType == "" {
		installType = InstallArchive
	}
	if installType != InstallArchive && installType != InstallInstaller {
		return VendorDefinition{}, fmt.Errorf("vendor %s: unknown installType %q", id, vd.InstallType)
	}

	return VendorDefinition{
		ID:            id,
		Name:          vd.Name,
		ExtractDir:    vd.ExtractDir,
		Enabled:       vd.Enabled,
		Required:      vd.Required,
		Dependencies:  append([]string(nil), vd.Dependencies...),
		Release:       src,
		InstallType:   installType,
		InstallerArgs: append([]string(nil), vd.InstallerArgs...),
		PostInstall:   vd.PostInstall,
	}, nil
}

func sourceFromDoc(rd releaseSourceDoc) (ReleaseSource, error) {
	src := ReleaseSource{Type: SourceType(rd.Type)}
	switch src.Type {
	case SourceGitHub:
		src.GitHub = &GitHubSource{
			Owner:        rd.Owner,
			Repo:         rd.Repo,
			AssetPattern: rd.AssetPattern,
			Fallback:     rd.Fallback,
		}
	case SourceStatic:
		src.Static = &StaticRelease{URL: rd.URL, Version: rd.Version, FileName: rd.FileName}
	case SourceWebScrape:
		src.WebScrape = &WebScrapeSource{
			IndexURL:      rd.IndexURL,
			FilenameRegex: rd.FilenameRegex,
			VersionRegex:  rd.VersionRegex,
		}
	case SourceGolangAPI:
		src.GolangAPI = &GolangAPISource{Endpoint: rd.Endpoint, OS: rd.OS, Arch: rd.Arch, Kind: rd.Kind}
	default:
		return ReleaseSource{}, fmt.Errorf("%w: unknown source type %q", ErrInvalidSpec, rd.Type)
	}

	if err := src.Validate(); err != nil {
		return ReleaseSource{}, err
	}
	return src, nil
}
