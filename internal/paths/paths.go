package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// InstallPaths captures canonical locations inside a naner installation root.
type InstallPaths struct {
	Root         string
	VendorDir    string
	DownloadsDir string
	ConfigDir    string
	LogsDir      string
	CatalogFile  string
	ManifestFile string
	LockFile     string
	RunLockFile  string
}

// Resolve determines the installation root using the optional --root flag,
// the NANER_ROOT environment variable, or the current working directory.
func Resolve(rootFlag string) (InstallPaths, error) {
	var (
		root string
		err  error
	)

	switch {
	case rootFlag != "":
		root, err = filepath.Abs(rootFlag)
	case os.Getenv("NANER_ROOT") != "":
		root, err = filepath.Abs(os.Getenv("NANER_ROOT"))
	default:
		root, err = os.Getwd()
	}
	if err != nil {
		return InstallPaths{}, fmt.Errorf("resolve install root: %w", err)
	}

	return New(root), nil
}

// New builds the canonical layout under the provided root.
func New(root string) InstallPaths {
	vendorDir := filepath.Join(root, "vendor")
	configDir := filepath.Join(root, "config")
	return InstallPaths{
		Root:         root,
		VendorDir:    vendorDir,
		DownloadsDir: filepath.Join(vendorDir, ".downloads"),
		ConfigDir:    configDir,
		LogsDir:      filepath.Join(root, "logs"),
		CatalogFile:  filepath.Join(configDir, "vendors.json"),
		ManifestFile: filepath.Join(configDir, "installed.json"),
		LockFile:     filepath.Join(configDir, "vendors.lock.json"),
		RunLockFile:  filepath.Join(configDir, ".naner.lock"),
	}
}

// VendorExtractDir returns the absolute extract directory for a vendor.
func (p InstallPaths) VendorExtractDir(extractDir string) string {
	return filepath.Join(p.VendorDir, filepath.FromSlash(extractDir))
}

// EnsureLayout creates the directories every run depends on.
func (p InstallPaths) EnsureLayout() error {
	for _, dir := range []string{p.VendorDir, p.DownloadsDir, p.ConfigDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}
