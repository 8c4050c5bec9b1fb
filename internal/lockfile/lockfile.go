// Package lockfile snapshots resolved vendor versions into a portable lock
// document and validates installations against one.
package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/baileyrd/naner-sub002/internal/installer"
	"github.com/baileyrd/naner-sub002/internal/paths"
)

// FormatVersion is the lock document format this build reads and writes.
const FormatVersion = "1"

var (
	// ErrMissingVersion reports a lock document without a format version.
	ErrMissingVersion = errors.New("lock file missing version field")
	// ErrMissingVendors reports a lock document without a vendors map.
	ErrMissingVendors = errors.New("lock file missing vendors field")
)

// HashMismatchError reports a locked vendor whose on-disk file digest does
// not match the lock. It blocks any operation relying on that file.
type HashMismatchError struct {
	VendorID string
	Want     string
	Got      string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash mismatch for %s: lock %s, file %s", e.VendorID, e.Want, e.Got)
}

// Platform records where a lock file was generated, for later compatibility
// checks.
type Platform struct {
	OS             string `json:"os"`
	RuntimeVersion string `json:"runtimeVersion"`
	Architecture   string `json:"architecture"`
}

// LockedVendor pins one vendor's resolved release.
type LockedVendor struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	URL           string `json:"url"`
	FileName      string `json:"fileName"`
	Size          string `json:"size,omitempty"`
	SHA256        string `json:"sha256,omitempty"`
	Installed     bool   `json:"installed"`
	InstalledDate string `json:"installedDate,omitempty"`
	ExtractDir    string `json:"extractDir"`
}

// LockFile is the portable manifest pinning exact vendor versions.
type LockFile struct {
	Version   string                  `json:"version"`
	Generated string                  `json:"generated"`
	Platform  Platform                `json:"platform"`
	Vendors   map[string]LockedVendor `json:"vendors"`
}

// Export snapshots the current install manifest into a lock file at path.
// When includeHashes is set, each vendor's cached archive (if present in
// the download cache) is hashed with SHA-256.
func Export(p paths.InstallPaths, path string, includeHashes bool) (LockFile, error) {
	manifest, err := installer.LoadManifest(p.ManifestFile)
	if err != nil {
		return LockFile{}, err
	}

	lock := LockFile{
		Version:   FormatVersion,
		Generated: time.Now().UTC().Format(time.RFC3339),
		Platform: Platform{
			OS:             runtime.GOOS,
			RuntimeVersion: runtime.Version(),
			Architecture:   runtime.GOARCH,
		},
		Vendors: make(map[string]LockedVendor, len(manifest.Entries)),
	}

	for id, entry := range manifest.Entries {
		locked := LockedVendor{
			Name:          entry.Name,
			Version:       entry.Version,
			URL:           entry.URL,
			FileName:      entry.FileName,
			Installed:     true,
			InstalledDate: entry.InstalledAt,
			ExtractDir:    entry.ExtractDir,
		}
		if entry.Size > 0 {
			locked.Size = humanize.Bytes(uint64(entry.Size))
		}
		if includeHashes && entry.FileName != "" {
			cached := filepath.Join(p.DownloadsDir, entry.FileName)
			if sum, err := fileSHA256(cached); err == nil {
				locked.SHA256 = sum
			}
		}
		lock.Vendors[id] = locked
	}

	if err := save(path, lock); err != nil {
		return LockFile{}, err
	}
	return lock, nil
}

// Import reads and validates a lock document. Version and vendors are
// mandatory; everything else is per-vendor optional.
func Import(path string) (LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LockFile{}, fmt.Errorf("read lock file: %w", err)
	}

	var lock LockFile
	if err := json.Unmarshal(data, &lock); err != nil {
		return LockFile{}, fmt.Errorf("parse lock file: %w", err)
	}
	if lock.Version == "" {
		return LockFile{}, ErrMissingVersion
	}
	if lock.Vendors == nil {
		return LockFile{}, ErrMissingVendors
	}
	return lock, nil
}

// CheckStatus classifies one vendor during hash validation.
type CheckStatus string

const (
	CheckOK       CheckStatus = "ok"
	CheckMissing  CheckStatus = "will be downloaded"
	CheckNoHash   CheckStatus = "no hash recorded"
	CheckMismatch CheckStatus = "hash mismatch"
)

// Check is the validation result for one locked vendor.
type Check struct {
	VendorID string
	Status   CheckStatus
}

// ValidateHashes recomputes SHA-256 for each locked vendor whose file is
// present in the download cache. A digest mismatch is a hard error; a file
// that is simply absent is reported as pending download, not an error.
func ValidateHashes(p paths.InstallPaths, lock LockFile) ([]Check, error) {
	checks := make([]Check, 0, len(lock.Vendors))
	for id, vendor := range lock.Vendors {
		if vendor.SHA256 == "" {
			checks = append(checks, Check{VendorID: id, Status: CheckNoHash})
			continue
		}
		cached := filepath.Join(p.DownloadsDir, vendor.FileName)
		sum, err := fileSHA256(cached)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				checks = append(checks, Check{VendorID: id, Status: CheckMissing})
				continue
			}
			return checks, fmt.Errorf("hash %s: %w", cached, err)
		}
		if sum != vendor.SHA256 {
			checks = append(checks, Check{VendorID: id, Status: CheckMismatch})
			return checks, &HashMismatchError{VendorID: id, Want: vendor.SHA256, Got: sum}
		}
		checks = append(checks, Check{VendorID: id, Status: CheckOK})
	}
	return checks, nil
}

// Versions returns the vendorId to version mapping the lock pins.
func (l LockFile) Versions() map[string]string {
	out := make(map[string]string, len(l.Vendors))
	for id, vendor := range l.Vendors {
		out[id] = vendor.Version
	}
	return out
}

func save(path string, lock LockFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare lock directory: %w", err)
	}

	buf, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lock file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "lock-*.json")
	if err != nil {
		return fmt.Errorf("create temp lock file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp lock file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp lock file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace lock file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
