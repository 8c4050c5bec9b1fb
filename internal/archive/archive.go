// Package archive unpacks vendor distribution archives. The format is
// chosen by file extension, one extractor per format.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrInstallerExtraction reports that the platform installer exited
	// non-zero during administrative extraction.
	ErrInstallerExtraction = errors.New("installer extraction failed")
	// ErrNoExtractor reports that the external tool a format requires is
	// not available on this machine.
	ErrNoExtractor = errors.New("no extractor available")
)

// UnsupportedFormatError reports an archive extension no extractor handles.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported archive format %q", e.Ext)
}

// Extract unpacks archivePath into destDir, creating destDir if needed.
// On failure destDir may hold partial output; callers must treat it as
// invalid and remove it before retrying.
func Extract(ctx context.Context, archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("prepare extract dir: %w", err)
	}

	switch {
	case hasSuffix(archivePath, ".zip"):
		return extractZip(archivePath, destDir)
	case hasSuffix(archivePath, ".msi"):
		return extractMSI(ctx, archivePath, destDir)
	case hasSuffix(archivePath, ".tar.xz"), hasSuffix(archivePath, ".txz"), hasSuffix(archivePath, ".xz"):
		return extractTarXz(archivePath, destDir)
	case hasSuffix(archivePath, ".tar.gz"), hasSuffix(archivePath, ".tgz"):
		return extractTarGz(archivePath, destDir)
	default:
		return &UnsupportedFormatError{Ext: extensionOf(archivePath)}
	}
}

func hasSuffix(path, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(path), suffix)
}

func extensionOf(path string) string {
	lower := strings.ToLower(path)
	if idx := strings.LastIndexByte(lower, '.'); idx >= 0 {
		return lower[idx:]
	}
	return ""
}
