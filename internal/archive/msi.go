package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// extractMSI performs an administrative (extract-only) installation into a
// temporary directory and moves the payload into dest afterwards, so a
// failed run never leaves partial output under dest.
func extractMSI(ctx context.Context, archivePath, dest string) error {
	tool, args, err := msiCommand(archivePath)
	if err != nil {
		return err
	}

	stage, err := os.MkdirTemp(filepath.Dir(dest), ".msi-extract-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(stage)

	args = append(args, msiTargetArgs(tool, stage)...)
	cmd := exec.CommandContext(ctx, tool, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrInstallerExtraction, tool, err, strings.TrimSpace(string(output)))
	}

	return moveContents(stage, dest)
}

func msiCommand(archivePath string) (string, []string, error) {
	if runtime.GOOS == "windows" {
		path, err := exec.LookPath("msiexec")
		if err != nil {
			return "", nil, fmt.Errorf("%w: msiexec not found", ErrNoExtractor)
		}
		return path, []string{"/a", archivePath, "/qn"}, nil
	}

	path, err := exec.LookPath("msiextract")
	if err != nil {
		return "", nil, fmt.Errorf("%w: msiextract not found", ErrNoExtractor)
	}
	return path, []string{archivePath, "-C"}, nil
}

func msiTargetArgs(tool, stage string) []string {
	if strings.Contains(strings.ToLower(filepath.Base(tool)), "msiexec") {
		return []string{"TARGETDIR=" + stage}
	}
	return []string{stage}
}

func moveContents(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read staging dir: %w", err)
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dest, entry.Name())
		if err := os.Rename(from, to); err != nil {
			if copyErr := copyTree(from, to); copyErr != nil {
				return fmt.Errorf("move %s: %w", entry.Name(), copyErr)
			}
		}
	}
	return nil
}

// copyTree is the cross-device fallback for moveContents.
func copyTree(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dest, info.Mode())
	}
	if err := os.MkdirAll(dest, info.Mode()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := copyTree(filepath.Join(src, entry.Name()), filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
