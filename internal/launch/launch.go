// Package launch is the thin terminal-profile surface: it assembles PATH
// from installed vendors and starts a shell process. The installation and
// lock machinery never depends on it.
package launch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/baileyrd/naner-sub002/internal/installer"
	"github.com/baileyrd/naner-sub002/internal/paths"
)

// binDirCandidates are the conventional executable locations inside a
// vendor's extract directory, checked in order.
var binDirCandidates = []string{"", "bin", "cmd", filepath.Join("usr", "bin"), filepath.Join("go", "bin")}

// VendorPath builds the PATH prefix for every vendor in the manifest.
func VendorPath(p paths.InstallPaths, manifest installer.Manifest) []string {
	ids := make([]string, 0, len(manifest.Entries))
	for id := range manifest.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var dirs []string
	for _, id := range ids {
		entry := manifest.Entries[id]
		root := p.VendorExtractDir(entry.ExtractDir)
		for _, sub := range binDirCandidates {
			dir := filepath.Join(root, sub)
			if containsExecutables(dir) {
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

// Shell starts an interactive shell with the vendor PATH prepended. It
// blocks until the shell exits.
func Shell(ctx context.Context, p paths.InstallPaths, shell string) error {
	manifest, err := installer.LoadManifest(p.ManifestFile)
	if err != nil {
		return err
	}
	if len(manifest.Entries) == 0 {
		return fmt.Errorf("no vendors installed; run naner install first")
	}

	if shell == "" {
		shell = defaultShell()
	}

	pathEnv := strings.Join(append(VendorPath(p, manifest), os.Getenv("PATH")), string(os.PathListSeparator))

	cmd := exec.CommandContext(ctx, shell)
	cmd.Dir = p.Root
	cmd.Env = append(os.Environ(), "PATH="+pathEnv, "NANER_ROOT="+p.Root)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("launch %s: %w", shell, err)
	}
	return nil
}

func defaultShell() string {
	if runtime.GOOS == "windows" {
		return "pwsh.exe"
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

func containsExecutables(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if runtime.GOOS == "windows" {
			name := strings.ToLower(entry.Name())
			if strings.HasSuffix(name, ".exe") || strings.HasSuffix(name, ".cmd") || strings.HasSuffix(name, ".bat") {
				return true
			}
			continue
		}
		if info, err := entry.Info(); err == nil && info.Mode()&0o111 != 0 {
			return true
		}
	}
	return false
}
