package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLayout(t *testing.T) {
	p := New(filepath.Join("/opt", "naner"))

	want := map[string]string{
		"vendor":    p.VendorDir,
		"downloads": p.DownloadsDir,
		"config":    p.ConfigDir,
		"logs":      p.LogsDir,
	}
	for label, path := range want {
		if !filepath.IsAbs(path) {
			t.Errorf("%s dir not absolute: %s", label, path)
		}
	}
	if p.DownloadsDir != filepath.Join(p.VendorDir, ".downloads") {
		t.Errorf("downloads dir = %s", p.DownloadsDir)
	}
	if filepath.Dir(p.ManifestFile) != p.ConfigDir {
		t.Errorf("manifest outside config dir: %s", p.ManifestFile)
	}
	if filepath.Dir(p.LockFile) != p.ConfigDir {
		t.Errorf("lock file outside config dir: %s", p.LockFile)
	}
}

func TestResolvePrefersFlagOverEnv(t *testing.T) {
	t.Setenv("NANER_ROOT", filepath.Join(t.TempDir(), "from-env"))
	flagRoot := filepath.Join(t.TempDir(), "from-flag")

	p, err := Resolve(flagRoot)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Root != flagRoot {
		t.Errorf("root = %s, want %s", p.Root, flagRoot)
	}
}

func TestResolveUsesEnvWhenNoFlag(t *testing.T) {
	envRoot := filepath.Join(t.TempDir(), "from-env")
	t.Setenv("NANER_ROOT", envRoot)

	p, err := Resolve("")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Root != envRoot {
		t.Errorf("root = %s, want %s", p.Root, envRoot)
	}
}

func TestVendorExtractDirNormalizesSlashes(t *testing.T) {
	p := New(t.TempDir())
	got := p.VendorExtractDir("nested/dir")
	want := filepath.Join(p.VendorDir, "nested", "dir")
	if got != want {
		t.Errorf("extract dir = %s, want %s", got, want)
	}
}

func TestEnsureLayoutCreatesDirectories(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "root"))
	if err := p.EnsureLayout(); err != nil {
		t.Fatalf("EnsureLayout: %v", err)
	}
	for _, dir := range []string{p.VendorDir, p.DownloadsDir, p.ConfigDir, p.LogsDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", dir, err)
		}
	}
}
