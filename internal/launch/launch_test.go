package launch

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/baileyrd/naner-sub002/internal/installer"
	"github.com/baileyrd/naner-sub002/internal/paths"
)

func placeExecutable(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	name := "tool"
	if runtime.GOOS == "windows" {
		name = "tool.exe"
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestVendorPathCollectsBinDirs(t *testing.T) {
	p := paths.New(t.TempDir())

	// git ships executables at the extract root and under cmd/; go nests
	// them under go/bin.
	placeExecutable(t, p.VendorExtractDir("git"))
	placeExecutable(t, filepath.Join(p.VendorExtractDir("git"), "cmd"))
	placeExecutable(t, filepath.Join(p.VendorExtractDir("go"), "go", "bin"))

	manifest := installer.Manifest{Entries: map[string]installer.ManifestEntry{
		"git": {VendorID: "git", ExtractDir: "git"},
		"go":  {VendorID: "go", ExtractDir: "go"},
	}}

	dirs := VendorPath(p, manifest)
	want := []string{
		p.VendorExtractDir("git"),
		filepath.Join(p.VendorExtractDir("git"), "cmd"),
		filepath.Join(p.VendorExtractDir("go"), "go", "bin"),
	}
	if len(dirs) != len(want) {
		t.Fatalf("dirs = %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("dirs[%d] = %s, want %s", i, dirs[i], want[i])
		}
	}
}

func TestVendorPathIgnoresEmptyDirs(t *testing.T) {
	p := paths.New(t.TempDir())
	if err := os.MkdirAll(filepath.Join(p.VendorExtractDir("nano"), "bin"), 0o755); err != nil {
		t.Fatal(err)
	}

	manifest := installer.Manifest{Entries: map[string]installer.ManifestEntry{
		"nano": {VendorID: "nano", ExtractDir: "nano"},
	}}

	if dirs := VendorPath(p, manifest); len(dirs) != 0 {
		t.Errorf("dirs = %v, want none for executable-free vendor", dirs)
	}
}
