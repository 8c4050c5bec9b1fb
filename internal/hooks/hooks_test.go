package hooks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRunUnknownHook(t *testing.T) {
	err := Run(context.Background(), "does-not-exist", Env{})
	var hookErr *HookError
	if !errors.As(err, &hookErr) {
		t.Fatalf("expected HookError, got %v", err)
	}
	if hookErr.Name != "does-not-exist" {
		t.Errorf("name = %q", hookErr.Name)
	}
}

func TestNamesAreSorted(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("no hooks registered")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
	found := false
	for _, name := range names {
		if name == "git-portable-mode" {
			found = true
		}
	}
	if !found {
		t.Errorf("git-portable-mode missing from %v", names)
	}
}

func TestGitPortableModeWritesSentinel(t *testing.T) {
	extract := t.TempDir()
	err := Run(context.Background(), "git-portable-mode", Env{RootDir: t.TempDir(), ExtractDir: extract})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(extract, ".portable")); err != nil {
		t.Errorf("sentinel missing: %v", err)
	}
}

func TestPowershellWrapperRequiresExecutable(t *testing.T) {
	err := Run(context.Background(), "powershell-wrapper", Env{RootDir: t.TempDir(), ExtractDir: t.TempDir()})
	var hookErr *HookError
	if !errors.As(err, &hookErr) {
		t.Fatalf("expected HookError for missing pwsh, got %v", err)
	}
}

func TestPowershellWrapperWritesLauncher(t *testing.T) {
	root := t.TempDir()
	extract := t.TempDir()
	exe := filepath.Join(extract, executableName("pwsh"))
	if err := os.WriteFile(exe, []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Run(context.Background(), "powershell-wrapper", Env{RootDir: root, ExtractDir: extract}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wrapper := filepath.Join(root, "pwsh")
	if runtime.GOOS == "windows" {
		wrapper = filepath.Join(root, "pwsh.cmd")
	}
	body, err := os.ReadFile(wrapper)
	if err != nil {
		t.Fatalf("wrapper missing: %v", err)
	}
	if len(body) == 0 {
		t.Error("wrapper is empty")
	}
}

func TestGoWrapperHandlesNestedLayout(t *testing.T) {
	root := t.TempDir()
	extract := t.TempDir()
	// go.dev archives unpack to a top-level go/ directory.
	binDir := filepath.Join(extract, "go", "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(binDir, executableName("go")), []byte("binary"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Run(context.Background(), "go-wrapper", Env{RootDir: root, ExtractDir: extract}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wrapper := filepath.Join(root, "go")
	if runtime.GOOS == "windows" {
		wrapper = filepath.Join(root, "go.cmd")
	}
	body, err := os.ReadFile(wrapper)
	if err != nil {
		t.Fatalf("wrapper missing: %v", err)
	}
	if want := filepath.Join(extract, "go"); !strings.Contains(string(body), want) {
		t.Errorf("wrapper does not pin GOROOT to %s: %q", want, body)
	}
}
