package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// gitPortableMode marks the extracted Git payload as portable so it keeps
// its configuration inside the vendor directory instead of the user profile.
func gitPortableMode(_ context.Context, env Env) error {
	sentinel := filepath.Join(env.ExtractDir, ".portable")
	if err := os.WriteFile(sentinel, []byte("naner portable install\n"), 0o644); err != nil {
		return fmt.Errorf("write portable sentinel: %w", err)
	}
	env.Logf("hook git-portable-mode: wrote %s", sentinel)
	return nil
}

// powershellWrapper writes a thin launcher next to the extracted pwsh
// executable so profile scripts can start it without knowing the layout.
func powershellWrapper(_ context.Context, env Env) error {
	exe := filepath.Join(env.ExtractDir, executableName("pwsh"))
	if _, err := os.Stat(exe); err != nil {
		return fmt.Errorf("pwsh executable missing: %w", err)
	}

	var (
		wrapper string
		body    string
		mode    os.FileMode = 0o755
	)
	if runtime.GOOS == "windows" {
		wrapper = filepath.Join(env.RootDir, "pwsh.cmd")
		body = "@echo off\r\n\"" + exe + "\" -NoLogo %*\r\n"
		mode = 0o644
	} else {
		wrapper = filepath.Join(env.RootDir, "pwsh")
		body = "#!/bin/sh\nexec \"" + exe + "\" -NoLogo \"$@\"\n"
	}

	if err := os.WriteFile(wrapper, []byte(body), mode); err != nil {
		return fmt.Errorf("write wrapper: %w", err)
	}
	env.Logf("hook powershell-wrapper: wrote %s", wrapper)
	return nil
}

// msys2BasePackages is the fixed set installed into a fresh MSYS2 tree.
var msys2BasePackages = []string{"base-devel", "git", "openssh", "vim"}

// msys2Packages runs the bundled pacman non-interactively to install the
// base package set.
func msys2Packages(ctx context.Context, env Env) error {
	pacman := filepath.Join(env.ExtractDir, "usr", "bin", executableName("pacman"))
	if _, err := os.Stat(pacman); err != nil {
		return fmt.Errorf("bundled pacman missing: %w", err)
	}

	args := append([]string{"-S", "--noconfirm", "--needed"}, msys2BasePackages...)
	cmd := exec.CommandContext(ctx, pacman, args...)
	cmd.Dir = env.ExtractDir
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pacman %s: %v: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	env.Logf("hook msys2-packages: installed %s", strings.Join(msys2BasePackages, ", "))
	return nil
}

// goWrapper writes a launcher that pins GOROOT to the vendored toolchain.
func goWrapper(_ context.Context, env Env) error {
	goroot := env.ExtractDir
	if _, err := os.Stat(filepath.Join(goroot, "bin")); err != nil {
		// go.dev archives nest everything under a top-level go/ directory.
		nested := filepath.Join(goroot, "go")
		if _, nestedErr := os.Stat(filepath.Join(nested, "bin")); nestedErr != nil {
			return fmt.Errorf("go toolchain bin directory missing: %w", err)
		}
		goroot = nested
	}

	exe := filepath.Join(goroot, "bin", executableName("go"))
	var (
		wrapper string
		body    string
		mode    os.FileMode = 0o755
	)
	if runtime.GOOS == "windows" {
		wrapper = filepath.Join(env.RootDir, "go.cmd")
		body = "@echo off\r\nset GOROOT=" + goroot + "\r\n\"" + exe + "\" %*\r\n"
		mode = 0o644
	} else {
		wrapper = filepath.Join(env.RootDir, "go")
		body = "#!/bin/sh\nGOROOT=\"" + goroot + "\" exec \"" + exe + "\" \"$@\"\n"
	}

	if err := os.WriteFile(wrapper, []byte(body), mode); err != nil {
		return fmt.Errorf("write wrapper: %w", err)
	}
	env.Logf("hook go-wrapper: wrote %s", wrapper)
	return nil
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
