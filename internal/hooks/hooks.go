// Package hooks holds the named post-install routines vendors can opt into.
// A hook failure leaves the vendor usable but imperfectly configured; the
// installer downgrades it to installed-with-warnings instead of failed.
package hooks

import (
	"context"
	"fmt"
	"sort"
)

// Env carries the locations a hook operates on.
type Env struct {
	// RootDir is the installation root.
	RootDir string
	// ExtractDir is the vendor's absolute extract directory.
	ExtractDir string
	// Logf records hook activity; never nil when invoked through Run.
	Logf func(format string, args ...any)
}

// Hook finalizes a vendor after its archive has been extracted.
type Hook func(ctx context.Context, env Env) error

// HookError reports a failed or unknown post-install hook.
type HookError struct {
	Name string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("post-install hook %s: %v", e.Name, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

var registry = map[string]Hook{
	"git-portable-mode":  gitPortableMode,
	"powershell-wrapper": powershellWrapper,
	"msys2-packages":     msys2Packages,
	"go-wrapper":         goWrapper,
}

// Names returns the registered hook names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named hook. Unknown names and hook failures are both
// returned as a HookError.
func Run(ctx context.Context, name string, env Env) error {
	hook, ok := registry[name]
	if !ok {
		return &HookError{Name: name, Err: fmt.Errorf("unknown hook")}
	}
	if env.Logf == nil {
		env.Logf = func(string, ...any) {}
	}
	if err := hook(ctx, env); err != nil {
		return &HookError{Name: name, Err: err}
	}
	return nil
}
