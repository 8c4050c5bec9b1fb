// Package installer orchestrates vendor installation: dependency ordering,
// the per-vendor resolve/download/extract/configure pipeline, and the
// install manifest.
package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/baileyrd/naner-sub002/internal/archive"
	"github.com/baileyrd/naner-sub002/internal/catalog"
	"github.com/baileyrd/naner-sub002/internal/hooks"
	"github.com/baileyrd/naner-sub002/internal/paths"
	"github.com/baileyrd/naner-sub002/internal/release"
)

// Stage is the step of the install pipeline a vendor has reached.
type Stage string

const (
	StagePending     Stage = "pending"
	StageResolving   Stage = "resolving"
	StageDownloading Stage = "downloading"
	StageExtracting  Stage = "extracting"
	StageConfiguring Stage = "configuring"
	StageInstalled   Stage = "installed"
)

// Outcome is the terminal state of a vendor within a run.
type Outcome string

const (
	OutcomeInstalled        Outcome = "installed"
	OutcomeSkipped          Outcome = "skipped, already installed"
	OutcomeWarnings         Outcome = "installed with warnings"
	OutcomeFailed           Outcome = "failed"
	OutcomeDependencyFailed Outcome = "failed, dependency unsatisfied"
)

// Result captures the terminal state of one vendor.
type Result struct {
	VendorID string
	Name     string
	Required bool
	Outcome  Outcome
	Stage    Stage
	Version  string
	Err      error
	Notes    []string
}

// Summary aggregates a full run.
type Summary struct {
	Results        []Result
	Installed      int
	Skipped        int
	Warnings       int
	Failed         int
	RequiredFailed bool
}

// ReleaseResolver resolves a release source into a concrete release.
type ReleaseResolver interface {
	Resolve(ctx context.Context, src catalog.ReleaseSource) (release.Resolved, error)
}

// Fetcher downloads a URL into the shared download cache.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string, force bool) error
}

// Options selects what a run installs.
type Options struct {
	// Only restricts the run to one vendor id plus its dependency chain.
	Only string
	// Force reinstalls the targeted vendors even when already present.
	Force bool
}

// Installer runs the install pipeline for a catalog of vendors.
type Installer struct {
	Paths    paths.InstallPaths
	Catalog  catalog.Catalog
	Resolver ReleaseResolver
	Fetcher  Fetcher

	// Extract and RunHook default to the archive and hooks packages; tests
	// substitute fakes.
	Extract func(ctx context.Context, archivePath, destDir string) error
	RunHook func(ctx context.Context, name string, env hooks.Env) error

	// Concurrency bounds the worker pool for independent vendors.
	Concurrency int

	Logf func(format string, args ...any)

	manifestMu sync.Mutex
}

// New returns an installer wired to the real extractor and hook registry.
func New(p paths.InstallPaths, cat catalog.Catalog, resolver ReleaseResolver, fetcher Fetcher, logf func(string, ...any)) *Installer {
	return &Installer{
		Paths:       p,
		Catalog:     cat,
		Resolver:    resolver,
		Fetcher:     fetcher,
		Extract:     archive.Extract,
		RunHook:     hooks.Run,
		Concurrency: 2,
		Logf:        logf,
	}
}

// Run installs the selected vendors in dependency order. Independent
// vendors run concurrently on a bounded pool; a vendor starts only after
// every dependency reached a successful terminal state. Per-vendor failures
// do not abort the run; fatal configuration errors do.
func (ins *Installer) Run(ctx context.Context, opts Options) (Summary, error) {
	defs := ins.Catalog.Enabled()
	if opts.Only != "" {
		var err error
		defs, err = Closure(ins.Catalog.Vendors, opts.Only)
		if err != nil {
			return Summary{}, err
		}
	}

	// A cycle must be rejected before any network call.
	if _, err := Order(defs); err != nil {
		return Summary{}, err
	}

	if err := ins.Paths.EnsureLayout(); err != nil {
		return Summary{}, err
	}
	unlock, err := AcquireRunLock(ins.Paths.RunLockFile)
	if err != nil {
		return Summary{}, err
	}
	defer unlock()

	return ins.schedule(ctx, defs, opts), nil
}

type vendorState struct {
	def        catalog.VendorDefinition
	remaining  int
	dependents []string
}

func (ins *Installer) schedule(ctx context.Context, defs map[string]catalog.VendorDefinition, opts Options) Summary {
	states := make(map[string]*vendorState, len(defs))
	for id, def := range defs {
		states[id] = &vendorState{def: def}
	}
	for id, def := range defs {
		for _, dep := range def.Dependencies {
			if _, ok := states[dep]; !ok {
				continue
			}
			states[id].remaining++
			states[dep].dependents = append(states[dep].dependents, id)
		}
	}

	var ready []string
	for id, st := range states {
		if st.remaining == 0 {
			ready = insertSorted(ready, id)
		}
	}

	workers := ins.Concurrency
	if workers < 1 {
		workers = 1
	}

	results := make(map[string]Result, len(defs))
	resCh := make(chan Result)
	running := 0

	var finalize func(res Result)
	finalize = func(res Result) {
		results[res.VendorID] = res
		ins.logf("vendor %s: %s", res.VendorID, res.Outcome)

		st := states[res.VendorID]
		ok := res.Outcome == OutcomeInstalled || res.Outcome == OutcomeSkipped || res.Outcome == OutcomeWarnings
		for _, dep := range st.dependents {
			if _, done := results[dep]; done {
				continue
			}
			if !ok {
				finalize(Result{
					VendorID: dep,
					Name:     states[dep].def.Name,
					Required: states[dep].def.Required,
					Outcome:  OutcomeDependencyFailed,
					Stage:    StagePending,
					Err:      fmt.Errorf("dependency %s not installed", res.VendorID),
				})
				continue
			}
			states[dep].remaining--
			if states[dep].remaining == 0 {
				ready = insertSorted(ready, dep)
			}
		}
	}

	for len(results) < len(defs) {
		for running < workers && len(ready) > 0 {
			id := ready[0]
			ready = ready[1:]
			if _, done := results[id]; done {
				continue
			}
			def := states[id].def
			force := opts.Force && (opts.Only == "" || opts.Only == id)
			running++
			go func() {
				resCh <- ins.installOne(ctx, def, force)
			}()
		}

		if running == 0 {
			// Every remaining vendor was finalized through cascades.
			break
		}

		res := <-resCh
		running--
		finalize(res)
	}

	return summarize(defs, results)
}

func summarize(defs map[string]catalog.VendorDefinition, results map[string]Result) Summary {
	order, _ := Order(defs)
	summary := Summary{}
	for _, id := range order {
		res, ok := results[id]
		if !ok {
			continue
		}
		summary.Results = append(summary.Results, res)
		switch res.Outcome {
		case OutcomeInstalled:
			summary.Installed++
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeWarnings:
			summary.Installed++
			summary.Warnings++
		default:
			summary.Failed++
			if res.Required {
				summary.RequiredFailed = true
			}
		}
	}
	return summary
}

func (ins *Installer) installOne(ctx context.Context, def catalog.VendorDefinition, force bool) Result {
	res := Result{VendorID: def.ID, Name: def.Name, Required: def.Required, Stage: StagePending}
	extractPath := ins.Paths.VendorExtractDir(def.ExtractDir)

	if !force && dirNonEmpty(extractPath) {
		res.Outcome = OutcomeSkipped
		res.Stage = StageInstalled
		if entry, ok := ins.manifestEntry(def.ID); ok {
			res.Version = entry.Version
		}
		return res
	}

	res.Stage = StageResolving
	rel, err := ins.Resolver.Resolve(ctx, def.Release)
	if err != nil {
		return fail(res, err)
	}
	res.Version = rel.Version

	res.Stage = StageDownloading
	dest := filepath.Join(ins.Paths.DownloadsDir, rel.FileName)
	if err := ins.Fetcher.Fetch(ctx, rel.URL, dest, force); err != nil {
		return fail(res, err)
	}

	res.Stage = StageExtracting
	if force {
		if err := os.RemoveAll(extractPath); err != nil {
			return fail(res, fmt.Errorf("clear extract dir: %w", err))
		}
	}
	if def.InstallType == catalog.InstallInstaller {
		err = ins.runInstaller(ctx, def, dest, extractPath)
	} else {
		err = ins.extract(ctx, dest, extractPath)
	}
	if err != nil {
		// A half-extracted directory is indistinguishable from a complete
		// one; remove it so the next run starts clean.
		_ = os.RemoveAll(extractPath)
		return fail(res, err)
	}

	res.Stage = StageConfiguring
	res.Outcome = OutcomeInstalled
	if def.PostInstall != "" {
		env := hooks.Env{RootDir: ins.Paths.Root, ExtractDir: extractPath, Logf: ins.logf}
		if hookErr := ins.runHook(ctx, def.PostInstall, env); hookErr != nil {
			res.Outcome = OutcomeWarnings
			res.Notes = append(res.Notes, hookErr.Error())
			ins.logf("vendor %s: post-install warning: %v", def.ID, hookErr)
		}
	}

	if err := ins.recordInstall(def, rel); err != nil {
		return fail(res, err)
	}

	res.Stage = StageInstalled
	return res
}

func fail(res Result, err error) Result {
	res.Outcome = OutcomeFailed
	res.Err = err
	return res
}

// runInstaller executes a downloaded installer package with the declared
// arguments. The {dir} token expands to the vendor's extract directory.
func (ins *Installer) runInstaller(ctx context.Context, def catalog.VendorDefinition, installerPath, extractPath string) error {
	if err := os.MkdirAll(extractPath, 0o755); err != nil {
		return fmt.Errorf("prepare extract dir: %w", err)
	}

	args := make([]string, len(def.InstallerArgs))
	for i, arg := range def.InstallerArgs {
		args[i] = strings.ReplaceAll(arg, "{dir}", extractPath)
	}

	cmd := exec.CommandContext(ctx, installerPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s: %v: %s", archive.ErrInstallerExtraction, filepath.Base(installerPath), err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (ins *Installer) recordInstall(def catalog.VendorDefinition, rel release.Resolved) error {
	ins.manifestMu.Lock()
	defer ins.manifestMu.Unlock()

	manifest, err := LoadManifest(ins.Paths.ManifestFile)
	if err != nil {
		return err
	}
	manifest.Entries[def.ID] = ManifestEntry{
		VendorID:    def.ID,
		Name:        def.Name,
		Version:     rel.Version,
		URL:         rel.URL,
		FileName:    rel.FileName,
		Size:        rel.Size,
		ExtractDir:  def.ExtractDir,
		InstalledAt: time.Now().UTC().Format(time.RFC3339),
	}
	return SaveManifest(ins.Paths.ManifestFile, manifest)
}

func (ins *Installer) manifestEntry(id string) (ManifestEntry, bool) {
	ins.manifestMu.Lock()
	defer ins.manifestMu.Unlock()

	manifest, err := LoadManifest(ins.Paths.ManifestFile)
	if err != nil {
		return ManifestEntry{}, false
	}
	entry, ok := manifest.Entries[id]
	return entry, ok
}

func (ins *Installer) extract(ctx context.Context, archivePath, destDir string) error {
	if ins.Extract != nil {
		return ins.Extract(ctx, archivePath, destDir)
	}
	return archive.Extract(ctx, archivePath, destDir)
}

func (ins *Installer) runHook(ctx context.Context, name string, env hooks.Env) error {
	if ins.RunHook != nil {
		return ins.RunHook(ctx, name, env)
	}
	return hooks.Run(ctx, name, env)
}

func (ins *Installer) logf(format string, args ...any) {
	if ins.Logf != nil {
		ins.Logf(format, args...)
	}
}

func dirNonEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}
