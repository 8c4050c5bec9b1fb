package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/baileyrd/naner-sub002/internal/catalog"
	"github.com/baileyrd/naner-sub002/internal/download"
	"github.com/baileyrd/naner-sub002/internal/installer"
	"github.com/baileyrd/naner-sub002/internal/logx"
	"github.com/baileyrd/naner-sub002/internal/paths"
	"github.com/baileyrd/naner-sub002/internal/release"
)

var (
	installForce       bool
	installConcurrency int
	installCatalog     string
)

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [vendor|all]",
		Short: "Install vendors in dependency order",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInstall,
	}

	cmd.Flags().BoolVar(&installForce, "force", false, "Reinstall even if already present")
	cmd.Flags().IntVar(&installConcurrency, "concurrency", 2, "Parallel installs for independent vendors")
	cmd.Flags().StringVar(&installCatalog, "catalog", "", "Vendor catalog file (defaults to config/vendors.json or the built-in catalog)")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	target := "all"
	if len(args) == 1 {
		target = args[0]
	}

	env, err := newCommandEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	var progress io.Writer
	if !outputJSON && isatty.IsTerminal(os.Stderr.Fd()) {
		progress = os.Stderr
	}

	resolver := release.NewResolver(env.Logger.Printf)
	fetcher := download.NewClient(progress, env.Logger.Printf)
	ins := installer.New(env.Paths, env.Catalog, resolver, fetcher, env.Logger.Printf)
	ins.Concurrency = installConcurrency

	opts := installer.Options{Force: installForce}
	if !strings.EqualFold(target, "all") {
		opts.Only = target
	}

	summary, err := ins.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if outputJSON {
		printSummaryJSON(cmd, summary)
	} else {
		printSummary(cmd, summary)
	}

	if summary.RequiredFailed {
		return fmt.Errorf("required vendor failed to install")
	}
	return nil
}

func printSummary(cmd *cobra.Command, summary installer.Summary) {
	for _, res := range summary.Results {
		line := fmt.Sprintf("%-18s %s", res.VendorID, renderOutcome(res.Outcome))
		if res.Version != "" {
			line += " (" + res.Version + ")"
		}
		cmd.Println(line)
		if res.Err != nil {
			cmd.Printf("  reason: %v\n", res.Err)
		}
		for _, note := range res.Notes {
			cmd.Printf("  note: %s\n", note)
		}
	}
	cmd.Printf("\n%d installed, %d skipped, %d warnings, %d failed\n",
		summary.Installed, summary.Skipped, summary.Warnings, summary.Failed)
}

type summaryResultDoc struct {
	VendorID string   `json:"vendorId"`
	Name     string   `json:"name"`
	Outcome  string   `json:"outcome"`
	Stage    string   `json:"stage"`
	Version  string   `json:"version,omitempty"`
	Error    string   `json:"error,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

type summaryDoc struct {
	Results        []summaryResultDoc `json:"results"`
	Installed      int                `json:"installed"`
	Skipped        int                `json:"skipped"`
	Warnings       int                `json:"warnings"`
	Failed         int                `json:"failed"`
	RequiredFailed bool               `json:"requiredFailed"`
}

func printSummaryJSON(cmd *cobra.Command, summary installer.Summary) {
	doc := summaryDoc{
		Installed:      summary.Installed,
		Skipped:        summary.Skipped,
		Warnings:       summary.Warnings,
		Failed:         summary.Failed,
		RequiredFailed: summary.RequiredFailed,
	}
	for _, res := range summary.Results {
		rd := summaryResultDoc{
			VendorID: res.VendorID,
			Name:     res.Name,
			Outcome:  string(res.Outcome),
			Stage:    string(res.Stage),
			Version:  res.Version,
			Notes:    res.Notes,
		}
		if res.Err != nil {
			rd.Error = res.Err.Error()
		}
		doc.Results = append(doc.Results, rd)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		cmd.PrintErrf("encode json: %v\n", err)
		return
	}
	cmd.Println(string(data))
}

// commandEnv bundles the per-invocation context every command needs.
type commandEnv struct {
	Paths   paths.InstallPaths
	Catalog catalog.Catalog
	Logger  *log.Logger
	closer  io.Closer
}

func (e *commandEnv) Close() {
	if e.closer != nil {
		_ = e.closer.Close()
	}
}

func newCommandEnv() (*commandEnv, error) {
	p, err := resolvePaths()
	if err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(p)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(p)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	return &commandEnv{Paths: p, Catalog: cat, Logger: logger, closer: closer}, nil
}
