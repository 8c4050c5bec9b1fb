package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/baileyrd/naner-sub002/internal/catalog"
	"github.com/baileyrd/naner-sub002/internal/installer"
	"github.com/baileyrd/naner-sub002/internal/lockfile"
	"github.com/baileyrd/naner-sub002/internal/paths"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check installation health",
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}

	var checks []healthCheck
	checks = append(checks, checkLayout(p))

	cat, catErr := loadCatalog(p)
	checks = append(checks, checkCatalog(cat, catErr))
	if catErr != nil {
		return writeDoctorResult(cmd, p.Root, checks)
	}

	checks = append(checks, checkVendors(p, cat))
	checks = append(checks, checkLock(p))

	return writeDoctorResult(cmd, p.Root, checks)
}

func checkLayout(p paths.InstallPaths) healthCheck {
	var missing []string
	for _, dir := range []string{p.VendorDir, p.ConfigDir, p.LogsDir} {
		if _, err := os.Stat(dir); err != nil {
			missing = append(missing, dir)
		}
	}
	if len(missing) > 0 {
		return healthCheck{
			Name:    "Layout",
			Status:  "warning",
			Summary: fmt.Sprintf("missing %s; run naner install to create", strings.Join(missing, ", ")),
		}
	}
	return healthCheck{Name: "Layout", Status: "ok", Summary: p.Root}
}

func checkCatalog(cat catalog.Catalog, catErr error) healthCheck {
	if catErr != nil {
		return healthCheck{Name: "Catalog", Status: "error", Summary: catErr.Error()}
	}

	enabled := len(cat.Enabled())
	summary := fmt.Sprintf("%d vendors, %d enabled", len(cat.Vendors), enabled)

	if _, err := installer.Order(cat.Enabled()); err != nil {
		return healthCheck{Name: "Catalog", Status: "error", Summary: err.Error()}
	}
	return healthCheck{Name: "Catalog", Status: "ok", Summary: summary}
}

// checkVendors cross-references the install manifest against the vendor
// directories actually on disk.
func checkVendors(p paths.InstallPaths, cat catalog.Catalog) healthCheck {
	manifest, err := installer.LoadManifest(p.ManifestFile)
	if err != nil {
		return healthCheck{Name: "Vendors", Status: "error", Summary: err.Error()}
	}

	enabled := cat.Enabled()
	var installed, pending, broken int
	for id, def := range enabled {
		entry, recorded := manifest.Entries[id]
		extractDir := def.ExtractDir
		if recorded {
			extractDir = entry.ExtractDir
		}

		onDisk := false
		if entries, err := os.ReadDir(p.VendorExtractDir(extractDir)); err == nil && len(entries) > 0 {
			onDisk = true
		}

		switch {
		case recorded && onDisk:
			installed++
		case recorded && !onDisk:
			// Manifest says installed but the payload is gone.
			broken++
		default:
			pending++
		}
	}

	summary := fmt.Sprintf("%d of %d installed", installed, len(enabled))
	if broken > 0 {
		return healthCheck{
			Name:    "Vendors",
			Status:  "error",
			Summary: fmt.Sprintf("%s; %d recorded but missing on disk", summary, broken),
		}
	}
	if pending > 0 {
		return healthCheck{
			Name:    "Vendors",
			Status:  "warning",
			Summary: fmt.Sprintf("%s; %d pending", summary, pending),
		}
	}
	return healthCheck{Name: "Vendors", Status: "ok", Summary: summary}
}

func checkLock(p paths.InstallPaths) healthCheck {
	lock, err := lockfile.Import(p.LockFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return healthCheck{Name: "Lock", Status: "warning", Summary: "no lock file; run naner lock export"}
		}
		return healthCheck{Name: "Lock", Status: "error", Summary: err.Error()}
	}

	checks, err := lockfile.ValidateHashes(p, lock)
	if err != nil {
		return healthCheck{Name: "Lock", Status: "error", Summary: err.Error()}
	}

	var hashed int
	for _, check := range checks {
		if check.Status == lockfile.CheckOK {
			hashed++
		}
	}
	return healthCheck{
		Name:    "Lock",
		Status:  "ok",
		Summary: fmt.Sprintf("%d vendors pinned, %d hashes verified", len(lock.Vendors), hashed),
	}
}

func writeDoctorResult(cmd *cobra.Command, root string, checks []healthCheck) error {
	if outputJSON {
		data, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("INSTALLATION HEALTH:")+" "+root)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = styleOK.Render("OK")
		case "warning":
			statusStr = styleWarn.Render("WARN")
		default:
			statusStr = styleFail.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-10s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}

	return nil
}
