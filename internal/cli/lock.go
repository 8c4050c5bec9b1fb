package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/baileyrd/naner-sub002/internal/lockfile"
)

var (
	lockExportOutput string
	lockExportHashes bool
	lockImportCheck  bool
	lockImportBrief  bool
)

func newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Export or import the vendor lock file",
	}
	cmd.AddCommand(newLockExportCmd())
	cmd.AddCommand(newLockImportCmd())
	return cmd
}

func newLockExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Snapshot installed vendor versions to a lock file",
		RunE:  runLockExport,
	}
	cmd.Flags().StringVar(&lockExportOutput, "output", "", "Lock file path (default config/vendors.lock.json)")
	cmd.Flags().BoolVar(&lockExportHashes, "hashes", false, "Record SHA-256 of cached archives")
	return cmd
}

func runLockExport(cmd *cobra.Command, _ []string) error {
	env, err := newCommandEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	out := lockExportOutput
	if out == "" {
		out = env.Paths.LockFile
	}

	lock, err := lockfile.Export(env.Paths, out, lockExportHashes)
	if err != nil {
		return err
	}
	env.Logger.Printf("exported lock file %s with %d vendors", out, len(lock.Vendors))

	if outputJSON {
		data, err := json.MarshalIndent(lock, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Printf("wrote %s (%d vendors)\n", out, len(lock.Vendors))
	return nil
}

func newLockImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Validate a lock file against this installation",
		Args:  cobra.ExactArgs(1),
		RunE:  runLockImport,
	}
	cmd.Flags().BoolVar(&lockImportCheck, "validate", false, "Recompute and compare archive hashes")
	cmd.Flags().BoolVar(&lockImportBrief, "summary", true, "Print the per-vendor summary")
	return cmd
}

func runLockImport(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	lock, err := lockfile.Import(args[0])
	if err != nil {
		return err
	}
	env.Logger.Printf("imported lock file %s (%d vendors)", args[0], len(lock.Vendors))

	var checks []lockfile.Check
	if lockImportCheck {
		checks, err = lockfile.ValidateHashes(env.Paths, lock)
		if err != nil {
			return err
		}
	}

	if !lockImportBrief {
		return nil
	}

	if outputJSON {
		return printLockImportJSON(cmd, lock, checks)
	}

	ids := make([]string, 0, len(lock.Vendors))
	for id := range lock.Vendors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	status := make(map[string]lockfile.CheckStatus, len(checks))
	for _, check := range checks {
		status[check.VendorID] = check.Status
	}

	cmd.Printf("lock generated %s on %s/%s\n", lock.Generated, lock.Platform.OS, lock.Platform.Architecture)
	for _, id := range ids {
		vendor := lock.Vendors[id]
		line := fmt.Sprintf("%-18s %-14s %s", id, vendor.Version, vendor.FileName)
		if st, ok := status[id]; ok {
			line += " [" + string(st) + "]"
		}
		cmd.Println(line)
	}
	return nil
}

type lockImportDoc struct {
	Lock   lockfile.LockFile `json:"lock"`
	Checks []lockCheckDoc    `json:"checks,omitempty"`
}

type lockCheckDoc struct {
	VendorID string `json:"vendorId"`
	Status   string `json:"status"`
}

func printLockImportJSON(cmd *cobra.Command, lock lockfile.LockFile, checks []lockfile.Check) error {
	doc := lockImportDoc{Lock: lock}
	for _, check := range checks {
		doc.Checks = append(doc.Checks, lockCheckDoc{VendorID: check.VendorID, Status: string(check.Status)})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
