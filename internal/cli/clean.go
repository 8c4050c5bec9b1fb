package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cleanDryRun bool

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove derived artifacts from the installation",
	}

	cmd.PersistentFlags().BoolVar(&cleanDryRun, "dry-run", false, "List what would be removed without deleting")

	cmd.AddCommand(newCleanDownloadsCmd())
	cmd.AddCommand(newCleanLogsCmd())
	cmd.AddCommand(newCleanAllCmd())

	return cmd
}

func newCleanDownloadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "downloads",
		Short: "Remove cached vendor archives",
		RunE:  runCleanDownloads,
	}
}

func newCleanLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Remove all log files",
		RunE:  runCleanLogs,
	}
}

func newCleanAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Remove cached archives and logs",
		RunE:  runCleanAll,
	}
}

type cleanResult struct {
	Removed    int   `json:"removed"`
	FreedBytes int64 `json:"freedBytes"`
	Skipped    int   `json:"skipped"`
	DryRun     bool  `json:"dryRun"`
}

func runCleanDownloads(cmd *cobra.Command, _ []string) error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	removeDirFiles(p.DownloadsDir, out, &result)
	return writeCleanResult(out, "downloads", result)
}

func runCleanLogs(cmd *cobra.Command, _ []string) error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	removeDirFiles(p.LogsDir, out, &result)
	return writeCleanResult(out, "logs", result)
}

func runCleanAll(cmd *cobra.Command, _ []string) error {
	p, err := resolvePaths()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	result := cleanResult{DryRun: cleanDryRun}
	removeDirFiles(p.DownloadsDir, out, &result)
	removeDirFiles(p.LogsDir, out, &result)
	return writeCleanResult(out, "all", result)
}

// removeDirFiles removes every regular file directly under dir. Partial
// downloads count as files; subdirectories are left alone.
func removeDirFiles(dir string, out io.Writer, result *cleanResult) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		removeFileEntry(filepath.Join(dir, name), out, result)
	}
}

func removeFileEntry(path string, out io.Writer, result *cleanResult) {
	info, err := os.Stat(path)
	if err != nil {
		result.Skipped++
		return
	}
	size := info.Size()

	if cleanDryRun {
		fmt.Fprintf(out, "would remove %s (%s)\n", path, humanize.Bytes(uint64(size)))
		result.Removed++
		result.FreedBytes += size
		return
	}

	if err := os.Remove(path); err != nil {
		if !outputJSON {
			fmt.Fprintf(out, "error removing %s: %v\n", path, err)
		}
		result.Skipped++
		return
	}

	result.Removed++
	result.FreedBytes += size
	if !outputJSON {
		fmt.Fprintf(out, "removed %s (%s)\n", path, humanize.Bytes(uint64(size)))
	}
}

func writeCleanResult(out io.Writer, label string, result cleanResult) error {
	if outputJSON {
		return json.NewEncoder(out).Encode(result)
	}

	action := "complete"
	if result.DryRun {
		action = "(dry run)"
	}
	fmt.Fprintf(out, "\nClean %s %s: %d removed, %s freed, %d skipped\n",
		label, action, result.Removed, humanize.Bytes(uint64(result.FreedBytes)), result.Skipped)
	return nil
}
