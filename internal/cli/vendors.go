package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/baileyrd/naner-sub002/internal/installer"
)

func newVendorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "Inspect the vendor catalog",
	}
	cmd.AddCommand(newVendorsListCmd())
	return cmd
}

func newVendorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog vendors and their install state",
		RunE:  runVendorsList,
	}
}

type vendorListingDoc struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Enabled      bool     `json:"enabled"`
	Required     bool     `json:"required"`
	Dependencies []string `json:"dependencies,omitempty"`
	SourceType   string   `json:"sourceType"`
	Installed    bool     `json:"installed"`
	Version      string   `json:"version,omitempty"`
}

func runVendorsList(cmd *cobra.Command, _ []string) error {
	env, err := newCommandEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	manifest, err := installer.LoadManifest(env.Paths.ManifestFile)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(env.Catalog.Vendors))
	for id := range env.Catalog.Vendors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	listings := make([]vendorListingDoc, 0, len(ids))
	for _, id := range ids {
		def := env.Catalog.Vendors[id]
		listing := vendorListingDoc{
			ID:           id,
			Name:         def.Name,
			Enabled:      def.Enabled,
			Required:     def.Required,
			Dependencies: def.Dependencies,
			SourceType:   string(def.Release.Type),
		}
		if entry, ok := manifest.Entries[id]; ok {
			listing.Installed = true
			listing.Version = entry.Version
		}
		listings = append(listings, listing)
	}

	if outputJSON {
		data, err := json.MarshalIndent(listings, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%-18s %-10s %-8s %-10s %-12s %s\n", "Vendor", "Source", "Enabled", "Required", "Installed", "Version")
	for _, l := range listings {
		installed := "no"
		if l.Installed {
			installed = "yes"
		}
		cmd.Printf("%-18s %-10s %-8v %-10v %-12s %s\n", l.ID, l.SourceType, l.Enabled, l.Required, installed, l.Version)
	}
	return nil
}
