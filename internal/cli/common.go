package cli

import (
	"os"

	"github.com/baileyrd/naner-sub002/internal/catalog"
	"github.com/baileyrd/naner-sub002/internal/paths"
)

func resolvePaths() (paths.InstallPaths, error) {
	return paths.Resolve(rootDir)
}

// loadCatalog prefers an explicit --catalog flag, then the installation's
// config/vendors.json, then the built-in catalog.
func loadCatalog(p paths.InstallPaths) (catalog.Catalog, error) {
	if installCatalog != "" {
		return catalog.Load(installCatalog)
	}
	if _, err := os.Stat(p.CatalogFile); err == nil {
		return catalog.Load(p.CatalogFile)
	}
	return catalog.LoadDefault()
}
