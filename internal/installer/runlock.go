package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AcquireRunLock takes the advisory lock that serializes orchestrator runs
// against one installation root. A second run fails fast instead of racing
// the manifest.
func AcquireRunLock(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prepare lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("another naner run holds %s; remove it if no run is active", path)
		}
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	fmt.Fprintf(f, "pid=%d started=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	_ = f.Close()

	return func() { _ = os.Remove(path) }, nil
}
