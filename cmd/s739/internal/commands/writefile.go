package commands

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeFileAtomic writes data to path via a temp file in the same
// directory, synced and renamed into place, so a failing write never
// leaves a half-written carrier at the requested path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".s739-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		//nolint:errcheck // best-effort cleanup; no-op once the rename below succeeds
		os.Remove(tempPath)
	}()

	if _, err := tempFile.Write(data); err != nil {
		//nolint:errcheck // error path cleanup, primary error already captured
		tempFile.Close()
		return fmt.Errorf("failed to write carrier: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		//nolint:errcheck // error path cleanup, primary error already captured
		tempFile.Close()
		return fmt.Errorf("failed to sync carrier: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
