package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetXDGDataDir returns the XDG data directory for experimenter.
// It respects XDG_DATA_HOME if set, otherwise falls back to ~/.local/share/experimenter
func GetXDGDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "experimenter"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", "experimenter"), nil
}

// DefaultSnapshotPath is the recipe snapshot database inside the data directory.
func DefaultSnapshotPath() (string, error) {
	dir, err := GetXDGDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "recipes.db"), nil
}
