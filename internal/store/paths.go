package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDBName is the file name of the SQLite database inside the
// global .graphism directory.
const DefaultDBName = "graphism.db"

// GlobalGraphismPath returns the path to the global .graphism directory.
// On Unix: ~/.graphism
// On Windows: %USERPROFILE%\.graphism
func GlobalGraphismPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".graphism"), nil
}

// DefaultDBPath returns ~/.graphism/graphism.db.
func DefaultDBPath() (string, error) {
	dir, err := GlobalGraphismPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultDBName), nil
}
