package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the vidhi home directory.
const HomeEnv = "VIDHI_HOME"

// DefaultDir returns the vidhi home directory: $VIDHI_HOME when set,
// otherwise ~/.vidhi.
func DefaultDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".vidhi"), nil
}
