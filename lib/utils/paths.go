package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// PathAbs returns the absolute path, expanding a leading ~/ to the user home.
func PathAbs(path string) (string, error) {
	if strings.HasPrefix(filepath.ToSlash(path), "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		path = filepath.Join(home, path[2:])
	}

	return filepath.Abs(path)
}
