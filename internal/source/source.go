package source

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed catalogue.txt
var defaultCatalogue string

// Default returns the built-in viewing log
func Default() string {
	return defaultCatalogue
}

// Load returns the canonical viewing log. An empty path selects the
// built-in log; otherwise the file at path is read.
func Load(path string) (string, error) {
	if path == "" {
		return defaultCatalogue, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}
	return string(data), nil
}
