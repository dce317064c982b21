package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/plenar/internal/tree"
)

// ListJSONFiles returns the paths of the *.json files directly inside
// dir, sorted by name. Subdirectories are not descended into. A missing
// or unreadable directory is an error.
func ListJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// readDocument reads and parses one export file and lowercases its
// field names.
func readDocument(path string) (tree.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	doc, err := tree.Parse(data)
	if err != nil {
		return nil, err
	}
	return tree.Normalize(doc), nil
}
