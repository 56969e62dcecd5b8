package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Directories that never contain user code worth documenting.
var commonExclude = map[string]bool{
	".git":         true,
	".hg":          true,
	".tox":         true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"node_modules": true,
	".mypy_cache":  true,
	".ruff_cache":  true,
}

var validExtensions = []string{".py", ".pyi"}

// CollectFiles expands the given paths into the sorted list of Python
// files to process. Explicit file arguments must be Python files;
// directories are walked recursively with common junk dirs excluded.
// __init__.py files are skipped; they rarely hold documentable code.
func CollectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if !hasValidExtension(path) {
				return nil, fmt.Errorf("%s is not a Python file", path)
			}
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if commonExclude[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if !hasValidExtension(p) || filepath.Base(p) == "__init__.py" {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no Python files found in %s", strings.Join(paths, ", "))
	}
	sort.Strings(files)
	return files, nil
}

func hasValidExtension(path string) bool {
	for _, ext := range validExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
