package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// pyprojectFile covers the slice of a pyproject.toml we care about; the
// rest of the document is ignored.
type pyprojectFile struct {
	Tool struct {
		Gopydoc map[string]any `toml:"gopydoc"`
	} `toml:"tool"`
}

// LoadPyproject applies the [tool.gopydoc] table from the given
// pyproject.toml onto cfg. Keys use kebab-case, matching the CLI flag
// names. Unknown keys are an error so typos fail fast.
func LoadPyproject(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var doc pyprojectFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	for key, value := range doc.Tool.Gopydoc {
		if err := applyKey(cfg, key, value); err != nil {
			return fmt.Errorf("%s: [tool.gopydoc] %w", path, err)
		}
	}
	return nil
}

func applyKey(cfg *Config, key string, value any) error {
	switch key {
	case "style":
		return setString(&cfg.Style, key, value)
	case "use-llm-provider":
		return setString(&cfg.Provider, key, value)
	case "use-model":
		return setString(&cfg.Model, key, value)
	case "target-branch":
		return setString(&cfg.TargetBranch, key, value)
	case "ignore-magic":
		return setBool(&cfg.IgnoreMagic, key, value)
	case "ignore-nested-classes":
		return setBool(&cfg.IgnoreNestedClasses, key, value)
	case "ignore-nested-functions":
		return setBool(&cfg.IgnoreNestedFunctions, key, value)
	case "ignore-overloaded-functions":
		return setBool(&cfg.IgnoreOverloaded, key, value)
	case "ignore-private":
		return setBool(&cfg.IgnorePrivate, key, value)
	case "ignore-property-decorators":
		return setBool(&cfg.IgnorePropertyDecorators, key, value)
	case "ignore-setters":
		return setBool(&cfg.IgnoreSetters, key, value)
	case "ignore-semiprivate":
		return setBool(&cfg.IgnoreSemiprivate, key, value)
	case "include-only-covered":
		return setBool(&cfg.IncludeOnlyCovered, key, value)
	case "run-on-diff":
		return setBool(&cfg.RunOnDiff, key, value)
	case "run-staged":
		return setBool(&cfg.RunStaged, key, value)
	case "dry-run":
		return setBool(&cfg.DryRun, key, value)
	case "jobs":
		return setInt(&cfg.Jobs, key, value)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
}

func setString(dst *string, key string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("key %q expects a string, got %T", key, value)
	}
	*dst = s
	return nil
}

func setBool(dst *bool, key string, value any) error {
	b, ok := value.(bool)
	if !ok {
		return fmt.Errorf("key %q expects a boolean, got %T", key, value)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string, value any) error {
	switch v := value.(type) {
	case int64:
		*dst = int(v)
	case int:
		*dst = v
	default:
		return fmt.Errorf("key %q expects an integer, got %T", key, value)
	}
	return nil
}

// FindProjectRoot walks up from the first path looking for a .git
// directory or a pyproject.toml. It falls back to the starting
// directory when neither is found.
func FindProjectRoot(paths []string) string {
	start := "."
	if len(paths) > 0 {
		start = paths[0]
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	dir := abs
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		if _, err := os.Stat(filepath.Join(dir, "pyproject.toml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		dir = parent
	}
}

// FindPyproject returns the project root's pyproject.toml if it exists.
func FindPyproject(root string) (string, bool) {
	path := filepath.Join(root, "pyproject.toml")
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path, true
	}
	return "", false
}
