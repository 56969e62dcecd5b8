// Package config holds the run configuration, merged from CLI flags and
// the pyproject.toml [tool.gopydoc] table. Everything is validated
// before any file is parsed or any provider request is made.
package config

import (
	"fmt"
	"sort"
	"strings"

	"gopydoc/internal/filter"
)

// Config controls a documentation run.
type Config struct {
	Style        string
	Provider     string
	Model        string
	TargetBranch string

	IgnoreMagic              bool
	IgnoreNestedClasses      bool
	IgnoreNestedFunctions    bool
	IgnoreOverloaded         bool
	IgnorePrivate            bool
	IgnorePropertyDecorators bool
	IgnoreSetters            bool
	IgnoreSemiprivate        bool
	IncludeOnlyCovered       bool

	RunOnDiff bool
	RunStaged bool

	DryRun bool
	Jobs   int

	// Root is the resolved project root (.git or pyproject.toml anchor).
	Root string
}

// ValidStyles are the accepted docstring styles. "reST" is normalized to
// "rest" on input.
var ValidStyles = []string{"google", "numpy", "epytext", "rest"}

// SupportedModels lists the models accepted per provider; the first
// entry is the provider default.
var SupportedModels = map[string][]string{
	"openai":    {"gpt-5-nano", "gpt-4o", "gpt-4o-mini"},
	"anthropic": {"claude-sonnet-4-20250514", "claude-3-5-haiku-20241022"},
	"gemini":    {"gemini-2.5-flash", "gemini-2.5-pro"},
}

// Default returns the configuration used when no flags or pyproject
// table are present.
func Default() *Config {
	return &Config{
		Style:        "google",
		Provider:     "openai",
		TargetBranch: "main",
		Jobs:         4,
	}
}

// Validate checks every enumerated value and fails fast with a message
// naming the valid set.
func (c *Config) Validate() error {
	c.Style = normalizeStyle(c.Style)
	if !contains(ValidStyles, c.Style) {
		return fmt.Errorf("invalid docstring style %q (valid: %s)", c.Style, strings.Join(ValidStyles, ", "))
	}

	models, ok := SupportedModels[c.Provider]
	if !ok {
		return fmt.Errorf("invalid LLM provider %q (valid: %s)", c.Provider, strings.Join(providerNames(), ", "))
	}

	if c.Model == "" {
		c.Model = models[0]
	} else if !contains(models, c.Model) {
		return fmt.Errorf("model %q is not supported by provider %q (valid: %s)", c.Model, c.Provider, strings.Join(models, ", "))
	}

	if c.RunStaged && !c.RunOnDiff {
		return fmt.Errorf("--run-staged requires --run-on-diff")
	}

	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}

	return nil
}

// FilterOptions converts the configuration into node filter options.
func (c *Config) FilterOptions() filter.Options {
	return filter.Options{
		IgnoreMagic:              c.IgnoreMagic,
		IgnoreNestedClasses:      c.IgnoreNestedClasses,
		IgnoreNestedFunctions:    c.IgnoreNestedFunctions,
		IgnoreOverloaded:         c.IgnoreOverloaded,
		IgnorePrivate:            c.IgnorePrivate,
		IgnorePropertyDecorators: c.IgnorePropertyDecorators,
		IgnoreSetters:            c.IgnoreSetters,
		IgnoreSemiprivate:        c.IgnoreSemiprivate,
		IncludeOnlyCovered:       c.IncludeOnlyCovered,
	}
}

func normalizeStyle(style string) string {
	s := strings.ToLower(strings.TrimSpace(style))
	if s == "restructuredtext" {
		return "rest"
	}
	return s
}

func providerNames() []string {
	names := make([]string, 0, len(SupportedModels))
	for name := range SupportedModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
