package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gopydoc/internal/cache"
	"gopydoc/internal/config"
	"gopydoc/internal/documenter"
	"gopydoc/internal/gitdiff"
	"gopydoc/internal/logging"
	"gopydoc/internal/provider"
	"gopydoc/internal/report"
	"gopydoc/internal/watch"
)

var version = "dev"

var (
	verbose    bool
	configPath string

	flagStyle        string
	flagProvider     string
	flagModel        string
	flagTargetBranch string

	flagIgnoreMagic           bool
	flagIgnoreNestedClasses   bool
	flagIgnoreNestedFunctions bool
	flagIgnoreOverloaded      bool
	flagIgnorePrivate         bool
	flagIgnoreProperty        bool
	flagIgnoreSetters         bool
	flagIgnoreSemiprivate     bool
	flagIncludeOnlyCovered    bool

	flagRunOnDiff bool
	flagRunStaged bool
	flagDryRun    bool
	flagJobs      int
	flagNoCache   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gopydoc [paths...]",
	Short: "Generate and refresh Python docstrings with an LLM",
	Long: `gopydoc scans Python sources, extracts classes, functions and methods,
and asks an LLM provider to write or correct their docstrings.

Paths may be files or directories; directories are walked recursively.
Settings come from flags or the [tool.gopydoc] table in pyproject.toml,
with flags taking precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runDocument,
}

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-run documentation whenever a Python file changes",
	Long: `Watches the given paths (directories are watched recursively) and
re-runs the documentation pipeline for files as they are saved. Rapid
saves within the debounce window are folded into one run.`,
	RunE: runWatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gopydoc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gopydoc %s\n", version)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&configPath, "config", "c", "", "Path to a pyproject.toml (default: auto-detected at the project root)")

	pf.StringVar(&flagStyle, "style", "google", "Docstring style: google, numpy, epytext, rest")
	pf.StringVar(&flagProvider, "use-llm-provider", "openai", "LLM provider: openai, anthropic, gemini")
	pf.StringVar(&flagModel, "use-model", "", "Model name (default: provider's default model)")
	pf.StringVar(&flagTargetBranch, "target-branch", "main", "Branch to diff against with --run-on-diff")

	pf.BoolVarP(&flagIgnoreMagic, "ignore-magic", "m", false, "Skip magic methods (__eq__ etc., __init__ is never magic)")
	pf.BoolVarP(&flagIgnoreNestedClasses, "ignore-nested-classes", "C", false, "Skip classes nested inside other classes, and their methods")
	pf.BoolVarP(&flagIgnoreNestedFunctions, "ignore-nested-functions", "n", false, "Skip functions defined inside other functions")
	pf.BoolVarP(&flagIgnoreOverloaded, "ignore-overloaded-functions", "O", false, "Skip @typing.overload stubs")
	pf.BoolVarP(&flagIgnorePrivate, "ignore-private", "p", false, "Skip private nodes (leading double underscore)")
	pf.BoolVarP(&flagIgnoreProperty, "ignore-property-decorators", "P", false, "Skip @property, setter and deleter methods")
	pf.BoolVarP(&flagIgnoreSetters, "ignore-setters", "S", false, "Skip property setter methods")
	pf.BoolVarP(&flagIgnoreSemiprivate, "ignore-semiprivate", "s", false, "Skip semiprivate nodes (single leading underscore)")
	pf.BoolVarP(&flagIncludeOnlyCovered, "include-only-covered", "o", false, "Only touch nodes that already have a docstring")

	pf.BoolVarP(&flagRunOnDiff, "run-on-diff", "D", false, "Only consider nodes changed relative to the target branch")
	pf.BoolVarP(&flagRunStaged, "run-staged", "d", false, "With --run-on-diff, diff staged changes instead of a branch")
	pf.BoolVar(&flagDryRun, "dry-run", false, "Print unified diffs instead of rewriting files")
	pf.IntVarP(&flagJobs, "jobs", "j", 4, "Maximum concurrent provider requests")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Bypass the docstring cache")

	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "Quiet period before a batch of changes triggers a run")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig merges defaults, the pyproject table and any flags the
// user set on the command line, in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.Default()

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	cfg.Root = config.FindProjectRoot(paths)

	tomlPath := configPath
	if tomlPath == "" {
		if found, ok := config.FindPyproject(cfg.Root); ok {
			tomlPath = found
		}
	}
	if tomlPath != "" {
		if err := config.LoadPyproject(tomlPath, cfg); err != nil {
			return nil, err
		}
		logger.Debug("loaded pyproject config", zap.String("path", tomlPath))
	}

	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overlays only the flags the user actually set, so the
// pyproject table keeps its say for the rest.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	set("style", func() { cfg.Style = flagStyle })
	set("use-llm-provider", func() { cfg.Provider = flagProvider })
	set("use-model", func() { cfg.Model = flagModel })
	set("target-branch", func() { cfg.TargetBranch = flagTargetBranch })

	set("ignore-magic", func() { cfg.IgnoreMagic = flagIgnoreMagic })
	set("ignore-nested-classes", func() { cfg.IgnoreNestedClasses = flagIgnoreNestedClasses })
	set("ignore-nested-functions", func() { cfg.IgnoreNestedFunctions = flagIgnoreNestedFunctions })
	set("ignore-overloaded-functions", func() { cfg.IgnoreOverloaded = flagIgnoreOverloaded })
	set("ignore-private", func() { cfg.IgnorePrivate = flagIgnorePrivate })
	set("ignore-property-decorators", func() { cfg.IgnorePropertyDecorators = flagIgnoreProperty })
	set("ignore-setters", func() { cfg.IgnoreSetters = flagIgnoreSetters })
	set("ignore-semiprivate", func() { cfg.IgnoreSemiprivate = flagIgnoreSemiprivate })
	set("include-only-covered", func() { cfg.IncludeOnlyCovered = flagIncludeOnlyCovered })

	set("run-on-diff", func() { cfg.RunOnDiff = flagRunOnDiff })
	set("run-staged", func() { cfg.RunStaged = flagRunStaged })
	set("dry-run", func() { cfg.DryRun = flagDryRun })
	set("jobs", func() { cfg.Jobs = flagJobs })
}

// newDocumenter wires a ready-to-run pipeline from the configuration.
func newDocumenter(ctx context.Context, cfg *config.Config) (*documenter.Documenter, func(), error) {
	client, err := provider.New(ctx, cfg.Provider, cfg.Model)
	if err != nil {
		return nil, nil, err
	}

	var store *cache.Cache
	if !flagNoCache {
		store, err = cache.Open(filepath.Join(cfg.Root, ".gopydoc", "cache.db"), logger)
		if err != nil {
			logger.Warn("cache unavailable, continuing without it", zap.Error(err))
			store = nil
		}
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Debug("cache close failed", zap.Error(err))
		}
	}
	return documenter.New(cfg, client, store, logger, os.Stdout), cleanup, nil
}

func checkGit(ctx context.Context, cfg *config.Config) error {
	if !cfg.RunOnDiff {
		return nil
	}
	if !gitdiff.IsRepo(ctx, cfg.Root) {
		return fmt.Errorf("--run-on-diff requires a git repository at %s", cfg.Root)
	}
	if !cfg.RunStaged && !gitdiff.BranchExists(ctx, cfg.Root, cfg.TargetBranch) {
		return fmt.Errorf("target branch %q not found in %s", cfg.TargetBranch, cfg.Root)
	}
	return nil
}

func runDocument(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := checkGit(ctx, cfg); err != nil {
		return err
	}

	doc, cleanup, err := newDocumenter(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	rep, err := doc.Run(ctx, paths)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, report.Render(rep))
	if n := len(rep.Failures); n > 0 {
		return fmt.Errorf("%d docstring request(s) failed", n)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := checkGit(ctx, cfg); err != nil {
		return err
	}

	doc, cleanup, err := newDocumenter(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")

	w, err := watch.New(paths, debounce, logger, func(ctx context.Context, files []string) error {
		rep, err := doc.Run(ctx, files)
		if err != nil {
			return err
		}
		fmt.Fprint(os.Stdout, report.Render(rep))
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "watching %d path(s), press Ctrl-C to stop\n", len(paths))
	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
