// Package documenter orchestrates a documentation run: collect files,
// extract and filter nodes, request docstrings, and splice the results
// back into the sources.
package documenter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gopydoc/internal/cache"
	"gopydoc/internal/config"
	"gopydoc/internal/extract"
	"gopydoc/internal/filter"
	"gopydoc/internal/gitdiff"
	"gopydoc/internal/prompt"
	"gopydoc/internal/provider"
	"gopydoc/internal/rewrite"
)

// NodeError records a provider failure for one node. The run continues
// for the remaining nodes.
type NodeError struct {
	Node string
	Err  error
}

// Report summarizes a run.
type Report struct {
	Files        int
	SkippedFiles []string
	Nodes        int
	Documented   int
	Kept         int
	CacheHits    int
	Failures     []NodeError
	DryRun       bool
	Duration     time.Duration
}

// Documenter glues the pipeline together according to the configuration.
type Documenter struct {
	cfg    *config.Config
	client provider.Client
	parser *extract.Parser
	store  *cache.Cache
	log    *zap.Logger
	stdout io.Writer
}

// New creates a Documenter. The cache may be nil.
func New(cfg *config.Config, client provider.Client, store *cache.Cache, log *zap.Logger, stdout io.Writer) *Documenter {
	if log == nil {
		log = zap.NewNop()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Documenter{
		cfg:    cfg,
		client: client,
		parser: extract.NewParser(log),
		store:  store,
		log:    log,
		stdout: stdout,
	}
}

// Run processes the given paths and returns a report. Parse errors skip
// the affected file; provider errors skip the affected node. Both are
// recorded in the report.
func (d *Documenter) Run(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()
	report := &Report{DryRun: d.cfg.DryRun}

	files, err := extract.CollectFiles(paths)
	if err != nil {
		return nil, err
	}

	var changes gitdiff.Changes
	if d.cfg.RunOnDiff {
		changes, err = gitdiff.ChangedLines(ctx, d.cfg.Root, d.cfg.TargetBranch, d.cfg.RunStaged)
		if err != nil {
			return nil, err
		}
		if len(changes) == 0 {
			d.log.Info("no changed Python files, nothing to document")
			report.Duration = time.Since(start)
			return report, nil
		}
	}

	opts := d.cfg.FilterOptions()
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}

		if err := d.processFile(ctx, abs, opts, changes, report); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			d.log.Warn("skipping file", zap.String("file", abs), zap.Error(err))
			report.SkippedFiles = append(report.SkippedFiles, abs)
		}
		report.Files++
	}

	report.Duration = time.Since(start)
	return report, nil
}

type nodeResult struct {
	doc    string
	cached bool
	keep   bool
	err    error
}

func (d *Documenter) processFile(ctx context.Context, path string, opts filter.Options, changes gitdiff.Changes, report *Report) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	nodes, err := d.parser.Parse(ctx, path, content)
	if err != nil {
		return err
	}

	eligible := filter.Apply(nodes, opts)
	if changes != nil {
		eligible = gitdiff.Scope(eligible, changes)
	}
	if len(eligible) == 0 {
		return nil
	}
	report.Nodes += len(eligible)

	results := d.requestAll(ctx, eligible)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Apply edits in descending position order so earlier byte offsets
	// stay valid.
	type edit struct {
		node *extract.Node
		doc  string
	}
	var edits []edit
	for i, n := range eligible {
		res := results[i]
		switch {
		case res.err != nil:
			report.Failures = append(report.Failures, NodeError{Node: n.QualifiedName, Err: res.err})
			d.log.Warn("docstring request failed", zap.String("node", n.QualifiedName), zap.Error(res.err))
		case res.keep:
			report.Kept++
		default:
			if res.cached {
				report.CacheHits++
			}
			edits = append(edits, edit{node: n, doc: res.doc})
		}
	}
	if len(edits) == 0 {
		return nil
	}

	sort.Slice(edits, func(i, j int) bool {
		return editPos(edits[i].node) > editPos(edits[j].node)
	})

	updated := content
	for _, e := range edits {
		updated, err = rewrite.Splice(updated, e.node, e.doc)
		if err != nil {
			return fmt.Errorf("splice %s: %w", e.node.QualifiedName, err)
		}
		report.Documented++
	}

	if d.cfg.DryRun {
		rel := relPath(d.cfg.Root, path)
		fmt.Fprint(d.stdout, rewrite.RenderDiff(rel, content, updated))
		return nil
	}
	if bytes.Equal(updated, content) {
		return nil
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, updated, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	d.log.Info("updated file", zap.String("file", path), zap.Int("docstrings", len(edits)))
	return nil
}

// requestAll fans out provider requests for the eligible nodes with
// bounded parallelism. Per-node failures land in the result slice, never
// abort the group.
func (d *Documenter) requestAll(ctx context.Context, nodes []*extract.Node) []nodeResult {
	results := make([]nodeResult, len(nodes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Jobs)
	for i, n := range nodes {
		g.Go(func() error {
			results[i] = d.requestOne(ctx, n)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Documenter) requestOne(ctx context.Context, n *extract.Node) nodeResult {
	key := cache.Key(n.Code, d.cfg.Style, d.cfg.Provider, d.cfg.Model)
	if doc, ok := d.store.Get(key); ok {
		d.log.Debug("cache hit", zap.String("node", n.QualifiedName))
		return nodeResult{doc: doc, cached: true}
	}

	response, err := d.client.Complete(ctx, prompt.System, prompt.Build(n, d.cfg.Style))
	if err != nil {
		return nodeResult{err: err}
	}

	if prompt.IsKeep(response) {
		return nodeResult{keep: true}
	}

	doc := prompt.Clean(response)
	if doc == "" {
		return nodeResult{err: fmt.Errorf("provider returned an empty docstring")}
	}
	d.store.Put(key, doc)
	return nodeResult{doc: doc}
}

func editPos(n *extract.Node) int {
	if n.DocStart >= 0 {
		return n.DocStart
	}
	return n.BodyStart
}

func relPath(root, path string) string {
	if root == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
