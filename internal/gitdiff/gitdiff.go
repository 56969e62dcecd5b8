// Package gitdiff restricts a documentation run to nodes touched by a
// version-control change set. It shells out to git and parses unified
// diff hunk headers into per-file changed-line sets.
package gitdiff

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopydoc/internal/extract"
)

var hunkRegex = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// FileChange records which lines of one file differ from the comparison
// target. New files match every node regardless of line numbers.
type FileChange struct {
	Path  string
	New   bool
	Lines map[int]bool
}

// Changes maps absolute file paths to their change sets.
type Changes map[string]*FileChange

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(ctx context.Context, dir string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// BranchExists reports whether the named branch exists in the repository.
func BranchExists(ctx context.Context, dir, branch string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	cmd.Dir = dir
	if cmd.Run() == nil {
		return true
	}
	// Remote-only branches still work as a diff target.
	cmd = exec.CommandContext(ctx, "git", "rev-parse", "--verify", "--quiet", "refs/remotes/origin/"+branch)
	cmd.Dir = dir
	return cmd.Run() == nil
}

// ChangedLines runs git diff against the target branch (or the index when
// staged is set) and returns the per-file changed-line sets for Python
// files. Paths in the result are absolute.
func ChangedLines(ctx context.Context, root, target string, staged bool) (Changes, error) {
	args := []string{"diff", "--unified=0", "--no-color"}
	if staged {
		args = append(args, "--cached")
	} else {
		args = append(args, target)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	return parseDiff(output, root), nil
}

// parseDiff walks unified diff output collecting hunk line ranges on the
// new side. Deletion-only hunks mark the line where the deletion landed
// so that surrounding definitions are still considered touched.
func parseDiff(output []byte, root string) Changes {
	changes := make(Changes)
	var current *FileChange
	pendingNew := false

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "diff --git "):
			current = nil
			pendingNew = false

		case strings.HasPrefix(line, "new file mode"):
			pendingNew = true

		case strings.HasPrefix(line, "+++ "):
			path := strings.TrimPrefix(line, "+++ ")
			if path == "/dev/null" {
				current = nil
				continue
			}
			path = strings.TrimPrefix(path, "b/")
			if !strings.HasSuffix(path, ".py") && !strings.HasSuffix(path, ".pyi") {
				current = nil
				continue
			}
			abs := filepath.Join(root, filepath.FromSlash(path))
			current = changes[abs]
			if current == nil {
				current = &FileChange{Path: abs, Lines: make(map[int]bool)}
				changes[abs] = current
			}
			if pendingNew {
				current.New = true
				pendingNew = false
			}

		case current != nil && strings.HasPrefix(line, "@@"):
			m := hunkRegex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			start, _ := strconv.Atoi(m[3])
			count := 1
			if m[4] != "" {
				count, _ = strconv.Atoi(m[4])
			}
			if count == 0 {
				// Pure deletion; the new side has no lines, mark the
				// anchor line instead.
				current.Lines[max(start, 1)] = true
				continue
			}
			for i := 0; i < count; i++ {
				current.Lines[start+i] = true
			}
		}
	}
	return changes
}

// Scope keeps the nodes whose span intersects a changed line of their
// file. Nodes in wholly-new files are all kept.
func Scope(nodes []*extract.Node, changes Changes) []*extract.Node {
	var kept []*extract.Node
	for _, n := range nodes {
		change, ok := changes[n.File]
		if !ok {
			continue
		}
		if change.New {
			kept = append(kept, n)
			continue
		}
		for line := n.StartLine; line <= n.EndLine; line++ {
			if change.Lines[line] {
				kept = append(kept, n)
				break
			}
		}
	}
	return kept
}
