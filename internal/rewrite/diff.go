package rewrite

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type opType int

const (
	opContext opType = iota
	opAdd
	opRemove
)

type lineOp struct {
	typ     opType
	oldLine int // 1-based, -1 for additions
	newLine int // 1-based, -1 for removals
	content string
}

const contextLines = 3

// RenderDiff produces a unified diff between the old and new content of
// a file, for --dry-run output.
func RenderDiff(path string, oldContent, newContent []byte) string {
	ops := computeOps(string(oldContent), string(newContent))

	changed := false
	for _, op := range ops {
		if op.typ != opContext {
			changed = true
			break
		}
	}
	if !changed {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n", path, path)
	for _, hunk := range groupHunks(ops) {
		first, last := hunk[0], hunk[len(hunk)-1]
		oldStart, newStart := first.oldLine, first.newLine
		if oldStart < 0 {
			oldStart = last.oldLine
		}
		if newStart < 0 {
			newStart = last.newLine
		}
		if oldStart < 0 {
			oldStart = 0
		}
		if newStart < 0 {
			newStart = 0
		}
		var oldCount, newCount int
		for _, op := range hunk {
			if op.typ != opAdd {
				oldCount++
			}
			if op.typ != opRemove {
				newCount++
			}
		}
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
		for _, op := range hunk {
			switch op.typ {
			case opAdd:
				b.WriteString("+")
			case opRemove:
				b.WriteString("-")
			default:
				b.WriteString(" ")
			}
			b.WriteString(op.content)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// computeOps diffs at line granularity using the line-to-char reduction,
// which avoids newline boundary artifacts.
func computeOps(oldContent, newContent string) []lineOp {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var ops []lineOp
	oldLine, newLine := 1, 1
	for _, diff := range diffs {
		lines := strings.Split(diff.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			switch diff.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, lineOp{opContext, oldLine, newLine, line})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, lineOp{opRemove, oldLine, -1, line})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, lineOp{opAdd, -1, newLine, line})
				newLine++
			}
		}
	}
	return ops
}

// groupHunks splits the op stream into hunks of changes surrounded by up
// to contextLines of unchanged lines.
func groupHunks(ops []lineOp) [][]lineOp {
	var changeIdx []int
	for i, op := range ops {
		if op.typ != opContext {
			changeIdx = append(changeIdx, i)
		}
	}
	if len(changeIdx) == 0 {
		return nil
	}

	var hunks [][]lineOp
	start := changeIdx[0] - contextLines
	if start < 0 {
		start = 0
	}
	end := changeIdx[0]

	flush := func(from, to int) {
		if to > len(ops) {
			to = len(ops)
		}
		hunk := make([]lineOp, to-from)
		copy(hunk, ops[from:to])
		hunks = append(hunks, hunk)
	}

	for _, idx := range changeIdx[1:] {
		if idx-end > 2*contextLines {
			flush(start, end+contextLines+1)
			start = idx - contextLines
		}
		end = idx
	}
	flush(start, end+contextLines+1)
	return hunks
}
