// Package rewrite splices generated docstrings back into Python source,
// preserving indentation and surrounding formatting.
package rewrite

import (
	"fmt"
	"strings"

	"gopydoc/internal/extract"
)

// Splice returns a copy of source with the node's docstring replaced by
// doc, or inserted when the node has none. Offsets in the node refer to
// the original source, so when editing several nodes in one file the
// edits must be applied in descending position order.
func Splice(source []byte, n *extract.Node, doc string) ([]byte, error) {
	doc = strings.TrimSpace(doc)
	if doc == "" {
		return nil, fmt.Errorf("empty docstring for %s", n.QualifiedName)
	}

	if n.DocStart >= 0 {
		return replaceDocstring(source, n, doc)
	}
	return insertDocstring(source, n, doc)
}

func replaceDocstring(source []byte, n *extract.Node, doc string) ([]byte, error) {
	if n.DocStart >= len(source) || n.DocEnd > len(source) || n.DocStart >= n.DocEnd {
		return nil, fmt.Errorf("docstring span out of range for %s", n.QualifiedName)
	}
	indent := lineIndent(source, n.DocStart)
	block := formatDocstring(doc, indent)

	out := make([]byte, 0, len(source)+len(block))
	out = append(out, source[:n.DocStart]...)
	out = append(out, block...)
	out = append(out, source[n.DocEnd:]...)
	return out, nil
}

func insertDocstring(source []byte, n *extract.Node, doc string) ([]byte, error) {
	if n.BodyStart <= 0 || n.BodyStart > len(source) {
		return nil, fmt.Errorf("no body location for %s", n.QualifiedName)
	}

	lineStart := n.BodyStart
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	prefix := string(source[lineStart:n.BodyStart])

	if strings.TrimSpace(prefix) == "" {
		// Body starts on its own line; put the docstring on a line of
		// its own right above it, at the same indentation.
		indent := prefix
		block := indent + formatDocstring(doc, indent) + "\n"
		out := make([]byte, 0, len(source)+len(block))
		out = append(out, source[:lineStart]...)
		out = append(out, block...)
		out = append(out, source[lineStart:]...)
		return out, nil
	}

	// One-liner definition (`def f(): return 1`): break the body onto
	// the next line below the new docstring.
	defIndent := lineIndent(source, n.StartByte)
	indent := defIndent + "    "
	block := "\n" + indent + formatDocstring(doc, indent) + "\n" + indent
	out := make([]byte, 0, len(source)+len(block))
	out = append(out, source[:n.BodyStart]...)
	out = append(out, block...)
	out = append(out, source[n.BodyStart:]...)
	return out, nil
}

// formatDocstring renders doc as a triple-quoted literal. The first line
// carries no indent (it follows the insertion point); continuation lines
// and the closing quotes are indented.
func formatDocstring(doc string, indent string) string {
	lines := strings.Split(doc, "\n")
	if len(lines) == 1 {
		return `"""` + doc + `"""`
	}

	var b strings.Builder
	b.WriteString(`"""`)
	b.WriteString(lines[0])
	for _, line := range lines[1:] {
		b.WriteString("\n")
		if strings.TrimSpace(line) != "" {
			b.WriteString(indent)
			b.WriteString(line)
		}
	}
	b.WriteString("\n")
	b.WriteString(indent)
	b.WriteString(`"""`)
	return b.String()
}

// lineIndent returns the leading whitespace of the line containing the
// given byte offset.
func lineIndent(source []byte, offset int) string {
	start := offset
	for start > 0 && source[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(source) && (source[end] == ' ' || source[end] == '\t') {
		end++
	}
	return string(source[start:end])
}
