package extract

import (
	"path/filepath"
	"strings"
)

// Kind classifies a documentable node.
type Kind string

const (
	KindClass    Kind = "class"
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
)

// Visibility is derived from Python underscore naming conventions.
// Dunder names (__x__) are public; name-mangled (__x) are private.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilitySemiprivate Visibility = "semiprivate"
	VisibilityPrivate     Visibility = "private"
)

// Node is a single documentable definition extracted from a source file.
// Nodes form a tree by lexical nesting via Parent; the flat list returned
// by the parser is in pre-order, so sibling spans are ordered and
// non-overlapping.
type Node struct {
	Name          string
	QualifiedName string // e.g. "sample.py:MyClass.my_method"
	Kind          Kind
	Depth         int // 0 for top-level definitions
	Visibility    Visibility
	Decorators    []string // decorator names without '@' or call arguments
	Magic         bool     // dunder method, __init__ excluded
	Async         bool
	Docstring     string // stripped; "" when the node has none
	Code          string // source text of the definition, docstring removed
	File          string

	StartLine int // 1-based, includes decorators
	EndLine   int

	// Byte offsets into the file content. DocStart/DocEnd delimit the
	// docstring string literal when present, otherwise both are -1.
	StartByte int
	EndByte   int
	DocStart  int
	DocEnd    int
	BodyStart int // first statement of the body

	Parent *Node
}

// Covered reports whether the node already carries a docstring.
func (n *Node) Covered() bool {
	return n.Docstring != ""
}

// NestedClass reports whether the node is a class defined inside another
// class or function.
func (n *Node) NestedClass() bool {
	return n.Kind == KindClass && n.Parent != nil
}

// NestedFunction reports whether the node is a function defined inside
// another function or method.
func (n *Node) NestedFunction() bool {
	if n.Kind != KindFunction && n.Kind != KindMethod {
		return false
	}
	return n.Parent != nil && (n.Parent.Kind == KindFunction || n.Parent.Kind == KindMethod)
}

// HasDecorator reports whether any decorator matches the given name
// exactly, or ends with "." + name (e.g. "setter" matches "foo.setter").
func (n *Node) HasDecorator(name string) bool {
	for _, dec := range n.Decorators {
		if dec == name || strings.HasSuffix(dec, "."+name) {
			return true
		}
	}
	return false
}

// InsideNestedClass reports whether any ancestor of the node is a nested
// class.
func (n *Node) InsideNestedClass() bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.NestedClass() {
			return true
		}
	}
	return false
}

func visibilityOf(name string) Visibility {
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return VisibilityPublic
	}
	if strings.HasPrefix(name, "__") {
		return VisibilityPrivate
	}
	if strings.HasPrefix(name, "_") {
		return VisibilitySemiprivate
	}
	return VisibilityPublic
}

func isMagic(name string) bool {
	return name != "__init__" &&
		strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") &&
		len(name) > 4
}

func qualify(parent *Node, file, name string) string {
	if parent == nil {
		return filepath.Base(file) + ":" + name
	}
	return parent.QualifiedName + "." + name
}
