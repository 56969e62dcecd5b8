// Package filter selects the subset of extracted nodes eligible for
// documentation. Every switch is an independent predicate; a node
// survives only if it passes all active predicates, so filtering is
// commutative, idempotent and monotonic.
package filter

import "gopydoc/internal/extract"

// Options mirrors the CLI ignore switches.
type Options struct {
	IgnoreMagic              bool
	IgnoreNestedClasses      bool
	IgnoreNestedFunctions    bool
	IgnoreOverloaded         bool
	IgnorePrivate            bool
	IgnorePropertyDecorators bool
	IgnoreSetters            bool
	IgnoreSemiprivate        bool
	IncludeOnlyCovered       bool
}

// Apply returns the ordered subsequence of nodes that pass every active
// predicate. The input slice is not modified.
func Apply(nodes []*extract.Node, opts Options) []*extract.Node {
	var kept []*extract.Node
	for _, n := range nodes {
		if Eligible(n, opts) {
			kept = append(kept, n)
		}
	}
	return kept
}

// Eligible reports whether a single node passes every active predicate.
func Eligible(n *extract.Node, opts Options) bool {
	if opts.IgnoreMagic && n.Magic {
		return false
	}
	if opts.IgnorePrivate && n.Visibility == extract.VisibilityPrivate {
		return false
	}
	if opts.IgnoreSemiprivate && n.Visibility == extract.VisibilitySemiprivate {
		return false
	}
	if opts.IgnoreNestedClasses && (n.NestedClass() || n.InsideNestedClass()) {
		return false
	}
	if opts.IgnoreNestedFunctions && n.NestedFunction() {
		return false
	}
	if opts.IgnorePropertyDecorators && hasPropertyDecorator(n) {
		return false
	}
	if opts.IgnoreSetters && n.HasDecorator("setter") {
		return false
	}
	if opts.IgnoreOverloaded && hasOverloadDecorator(n) {
		return false
	}
	if opts.IncludeOnlyCovered && !n.Covered() {
		return false
	}
	return true
}

func hasPropertyDecorator(n *extract.Node) bool {
	return n.HasDecorator("property") || n.HasDecorator("setter") || n.HasDecorator("deleter")
}

func hasOverloadDecorator(n *extract.Node) bool {
	for _, dec := range n.Decorators {
		if dec == "overload" || dec == "typing.overload" {
			return true
		}
	}
	return false
}
