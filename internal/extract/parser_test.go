package extract

import (
	"context"
	"strings"
	"testing"
)

const sampleSource = `import typing


def top_level(a, b):
    """Add two numbers."""
    return a + b


async def fetch(url):
    return url


class Greeter:
    """Says hello."""

    def __init__(self, name):
        self.name = name

    def __eq__(self, other):
        return self.name == other.name

    def _helper(self):
        pass

    def __secret(self):
        pass

    @property
    def name_upper(self):
        return self.name.upper()

    @name_upper.setter
    def name_upper(self, value):
        self.name = value.lower()

    class Inner:
        def inner_method(self):
            pass


def outer():
    def inner():
        pass
    return inner
`

func parseSample(t *testing.T, source string) []*Node {
	t.Helper()
	p := NewParser(nil)
	nodes, err := p.Parse(context.Background(), "sample.py", []byte(source))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return nodes
}

func findNode(t *testing.T, nodes []*Node, qualified string) *Node {
	t.Helper()
	for _, n := range nodes {
		if n.QualifiedName == qualified {
			return n
		}
	}
	t.Fatalf("node %q not found; have %v", qualified, names(nodes))
	return nil
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.QualifiedName
	}
	return out
}

func TestParseExtractsAllDefinitions(t *testing.T) {
	nodes := parseSample(t, sampleSource)

	want := []string{
		"sample.py:top_level",
		"sample.py:fetch",
		"sample.py:Greeter",
		"sample.py:Greeter.__init__",
		"sample.py:Greeter.__eq__",
		"sample.py:Greeter._helper",
		"sample.py:Greeter.__secret",
		"sample.py:Greeter.name_upper",
		"sample.py:Greeter.name_upper",
		"sample.py:Greeter.Inner",
		"sample.py:Greeter.Inner.inner_method",
		"sample.py:outer",
		"sample.py:outer.inner",
	}
	if len(nodes) != len(want) {
		t.Fatalf("got %d nodes, want %d: %v", len(nodes), len(want), names(nodes))
	}
	for i, q := range want {
		if nodes[i].QualifiedName != q {
			t.Errorf("node %d: got %q, want %q", i, nodes[i].QualifiedName, q)
		}
	}
}

func TestParseKinds(t *testing.T) {
	nodes := parseSample(t, sampleSource)

	if n := findNode(t, nodes, "sample.py:top_level"); n.Kind != KindFunction {
		t.Errorf("top_level: got kind %q, want function", n.Kind)
	}
	if n := findNode(t, nodes, "sample.py:Greeter"); n.Kind != KindClass {
		t.Errorf("Greeter: got kind %q, want class", n.Kind)
	}
	if n := findNode(t, nodes, "sample.py:Greeter.__init__"); n.Kind != KindMethod {
		t.Errorf("__init__: got kind %q, want method", n.Kind)
	}
	if n := findNode(t, nodes, "sample.py:outer.inner"); n.Kind != KindFunction {
		t.Errorf("outer.inner: got kind %q, want function", n.Kind)
	}
}

func TestParseDocstrings(t *testing.T) {
	nodes := parseSample(t, sampleSource)

	top := findNode(t, nodes, "sample.py:top_level")
	if top.Docstring != "Add two numbers." {
		t.Errorf("top_level docstring: got %q", top.Docstring)
	}
	if !top.Covered() {
		t.Error("top_level should be covered")
	}
	if top.DocStart < 0 || top.DocEnd <= top.DocStart {
		t.Errorf("top_level docstring span: [%d, %d)", top.DocStart, top.DocEnd)
	}
	if strings.Contains(top.Code, "Add two numbers.") {
		t.Errorf("Code should not contain the docstring: %q", top.Code)
	}

	fetch := findNode(t, nodes, "sample.py:fetch")
	if fetch.Covered() {
		t.Error("fetch should not be covered")
	}
	if fetch.DocStart != -1 || fetch.DocEnd != -1 {
		t.Errorf("fetch docstring span should be -1, got [%d, %d)", fetch.DocStart, fetch.DocEnd)
	}
	if fetch.BodyStart <= 0 {
		t.Errorf("fetch BodyStart: %d", fetch.BodyStart)
	}
}

func TestParseVisibilityAndMagic(t *testing.T) {
	nodes := parseSample(t, sampleSource)

	cases := []struct {
		name  string
		vis   Visibility
		magic bool
	}{
		{"sample.py:Greeter.__init__", VisibilityPublic, false},
		{"sample.py:Greeter.__eq__", VisibilityPublic, true},
		{"sample.py:Greeter._helper", VisibilitySemiprivate, false},
		{"sample.py:Greeter.__secret", VisibilityPrivate, false},
		{"sample.py:top_level", VisibilityPublic, false},
	}
	for _, tc := range cases {
		n := findNode(t, nodes, tc.name)
		if n.Visibility != tc.vis {
			t.Errorf("%s: got visibility %q, want %q", tc.name, n.Visibility, tc.vis)
		}
		if n.Magic != tc.magic {
			t.Errorf("%s: got magic %v, want %v", tc.name, n.Magic, tc.magic)
		}
	}
}

func TestParseDecorators(t *testing.T) {
	nodes := parseSample(t, sampleSource)

	var getter, setter *Node
	for _, n := range nodes {
		if n.Name == "name_upper" {
			if getter == nil {
				getter = n
			} else {
				setter = n
			}
		}
	}
	if getter == nil || setter == nil {
		t.Fatal("property pair not found")
	}
	if !getter.HasDecorator("property") {
		t.Errorf("getter decorators: %v", getter.Decorators)
	}
	if !setter.HasDecorator("setter") {
		t.Errorf("setter decorators: %v", setter.Decorators)
	}
}

func TestParseDecoratorSpanAndArgs(t *testing.T) {
	source := "@app.route(\"/\")\ndef index():\n    pass\n"
	nodes := parseSample(t, source)
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	n := nodes[0]
	if n.StartLine != 1 {
		t.Errorf("StartLine should include the decorator, got %d", n.StartLine)
	}
	if len(n.Decorators) != 1 || n.Decorators[0] != "app.route" {
		t.Errorf("decorators: %v", n.Decorators)
	}
	if !strings.HasPrefix(n.Code, "@app.route") {
		t.Errorf("code should include the decorator: %q", n.Code)
	}
}

func TestParseNesting(t *testing.T) {
	nodes := parseSample(t, sampleSource)

	inner := findNode(t, nodes, "sample.py:Greeter.Inner")
	if !inner.NestedClass() {
		t.Error("Inner should be a nested class")
	}
	innerMethod := findNode(t, nodes, "sample.py:Greeter.Inner.inner_method")
	if !innerMethod.InsideNestedClass() {
		t.Error("inner_method should be inside a nested class")
	}
	nestedFn := findNode(t, nodes, "sample.py:outer.inner")
	if !nestedFn.NestedFunction() {
		t.Error("outer.inner should be a nested function")
	}
	if m := findNode(t, nodes, "sample.py:Greeter.__init__"); m.NestedFunction() {
		t.Error("a plain method is not a nested function")
	}
}

func TestParseAsync(t *testing.T) {
	nodes := parseSample(t, sampleSource)
	if n := findNode(t, nodes, "sample.py:fetch"); !n.Async {
		t.Error("fetch should be async")
	}
	if n := findNode(t, nodes, "sample.py:top_level"); n.Async {
		t.Error("top_level should not be async")
	}
}

func TestParseDefinitionsInsideCompoundStatements(t *testing.T) {
	source := `if True:
    def conditional():
        pass

try:
    class Guarded:
        pass
except ImportError:
    pass
`
	nodes := parseSample(t, source)
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes: %v", len(nodes), names(nodes))
	}
	if nodes[0].Name != "conditional" || nodes[1].Name != "Guarded" {
		t.Errorf("unexpected nodes: %v", names(nodes))
	}
	// Definitions inside compound statements are still top level.
	if nodes[0].Parent != nil || nodes[1].Parent != nil {
		t.Error("compound statements should not create parent links")
	}
}

func TestParseSyntaxError(t *testing.T) {
	p := NewParser(nil)
	_, err := p.Parse(context.Background(), "broken.py", []byte("def broken(:\n"))
	if err == nil {
		t.Fatal("expected an error for broken source")
	}
	if !strings.Contains(err.Error(), "syntax errors") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStripQuotes(t *testing.T) {
	cases := []struct {
		raw, want string
	}{
		{`"""Triple double."""`, "Triple double."},
		{`'''Triple single.'''`, "Triple single."},
		{`"Plain."`, "Plain."},
		{`r"""Raw doc."""`, "Raw doc."},
		{"\"\"\"\n    Leading newline.\n    \"\"\"", "Leading newline."},
	}
	for _, tc := range cases {
		if got := stripQuotes(tc.raw); got != tc.want {
			t.Errorf("stripQuotes(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
