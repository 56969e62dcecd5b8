package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"go.uber.org/zap"
)

// Parser extracts documentable nodes from Python source files using
// Tree-sitter.
type Parser struct {
	parser *sitter.Parser
	log    *zap.Logger
}

// NewParser creates a Python parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p, log: log}
}

// ParseFile reads and parses a single file.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]*Node, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Parse(ctx, path, content)
}

// Parse extracts the ordered node list from source content. The returned
// nodes are in pre-order; nesting is expressed through Parent links.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) ([]*Node, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("parse %s: source contains syntax errors", path)
	}

	var nodes []*Node
	p.walk(root, path, content, nil, 0, &nodes)
	p.log.Debug("parsed file", zap.String("file", path), zap.Int("nodes", len(nodes)))
	return nodes, nil
}

// walk recursively visits the AST collecting class and function
// definitions. spanNode carries the decorated_definition wrapper, if any,
// so that decorators count toward the node's span.
func (p *Parser) walk(ts *sitter.Node, path string, content []byte, parent *Node, depth int, out *[]*Node) {
	for i := 0; i < int(ts.NamedChildCount()); i++ {
		child := ts.NamedChild(i)
		switch child.Type() {
		case "class_definition", "function_definition":
			p.visitDefinition(child, child, nil, path, content, parent, depth, out)

		case "decorated_definition":
			def := child.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			decorators := collectDecorators(child, content)
			p.visitDefinition(def, child, decorators, path, content, parent, depth, out)

		default:
			// Definitions can hide inside if/try/with blocks.
			p.walk(child, path, content, parent, depth, out)
		}
	}
}

func (p *Parser) visitDefinition(def, span *sitter.Node, decorators []string, path string, content []byte, parent *Node, depth int, out *[]*Node) {
	node := p.buildNode(def, span, decorators, path, content, parent, depth)
	if node == nil {
		return
	}
	*out = append(*out, node)
	if body := def.ChildByFieldName("body"); body != nil {
		p.walk(body, path, content, node, depth+1, out)
	}
}

func (p *Parser) buildNode(def, span *sitter.Node, decorators []string, path string, content []byte, parent *Node, depth int) *Node {
	nameNode := def.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := string(content[nameNode.StartByte():nameNode.EndByte()])

	kind := KindFunction
	if def.Type() == "class_definition" {
		kind = KindClass
	} else if parent != nil && parent.Kind == KindClass {
		kind = KindMethod
	}

	node := &Node{
		Name:          name,
		QualifiedName: qualify(parent, path, name),
		Kind:          kind,
		Depth:         depth,
		Visibility:    visibilityOf(name),
		Decorators:    decorators,
		Magic:         kind != KindClass && isMagic(name),
		Async:         hasAsyncKeyword(def),
		File:          path,
		StartLine:     int(span.StartPoint().Row) + 1,
		EndLine:       int(span.EndPoint().Row) + 1,
		StartByte:     int(span.StartByte()),
		EndByte:       int(span.EndByte()),
		DocStart:      -1,
		DocEnd:        -1,
		Parent:        parent,
	}

	body := def.ChildByFieldName("body")
	if body != nil && body.NamedChildCount() > 0 {
		first := body.NamedChild(0)
		node.BodyStart = int(first.StartByte())
		if str := docstringLiteral(first); str != nil {
			node.DocStart = int(str.StartByte())
			node.DocEnd = int(str.EndByte())
			raw := string(content[str.StartByte():str.EndByte()])
			node.Docstring = stripQuotes(raw)
		}
	}

	node.Code = sanitizedCode(content, node)
	return node
}

// docstringLiteral returns the string node when the statement is a bare
// string expression, i.e. a docstring.
func docstringLiteral(stmt *sitter.Node) *sitter.Node {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return nil
	}
	expr := stmt.NamedChild(0)
	if expr.Type() != "string" {
		return nil
	}
	return expr
}

func hasAsyncKeyword(def *sitter.Node) bool {
	for i := 0; i < int(def.ChildCount()); i++ {
		if def.Child(i).Type() == "async" {
			return true
		}
	}
	return false
}

// collectDecorators extracts decorator names from a decorated_definition,
// without the leading '@' or call arguments.
func collectDecorators(wrapper *sitter.Node, content []byte) []string {
	var decorators []string
	for i := 0; i < int(wrapper.NamedChildCount()); i++ {
		child := wrapper.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}
		dec := string(content[child.StartByte():child.EndByte()])
		dec = strings.TrimPrefix(strings.TrimSpace(dec), "@")
		if idx := strings.Index(dec, "("); idx > 0 {
			dec = dec[:idx]
		}
		if dec != "" {
			decorators = append(decorators, dec)
		}
	}
	return decorators
}

// sanitizedCode returns the node's source segment with the docstring
// lines removed, matching what gets sent to the model.
func sanitizedCode(content []byte, n *Node) string {
	code := string(content[n.StartByte:n.EndByte])
	if n.DocStart < 0 {
		return code
	}
	// Remove from the start of the docstring's line through the end of
	// its last line, relative to the segment.
	start := n.DocStart
	for start > n.StartByte && content[start-1] != '\n' {
		start--
	}
	end := n.DocEnd
	for end < n.EndByte && content[end] != '\n' {
		end++
	}
	if end < n.EndByte {
		end++ // consume the trailing newline
	}
	return string(content[n.StartByte:start]) + string(content[end:n.EndByte])
}

// stripQuotes removes string prefixes (r, b, u, f) and the surrounding
// quotes from a Python string literal, then trims whitespace.
func stripQuotes(raw string) string {
	s := strings.TrimLeft(raw, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}
	return strings.TrimSpace(s)
}
