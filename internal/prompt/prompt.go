// Package prompt builds the requests sent to the LLM for each
// documentable node and normalizes the responses.
package prompt

import (
	"fmt"
	"strings"

	"gopydoc/internal/extract"
)

// KeepSentinel is returned by the model when the existing docstring
// already reflects the code; such nodes are left untouched.
const KeepSentinel = "-1"

// System is the system prompt shared by all node requests.
const System = "You are a senior Python engineer writing precise, idiomatic docstrings."

// Build returns the user prompt for a node in the requested docstring
// style (google, numpy, epytext or rest).
func Build(n *extract.Node, style string) string {
	if n.Kind == extract.KindClass {
		return buildClass(n, style)
	}
	return buildFunction(n, style)
}

func buildClass(n *extract.Node, style string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following class between <code.start> and <code.end>:\n\n<code.start>\n%s\n<code.end>\n\n", n.Code)
	if n.Docstring != "" {
		fmt.Fprintf(&b, "This is the current docstring between <doc.start> and <doc.end>:\n\n<doc.start>\n%s\n<doc.end>\n\n", n.Docstring)
	}
	fmt.Fprintf(&b, "Analyze the purpose of the class and write a new docstring for %s (and only for %s).\n", n.Name, n.Name)
	fmt.Fprintf(&b, "The docstring must use %s style. Since this is a class, only describe its purpose and list its attributes.\n", style)
	b.WriteString("If the current docstring already correctly reflects the code, return -1. Otherwise return only the docstring text, without surrounding quotes.")
	return b.String()
}

func buildFunction(n *extract.Node, style string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following code block between <code.start> and <code.end>:\n\n<code.start>\n%s\n<code.end>\n\n", n.Code)
	if n.Docstring != "" {
		fmt.Fprintf(&b, "This is the current docstring between <doc.start> and <doc.end>:\n\n<doc.start>\n%s\n<doc.end>\n\n", n.Docstring)
	}
	fmt.Fprintf(&b, "Analyze the purpose of the code segment and write a new docstring for %s (and only for %s).\n", n.Name, n.Name)
	fmt.Fprintf(&b, "The docstring must use %s style. Describe the function, list its arguments with a short description, and explain any errors raised. Only document a return value when the function returns something other than None.\n", style)
	b.WriteString("If the current docstring already correctly reflects the code, return -1. Otherwise return only the docstring text, without surrounding quotes.")
	return b.String()
}

// IsKeep reports whether the response is the keep-existing sentinel.
func IsKeep(response string) bool {
	return strings.TrimSpace(response) == KeepSentinel
}

// Clean strips code fences and surrounding quotes that models sometimes
// wrap around the docstring despite instructions.
func Clean(response string) string {
	s := strings.TrimSpace(response)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```python")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}

	for _, q := range []string{`"""`, `'''`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = strings.TrimSpace(s[len(q) : len(s)-len(q)])
			break
		}
	}

	// Embedded triple quotes would break the spliced literal.
	s = strings.ReplaceAll(s, `"""`, `'''`)
	return s
}
