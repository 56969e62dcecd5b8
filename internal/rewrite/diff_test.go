package rewrite

import (
	"strings"
	"testing"
)

func TestRenderDiffUnchanged(t *testing.T) {
	content := []byte("def f():\n    pass\n")
	if out := RenderDiff("a.py", content, content); out != "" {
		t.Errorf("identical content should render nothing, got:\n%s", out)
	}
}

func TestRenderDiffAddedDocstring(t *testing.T) {
	oldContent := []byte("def add(a, b):\n    return a + b\n")
	newContent := []byte("def add(a, b):\n    \"\"\"Add two numbers.\"\"\"\n    return a + b\n")

	out := RenderDiff("pkg/math.py", oldContent, newContent)

	if !strings.HasPrefix(out, "--- a/pkg/math.py\n+++ b/pkg/math.py\n") {
		t.Errorf("missing file header:\n%s", out)
	}
	if !strings.Contains(out, "+    \"\"\"Add two numbers.\"\"\"\n") {
		t.Errorf("missing added line:\n%s", out)
	}
	if strings.Contains(out, "-    return a + b") {
		t.Errorf("unchanged line rendered as removal:\n%s", out)
	}
	if !strings.Contains(out, "@@ ") {
		t.Errorf("missing hunk header:\n%s", out)
	}
}

func TestRenderDiffReplacedLine(t *testing.T) {
	oldContent := []byte("def f():\n    \"\"\"Old.\"\"\"\n    pass\n")
	newContent := []byte("def f():\n    \"\"\"New.\"\"\"\n    pass\n")

	out := RenderDiff("a.py", oldContent, newContent)
	if !strings.Contains(out, "-    \"\"\"Old.\"\"\"\n") {
		t.Errorf("missing removal:\n%s", out)
	}
	if !strings.Contains(out, "+    \"\"\"New.\"\"\"\n") {
		t.Errorf("missing addition:\n%s", out)
	}
}

func TestRenderDiffSeparatesDistantHunks(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 30; i++ {
		oldLines = append(oldLines, "line")
		newLines = append(newLines, "line")
	}
	newLines[0] = "changed first"
	newLines[29] = "changed last"

	out := RenderDiff("a.py",
		[]byte(strings.Join(oldLines, "\n")+"\n"),
		[]byte(strings.Join(newLines, "\n")+"\n"))

	if got := strings.Count(out, "@@ "); got != 2 {
		t.Errorf("want 2 hunks, got %d:\n%s", got, out)
	}
}
