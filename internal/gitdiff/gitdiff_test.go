package gitdiff

import (
	"path/filepath"
	"testing"

	"gopydoc/internal/extract"
)

const sampleDiff = `diff --git a/pkg/app.py b/pkg/app.py
index 1111111..2222222 100644
--- a/pkg/app.py
+++ b/pkg/app.py
@@ -10,2 +10,3 @@ def handler():
-    old = 1
+    new = 1
+    more = 2
@@ -40 +41 @@ class Thing:
-    x = 0
+    x = 1
diff --git a/pkg/new_module.py b/pkg/new_module.py
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/pkg/new_module.py
@@ -0,0 +1,5 @@
+def fresh():
+    pass
diff --git a/README.md b/README.md
index 4444444..5555555 100644
--- a/README.md
+++ b/README.md
@@ -1 +1 @@
-old
+new
diff --git a/pkg/gone.py b/pkg/gone.py
deleted file mode 100644
index 6666666..0000000
--- a/pkg/gone.py
+++ /dev/null
@@ -1,3 +0,0 @@
-def dead():
-    pass
diff --git a/pkg/trimmed.py b/pkg/trimmed.py
index 7777777..8888888 100644
--- a/pkg/trimmed.py
+++ b/pkg/trimmed.py
@@ -20,3 +19,0 @@ def shrunk():
-    a = 1
-    b = 2
-    c = 3
`

func TestParseDiff(t *testing.T) {
	root := string(filepath.Separator) + "repo"
	changes := parseDiff([]byte(sampleDiff), root)

	if len(changes) != 3 {
		t.Fatalf("got %d changed files, want 3: %v", len(changes), changes)
	}

	app := changes[filepath.Join(root, "pkg", "app.py")]
	if app == nil {
		t.Fatal("pkg/app.py missing from changes")
	}
	if app.New {
		t.Error("pkg/app.py is not a new file")
	}
	for _, line := range []int{10, 11, 12, 41} {
		if !app.Lines[line] {
			t.Errorf("line %d should be marked changed: %v", line, app.Lines)
		}
	}
	if app.Lines[40] {
		t.Error("line 40 belongs to the old side only")
	}

	fresh := changes[filepath.Join(root, "pkg", "new_module.py")]
	if fresh == nil {
		t.Fatal("pkg/new_module.py missing from changes")
	}
	if !fresh.New {
		t.Error("pkg/new_module.py should be marked new")
	}

	// Deletion-only hunks anchor on the new side.
	trimmed := changes[filepath.Join(root, "pkg", "trimmed.py")]
	if trimmed == nil {
		t.Fatal("pkg/trimmed.py missing from changes")
	}
	if !trimmed.Lines[19] {
		t.Errorf("deletion anchor line missing: %v", trimmed.Lines)
	}
}

func TestParseDiffIgnoresNonPython(t *testing.T) {
	root := "/repo"
	changes := parseDiff([]byte(sampleDiff), root)
	if _, ok := changes[filepath.Join(root, "README.md")]; ok {
		t.Error("README.md should not appear in changes")
	}
	if _, ok := changes[filepath.Join(root, "pkg", "gone.py")]; ok {
		t.Error("deleted files should not appear in changes")
	}
}

func TestParseDiffEmpty(t *testing.T) {
	if changes := parseDiff(nil, "/repo"); len(changes) != 0 {
		t.Errorf("empty diff should yield no changes, got %v", changes)
	}
}

func TestScope(t *testing.T) {
	root := string(filepath.Separator) + "repo"
	appPath := filepath.Join(root, "pkg", "app.py")
	newPath := filepath.Join(root, "pkg", "new_module.py")
	otherPath := filepath.Join(root, "pkg", "other.py")

	changes := Changes{
		appPath: {Path: appPath, Lines: map[int]bool{11: true}},
		newPath: {Path: newPath, New: true, Lines: map[int]bool{}},
	}

	touched := &extract.Node{QualifiedName: "app.py:handler", File: appPath, StartLine: 8, EndLine: 14}
	untouched := &extract.Node{QualifiedName: "app.py:helper", File: appPath, StartLine: 20, EndLine: 25}
	inNewFile := &extract.Node{QualifiedName: "new_module.py:fresh", File: newPath, StartLine: 100, EndLine: 101}
	elsewhere := &extract.Node{QualifiedName: "other.py:f", File: otherPath, StartLine: 1, EndLine: 5}

	kept := Scope([]*extract.Node{touched, untouched, inNewFile, elsewhere}, changes)
	if len(kept) != 2 {
		t.Fatalf("got %d nodes, want 2", len(kept))
	}
	if kept[0] != touched || kept[1] != inNewFile {
		t.Errorf("unexpected nodes kept: %v, %v", kept[0].QualifiedName, kept[1].QualifiedName)
	}
}

func TestScopeBoundaryLines(t *testing.T) {
	path := "/repo/a.py"
	changes := Changes{path: {Path: path, Lines: map[int]bool{10: true}}}

	endsOn := &extract.Node{File: path, StartLine: 5, EndLine: 10}
	startsOn := &extract.Node{File: path, StartLine: 10, EndLine: 20}
	justBefore := &extract.Node{File: path, StartLine: 5, EndLine: 9}
	justAfter := &extract.Node{File: path, StartLine: 11, EndLine: 20}

	kept := Scope([]*extract.Node{endsOn, startsOn, justBefore, justAfter}, changes)
	if len(kept) != 2 || kept[0] != endsOn || kept[1] != startsOn {
		t.Errorf("boundary handling wrong, kept %d nodes", len(kept))
	}
}
