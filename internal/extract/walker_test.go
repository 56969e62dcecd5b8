package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("pass\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCollectFilesWalksDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"))
	writeFile(t, filepath.Join(dir, "pkg", "b.py"))
	writeFile(t, filepath.Join(dir, "pkg", "types.pyi"))
	writeFile(t, filepath.Join(dir, "pkg", "__init__.py"))
	writeFile(t, filepath.Join(dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, "__pycache__", "a.cpython-312.py"))
	writeFile(t, filepath.Join(dir, ".venv", "lib", "site.py"))

	files, err := CollectFiles([]string{dir})
	if err != nil {
		t.Fatalf("CollectFiles failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.py"),
		filepath.Join(dir, "pkg", "b.py"),
		filepath.Join(dir, "pkg", "types.pyi"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("file list mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectFilesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	py := filepath.Join(dir, "a.py")
	writeFile(t, py)

	files, err := CollectFiles([]string{py})
	if err != nil {
		t.Fatalf("CollectFiles failed: %v", err)
	}
	if len(files) != 1 || files[0] != py {
		t.Errorf("got %v", files)
	}
}

func TestCollectFilesRejectsNonPython(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, txt)

	_, err := CollectFiles([]string{txt})
	if err == nil || !strings.Contains(err.Error(), "not a Python file") {
		t.Errorf("expected a not-a-Python-file error, got %v", err)
	}
}

func TestCollectFilesEmptyDir(t *testing.T) {
	dir := t.TempDir()
	_, err := CollectFiles([]string{dir})
	if err == nil || !strings.Contains(err.Error(), "no Python files found") {
		t.Errorf("expected a no-files error, got %v", err)
	}
}

func TestCollectFilesMissingPath(t *testing.T) {
	if _, err := CollectFiles([]string{"/does/not/exist"}); err == nil {
		t.Error("expected an error for a missing path")
	}
}
