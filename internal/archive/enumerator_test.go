package archive

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestEnumerateDirFiltersAndSkipsDirs(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "keep.txt"), "a")
	mustWriteFile(t, filepath.Join(root, "skip.log"), "b")
	if err := os.Mkdir(filepath.Join(root, "subdir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	mustWriteFile(t, filepath.Join(root, "subdir", "nested.txt"), "c")

	e := &Enumerator{Selector: regexp.MustCompile(`\.txt$`)}
	base, files, err := e.EnumerateDir(root)
	if err != nil {
		t.Fatalf("EnumerateDir: %v", err)
	}
	if base == "" {
		t.Fatalf("expected non-empty base dir")
	}

	var got []string
	for _, f := range files {
		got = append(got, f.Path)
	}
	for _, want := range []string{"keep.txt", "subdir/nested.txt"} {
		if !contains(got, want) {
			t.Errorf("expected %q among enumerated files, got %v", want, got)
		}
	}
	if contains(got, "skip.log") {
		t.Errorf("skip.log should have been filtered out")
	}
}

func TestEnumerateListSkipsBlankLines(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "f.txt")
	mustWriteFile(t, p, "x")

	e := &Enumerator{}
	files, err := e.EnumerateList(strings.NewReader(p + "\n\n"))
	if err != nil {
		t.Fatalf("EnumerateList: %v", err)
	}
	if len(files) != 1 || files[0].Path != p {
		t.Fatalf("got %v", files)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
