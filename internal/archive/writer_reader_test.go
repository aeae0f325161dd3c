package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"golang.org/x/crypto/blake2b"
)

func checksumOf(t *testing.T, data []byte) Checksum {
	t.Helper()
	h, err := blake2b.New512(nil)
	if err != nil {
		t.Fatalf("blake2b: %v", err)
	}
	h.Write(data)
	var c Checksum
	copy(c[:], h.Sum(nil))
	return c
}

func TestWriterReaderRoundtrip(t *testing.T) {
	srcDir := t.TempDir()
	bodyA := []byte("hello, world")
	bodyB := []byte("a different, longer body of bytes for file b")

	mustWrite := func(name string, data []byte) {
		if err := os.WriteFile(filepath.Join(srcDir, name), data, 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}
	mustWrite("a.txt", bodyA)
	mustWrite("b.txt", bodyB)
	mustWrite("a-copy.txt", bodyA) // duplicate of a.txt

	files := []*File{
		{Path: "a.txt", Size: uint64(len(bodyA)), Checksum: checksumOf(t, bodyA), Similarity: make(Digest, TLSHDigestLen)},
		{Path: "b.txt", Size: uint64(len(bodyB)), Checksum: checksumOf(t, bodyB), Similarity: make(Digest, TLSHDigestLen)},
		{Path: "a-copy.txt", Size: uint64(len(bodyA)), Checksum: checksumOf(t, bodyA), Similarity: make(Digest, TLSHDigestLen)},
	}
	bodySize := AssignOffsets(files)
	if bodySize != uint64(len(bodyA)+len(bodyB)) {
		t.Fatalf("expected dedup to skip a-copy.txt, got body size %d", bodySize)
	}

	w := &Writer{BaseDir: srcDir}
	var archive bytes.Buffer
	if err := w.Write(&archive, files); err != nil {
		t.Fatalf("Write: %v", err)
	}

	readFiles, err := ReadMetadata(&archive)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if len(readFiles) != 3 {
		t.Fatalf("got %d records, want 3", len(readFiles))
	}

	destDir := t.TempDir()
	if err := Extract(&archive, readFiles, ExtractOptions{Dest: destDir}); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	for name, want := range map[string][]byte{
		"a.txt":      bodyA,
		"b.txt":      bodyB,
		"a-copy.txt": bodyA,
	} {
		got, err := os.ReadFile(filepath.Join(destDir, name))
		if err != nil {
			t.Fatalf("read extracted %s: %v", name, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("extracted %s mismatch: got %q, want %q", name, got, want)
		}
	}
}

func TestReaderRejectsBadMagic(t *testing.T) {
	_, err := ReadMetadata(bytes.NewReader([]byte("NOTIT")))
	if err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

// A rewrite rule that changes a path's byte length must not desync
// metadata_size from the bytes actually written: every record after the
// lengthened one would otherwise be misread.
func TestWriterRewriteChangesPathLength(t *testing.T) {
	srcDir := t.TempDir()
	bodyA := []byte("hello, world")
	bodyB := []byte("a different, longer body of bytes for file b")

	for name, data := range map[string][]byte{"a.txt": bodyA, "b.txt": bodyB} {
		if err := os.WriteFile(filepath.Join(srcDir, name), data, 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
	}

	files := []*File{
		{Path: "a.txt", Size: uint64(len(bodyA)), Checksum: checksumOf(t, bodyA), Similarity: make(Digest, TLSHDigestLen)},
		{Path: "b.txt", Size: uint64(len(bodyB)), Checksum: checksumOf(t, bodyB), Similarity: make(Digest, TLSHDigestLen)},
	}
	AssignOffsets(files)

	w := &Writer{
		BaseDir: srcDir,
		Rewrite: &Rewrite{Pattern: regexp.MustCompile(`\.txt$`), Replacement: "-renamed-with-a-much-longer-suffix.txt"},
	}
	var buf bytes.Buffer
	if err := w.Write(&buf, files); err != nil {
		t.Fatalf("Write: %v", err)
	}

	readFiles, err := ReadMetadata(&buf)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if len(readFiles) != 2 {
		t.Fatalf("got %d records, want 2", len(readFiles))
	}
	for _, f := range readFiles {
		if filepath.Ext(f.Path) == ".txt" && f.Path == "a.txt" {
			t.Fatalf("expected rewritten path, got unrewritten %q", f.Path)
		}
	}

	destDir := t.TempDir()
	if err := Extract(&buf, readFiles, ExtractOptions{Dest: destDir}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
}

func TestWriterRejectsRewriteThatEscapes(t *testing.T) {
	srcDir := t.TempDir()
	body := []byte("x")
	if err := os.WriteFile(filepath.Join(srcDir, "a.txt"), body, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	files := []*File{
		{Path: "a.txt", Size: uint64(len(body)), Checksum: checksumOf(t, body), Similarity: make(Digest, TLSHDigestLen)},
	}
	AssignOffsets(files)

	w := &Writer{
		BaseDir: srcDir,
		Rewrite: &Rewrite{Pattern: regexp.MustCompile(`^a\.txt$`), Replacement: "../escape.txt"},
	}
	var buf bytes.Buffer
	if err := w.Write(&buf, files); err == nil {
		t.Fatalf("expected Write to reject an escaping rewritten path")
	}
}
