package archive

import "testing"

func TestAssignOffsetsDedup(t *testing.T) {
	var c1, c2 Checksum
	c1[0] = 1
	c2[0] = 2

	files := []*File{
		{Path: "a", Size: 10, Checksum: c1},
		{Path: "b", Size: 20, Checksum: c2},
		{Path: "c", Size: 10, Checksum: c1}, // duplicate of a
	}
	total := AssignOffsets(files)

	if files[0].ArchiveOffset != 0 {
		t.Fatalf("a: got offset %d, want 0", files[0].ArchiveOffset)
	}
	if files[1].ArchiveOffset != 10 {
		t.Fatalf("b: got offset %d, want 10", files[1].ArchiveOffset)
	}
	if files[2].ArchiveOffset != 0 {
		t.Fatalf("c: got offset %d, want 0 (dedup with a)", files[2].ArchiveOffset)
	}
	if total != 30 {
		t.Fatalf("total body size: got %d, want 30", total)
	}
}
