package archive

// AssignOffsets walks the ordered file list and assigns each record its
// ArchiveOffset: the first file with a given checksum gets the next free
// offset and advances the cursor by its size; every later file with the
// same checksum is assigned that same offset and contributes no further
// advance. Returns the final cursor value, the size of the body region.
func AssignOffsets(files []*File) uint64 {
	seen := make(map[Checksum]uint64, len(files))
	var offset uint64
	for _, f := range files {
		if existing, ok := seen[f.Checksum]; ok {
			f.ArchiveOffset = existing
			continue
		}
		f.ArchiveOffset = offset
		seen[f.Checksum] = offset
		offset += f.Size
	}
	return offset
}
