// Package archive implements the ARZIP content-addressed, similarity-ordered
// container: enumeration, parallel dual-hashing, greedy nearest-neighbor
// ordering, dedup offset assignment, and the container writer/reader.
package archive

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Magic is the fixed 5-byte container header. No version field: readers
// reject anything else outright.
const Magic = "ARZIP"

// writeU64 writes v as 8 big-endian bytes.
func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// readU64 reads 8 big-endian bytes into a uint64.
func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read u64: %w", err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// writeU32 writes v as 4 big-endian bytes.
func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// readU32 reads 4 big-endian bytes into a uint32.
func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read u32: %w", err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// writeN writes p in full or returns an error; a short write is fatal to the
// caller the way a short fwrite is fatal in the original tool.
func writeN(w io.Writer, p []byte) error {
	_, err := w.Write(p)
	return err
}

// readN reads exactly len(p) bytes into p.
func readN(r io.Reader, p []byte) error {
	_, err := io.ReadFull(r, p)
	return err
}
