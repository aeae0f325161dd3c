package archive

import (
	"bytes"
	"testing"
)

func TestU64Roundtrip(t *testing.T) {
	var buf bytes.Buffer
	want := uint64(0x0123456789abcdef)
	if err := writeU64(&buf, want); err != nil {
		t.Fatalf("writeU64: %v", err)
	}
	got, err := readU64(&buf)
	if err != nil {
		t.Fatalf("readU64: %v", err)
	}
	if got != want {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestU32Roundtrip(t *testing.T) {
	var buf bytes.Buffer
	want := uint32(0xdeadbeef)
	if err := writeU32(&buf, want); err != nil {
		t.Fatalf("writeU32: %v", err)
	}
	got, err := readU32(&buf)
	if err != nil {
		t.Fatalf("readU32: %v", err)
	}
	if got != want {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestReadUintsShortRead(t *testing.T) {
	buf := bytes.NewReader([]byte{1, 2, 3})
	if _, err := readU64(buf); err == nil {
		t.Fatalf("expected error on short read")
	}
}
