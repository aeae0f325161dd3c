package rs

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestScatterGatherInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	src := make([]byte, superBlockBytes)
	rng.Read(src)

	wire := make([]byte, superBlockBytes)
	scatter(src, wire)

	back := make([]byte, superBlockBytes)
	gather(wire, back)

	if !bytes.Equal(src, back) {
		t.Fatalf("gather(scatter(x)) != x")
	}
}

func TestDualBasisInverse(t *testing.T) {
	for b := 0; b < 256; b++ {
		d := taltab[b]
		if tal1tab[d] != byte(b) {
			t.Fatalf("dual basis roundtrip failed for %d: got %d", b, tal1tab[d])
		}
	}
}
