package rs

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestEncodeDecodeClean(t *testing.T) {
	data := make([]byte, DataLen)
	for i := range data {
		data[i] = byte(i * 7)
	}
	parity := Encode(data)

	cw := make([]byte, NN)
	copy(cw[:KK], data)
	copy(cw[KK:], parity[:])

	res := Decode(cw)
	if !res.OK || res.Corrected != 0 {
		t.Fatalf("clean codeword: got %+v", res)
	}
	if !bytes.Equal(cw[:KK], data) {
		t.Fatalf("clean codeword payload mutated")
	}
}

func TestEncodeDecodeCorrectsErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]byte, DataLen)
	rng.Read(data)
	parity := Encode(data)

	cw := make([]byte, NN)
	copy(cw[:KK], data)
	copy(cw[KK:], parity[:])

	// Corrupt up to NRoots/2 = 16 distinct byte positions, the code's
	// guaranteed correction capacity.
	corrupted := append([]byte(nil), cw...)
	positions := rng.Perm(NN)[:NRoots/2]
	for _, p := range positions {
		var b byte
		for b == 0 {
			b = byte(rng.Intn(256))
		}
		corrupted[p] ^= b
	}

	res := Decode(corrupted)
	if !res.OK {
		t.Fatalf("expected correctable codeword, got uncorrectable")
	}
	if !bytes.Equal(corrupted[:KK], data) {
		t.Fatalf("payload not recovered after correcting %d errors", len(positions))
	}
}

func TestGFTablesRoundtrip(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv := gfInv(byte(a))
		if gfMul(byte(a), inv) != 1 {
			t.Fatalf("gfInv(%d)=%d does not multiply back to 1", a, inv)
		}
	}
}
