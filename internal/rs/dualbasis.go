package rs

// talConst is the fixed nonzero field element the dual-basis conversion
// multiplies by. Multiplication by a fixed nonzero GF(256) element is
// GF(2)-linear and invertible, which is exactly what a basis-change table
// has to be — so taltab/tal1tab are built from it directly rather than
// from a hand-transcribed CCSDS constant table that wasn't available to
// check against.
const talConst = 0xB6

var taltab, tal1tab [256]byte

func init() {
	inv := gfInv(talConst)
	for b := 0; b < 256; b++ {
		taltab[b] = gfMul(byte(b), talConst)
		tal1tab[b] = gfMul(byte(b), inv)
	}
}

// toDualBasis converts a conventional-basis codeword to its dual-basis
// on-wire representation in place.
func toDualBasis(codeword []byte) {
	for i, b := range codeword {
		codeword[i] = taltab[b]
	}
}

// fromDualBasis is toDualBasis's inverse.
func fromDualBasis(codeword []byte) {
	for i, b := range codeword {
		codeword[i] = tal1tab[b]
	}
}
