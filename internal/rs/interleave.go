package rs

// BlockLen is the number of codewords stacked vertically in a super-block
// (§4.H.2).
const BlockLen = 8176

// superBlockBytes is the number of bytes a fully-populated super-block
// occupies on the wire, BlockLen rows of NN bytes each.
const superBlockBytes = BlockLen * NN

// modCycle is the modulus of the scatter/gather stride walk: one less than
// the total element count. Multiplying an index by BlockLen (row-major ->
// column-major) or by NN (its inverse) modulo modCycle permutes the
// positions below modCycle (position 0 maps to itself); position modCycle
// itself is kept fixed.
//
// scatter and gather are mutual inverses because rows*cols ≡ 1 (mod
// rows*cols-1) whenever rows and cols are coprime to rows*cols-1 in the
// way row-count and column-count always are for this reshape: walking by
// stride s for s*t ≡ 1 (mod modCycle) visits the same cycle as stride t
// in reverse.
const modCycle = superBlockBytes - 1

// scatter reshapes src, a BlockLen x NN row-major grid (row-major = the
// order rows are produced by the encoder, one row per codeword) into
// on-wire column-major order: dst[(i*BlockLen) mod modCycle] = src[i], with
// the final byte (i == modCycle) fixed in place.
func scatter(src, dst []byte) {
	if len(src) != superBlockBytes || len(dst) != superBlockBytes {
		panic("rs: scatter requires full super-block buffers")
	}
	for i := 0; i < superBlockBytes; i++ {
		if i == modCycle {
			dst[i] = src[i]
			continue
		}
		dst[(i*BlockLen)%modCycle] = src[i]
	}
}

// gather is scatter's inverse: it walks with stride NN instead of BlockLen,
// recovering row-major codeword order from on-wire column-major order.
func gather(src, dst []byte) {
	if len(src) != superBlockBytes || len(dst) != superBlockBytes {
		panic("rs: gather requires full super-block buffers")
	}
	for i := 0; i < superBlockBytes; i++ {
		if i == modCycle {
			dst[i] = src[i]
			continue
		}
		dst[(i*NN)%modCycle] = src[i]
	}
}
