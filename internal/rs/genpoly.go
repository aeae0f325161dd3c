package rs

// genPoly holds g(x) in conventional basis, index (log) form: genPoly[i] is
// the log of x^i's coefficient, or A0 if that coefficient is zero. Built at
// package init by straightforward polynomial convolution — multiplying in
// (x + alpha^root) for each of the NRoots roots, root = PRIM*(FCR+i) for i
// in [0, NRoots) — the same root schedule the classic generic RS encoder
// uses, rather than transcribed from a literal CCSDS table.
var genPoly [NRoots + 1]int

func init() {
	coeff := make([]uint8, NRoots+1)
	coeff[0] = 1
	degree := 0

	for i := 0; i < NRoots; i++ {
		root := gfPow(PRIM * (FCR + i))
		next := make([]uint8, NRoots+1)
		for j := 0; j <= degree+1; j++ {
			var term uint8
			if j > 0 {
				term ^= coeff[j-1]
			}
			if j <= degree {
				term ^= gfMul(coeff[j], root)
			}
			next[j] = term
		}
		coeff = next
		degree++
	}

	for i, c := range coeff {
		if c == 0 {
			genPoly[i] = A0
		} else {
			genPoly[i] = int(gf.logOf[c])
		}
	}
}
