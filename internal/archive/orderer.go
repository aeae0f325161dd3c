package archive

// earlyExitThreshold stops the inner nearest-neighbor scan the first time a
// candidate's agreement score strictly exceeds this value, since anything
// past it is similar enough to not be worth a full search for the true
// maximum (§4.E).
const earlyExitThreshold = 130

// OrderBySimilarity permutes files in place into a greedy nearest-neighbor
// chain: position c+1 is filled with whichever remaining candidate agrees
// most with position c's similarity digest. Ties go to the first candidate
// found (scan order); an all-zero digest (small files, below the TLSH
// threshold) ties with every other all-zero digest and the group drifts to
// one end of the run.
//
// Single-threaded, O(N² · D) where D is the digest width — acceptable since
// D is a small fixed constant.
func OrderBySimilarity(files []*File) {
	n := len(files)
	for c := 0; c < n-1; c++ {
		best := c + 1
		bestScore := -1
		for i := c + 1; i < n; i++ {
			score := files[c].Similarity.AgreementScore(files[i].Similarity)
			if score > bestScore {
				bestScore = score
				best = i
			}
			if score > earlyExitThreshold {
				break
			}
		}
		files[c+1], files[best] = files[best], files[c+1]
	}
}
