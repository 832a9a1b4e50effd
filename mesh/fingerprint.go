package mesh

// Fingerprint is the multiset of squared pairwise distances within one
// scanner's beacons, keyed by distance. It does not change under rotation
// or translation, so two scanners sharing k beacons share at least
// k*(k-1)/2 entries.
type Fingerprint map[int]int

// NewFingerprint computes the fingerprint of points. Fewer than two
// points give an empty fingerprint.
func NewFingerprint(points []Point) Fingerprint {
	fp := make(Fingerprint)
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			fp[points[i].SquaredDistance(points[j])]++
		}
	}
	return fp
}

// Len returns the number of pairs, C(n,2) for n points.
func (f Fingerprint) Len() int {
	n := 0
	for _, c := range f {
		n += c
	}
	return n
}

// Shared returns the size of the multiset intersection of f and other.
func (f Fingerprint) Shared(other Fingerprint) int {
	small, large := f, other
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for d, c := range small {
		if oc, ok := large[d]; ok {
			shared += min(c, oc)
		}
	}
	return shared
}

// Fingerprints computes one fingerprint per scanner, indexed like scanners.
func Fingerprints(scanners []Scanner) []Fingerprint {
	fps := make([]Fingerprint, len(scanners))
	for i, s := range scanners {
		fps[i] = NewFingerprint(s.Beacons)
	}
	return fps
}

// indexPair holds the positions of two beacons within one scanner.
type indexPair struct {
	i, j int
}

// pairIndex groups beacon index pairs by their squared distance. The
// solver uses it to find anchor pairs with matching lengths.
func pairIndex(points []Point) map[int][]indexPair {
	idx := make(map[int][]indexPair)
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			d := points[i].SquaredDistance(points[j])
			idx[d] = append(idx[d], indexPair{i: i, j: j})
		}
	}
	return idx
}
