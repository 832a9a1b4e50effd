package mesh

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MinOverlap is the number of beacons two scanners must share before
// their relative pose is trusted.
const MinOverlap = 12

// MinSharedDistances returns how many fingerprint entries two scanners
// sharing k beacons are guaranteed to have in common: C(k,2).
func MinSharedDistances(k int) int {
	if k < 2 {
		return 0
	}
	return k * (k - 1) / 2
}

// effectiveWorkers resolves a configured worker count, 0 meaning GOMAXPROCS.
func effectiveWorkers(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

// CandidatePairs returns every unordered scanner pair (i<j) whose
// fingerprints share at least threshold distances, sorted by (I, J).
// Sharing is necessary but not sufficient for a real overlap; the solver
// has the final word.
//
// Rows of the pair matrix are scanned in parallel. Each row writes only
// its own slot, so the result does not depend on scheduling.
func CandidatePairs(ctx context.Context, fps []Fingerprint, threshold, workers int) ([]ScannerPair, error) {
	if threshold < 1 {
		threshold = 1
	}
	rows := make([][]ScannerPair, len(fps))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(effectiveWorkers(workers))
	for i := range fps {
		if len(fps[i]) == 0 {
			continue
		}
		g.Go(func() error {
			for j := i + 1; j < len(fps); j++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if shared := fps[i].Shared(fps[j]); shared >= threshold {
					rows[i] = append(rows[i], ScannerPair{I: i, J: j, Shared: shared})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var pairs []ScannerPair
	for _, row := range rows {
		pairs = append(pairs, row...)
	}
	return pairs, nil
}
