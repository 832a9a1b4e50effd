package mesh

import (
	"context"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"
)

// SolveTransform finds a transform t such that at least minOverlap points
// of b land exactly on points of a after t is applied. The returned
// transform maps b's frame into a's frame.
//
// Hypotheses are anchored on beacon pairs of equal length: if (a1,a2) and
// (b1,b2) are the same pair seen from both scanners then some rotation R
// takes b2-b1 to a2-a1 (or to a1-a2 when the pair is listed the other way
// round), and the translation follows from a1 = R*b1 + T. The first
// hypothesis reaching minOverlap is accepted; this assumes the true
// alignment is unique, which holds for exact integer observations.
func SolveTransform(a, b []Point, minOverlap int) (Transform, bool) {
	t, _, ok := solveTransform(a, b, minOverlap)
	return t, ok
}

func solveTransform(a, b []Point, minOverlap int) (Transform, int, bool) {
	if minOverlap < 1 {
		minOverlap = 1
	}
	if len(a) < minOverlap || len(b) < minOverlap {
		return Transform{}, 0, false
	}

	target := make(map[Point]struct{}, len(a))
	for _, p := range a {
		target[p] = struct{}{}
	}

	// A single beacon cannot fix a rotation, so fall back to point
	// anchors when the threshold allows it.
	if minOverlap == 1 || len(a) < 2 || len(b) < 2 {
		return solveByPointAnchors(a, b, target, minOverlap)
	}

	aPairs := pairIndex(a)
	bPairs := pairIndex(b)
	tried := make(map[Transform]struct{})

	for d, bList := range bPairs {
		aList, ok := aPairs[d]
		if !ok {
			continue
		}
		for _, bp := range bList {
			b1, b2 := b[bp.i], b[bp.j]
			bDelta := b2.Sub(b1)
			for _, ap := range aList {
				a1, a2 := a[ap.i], a[ap.j]
				aDelta := a2.Sub(a1)
				for _, r := range Rotations {
					rd := r.Apply(bDelta)
					var t Transform
					switch rd {
					case aDelta:
						t = Transform{Rotation: r, Translation: a1.Sub(r.Apply(b1))}
					case aDelta.Neg():
						t = Transform{Rotation: r, Translation: a2.Sub(r.Apply(b1))}
					default:
						continue
					}
					if _, seen := tried[t]; seen {
						continue
					}
					tried[t] = struct{}{}
					if n := CountMatches(target, b, t); n >= minOverlap {
						return t, n, true
					}
				}
			}
		}
	}
	return Transform{}, 0, false
}

// solveByPointAnchors tries every rotation and every pairing of single
// points. It is only used for tiny inputs or thresholds.
func solveByPointAnchors(a, b []Point, target map[Point]struct{}, minOverlap int) (Transform, int, bool) {
	for _, r := range Rotations {
		for _, pa := range a {
			for _, pb := range b {
				t := Transform{Rotation: r, Translation: pa.Sub(r.Apply(pb))}
				if n := CountMatches(target, b, t); n >= minOverlap {
					return t, n, true
				}
			}
		}
	}
	return Transform{}, 0, false
}

// CountMatches counts how many points of b coincide with a point in
// target once t is applied.
func CountMatches(target map[Point]struct{}, b []Point, t Transform) int {
	n := 0
	for _, p := range b {
		if _, ok := target[t.Apply(p)]; ok {
			n++
		}
	}
	return n
}

// SolveCandidates runs SolveTransform on every candidate pair in parallel
// and returns the solved edges sorted by (From, To). Pairs that pass the
// fingerprint filter but do not really overlap are logged and skipped.
func SolveCandidates(ctx context.Context, scanners []Scanner, pairs []ScannerPair, minOverlap, workers int) ([]Edge, error) {
	results := make([]*Edge, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(effectiveWorkers(workers))
	for k, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, n, ok := solveTransform(scanners[pair.I].Beacons, scanners[pair.J].Beacons, minOverlap)
			if !ok {
				log.Printf("[ALIGN] scanners %d and %d share %d distances but no transform aligns %d beacons; skipping",
					pair.I, pair.J, pair.Shared, minOverlap)
				return nil
			}
			results[k] = &Edge{From: pair.I, To: pair.J, Transform: t, Matches: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	edges := make([]Edge, 0, len(results))
	for _, e := range results {
		if e != nil {
			edges = append(edges, *e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges, nil
}
