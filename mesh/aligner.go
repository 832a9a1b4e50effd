package mesh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"
)

// ErrNoScanners is returned when there is nothing to align.
var ErrNoScanners = errors.New("no scanners to align")

// Aligner runs the full pipeline: fingerprints, candidate filter,
// pairwise solves and pose composition.
type Aligner struct {
	MinOverlap  int
	Root        int
	Workers     int
	CacheMaxAge time.Duration
}

// NewAligner creates an aligner from configuration. Zero values fall back
// to the defaults.
func NewAligner(cfg AlignmentConfig) *Aligner {
	a := &Aligner{
		MinOverlap:  cfg.MinOverlap,
		Root:        cfg.Root,
		Workers:     cfg.Workers,
		CacheMaxAge: cfg.CacheMaxAge,
	}
	if a.MinOverlap <= 0 {
		a.MinOverlap = MinOverlap
	}
	return a
}

// Alignment is the result of aligning a set of scanners. Poses are
// indexed by scanner id.
type Alignment struct {
	Root       int           `json:"root"`
	MinOverlap int           `json:"minOverlap"`
	Scanners   []Scanner     `json:"-"`
	Candidates []ScannerPair `json:"candidates"`
	Edges      []Edge        `json:"edges"`
	Poses      []Pose        `json:"poses"`
}

// Align places every scanner in the root scanner's frame. It fails with
// ErrDisconnected if any scanner cannot be placed, rather than returning a
// partial beacon set.
func (a *Aligner) Align(ctx context.Context, scanners []Scanner) (*Alignment, error) {
	if len(scanners) == 0 {
		return nil, ErrNoScanners
	}
	if a.Root < 0 || a.Root >= len(scanners) {
		return nil, fmt.Errorf("%w: %d (have %d scanners)", ErrRootOutOfRange, a.Root, len(scanners))
	}

	fps := Fingerprints(scanners)
	candidates, err := CandidatePairs(ctx, fps, MinSharedDistances(a.MinOverlap), a.Workers)
	if err != nil {
		return nil, fmt.Errorf("scanning overlap candidates: %w", err)
	}
	log.Printf("[ALIGN] %d scanners, %d candidate pairs", len(scanners), len(candidates))

	edges, err := SolveCandidates(ctx, scanners, candidates, a.MinOverlap, a.Workers)
	if err != nil {
		return nil, fmt.Errorf("solving candidate pairs: %w", err)
	}
	log.Printf("[ALIGN] solved %d of %d candidate pairs", len(edges), len(candidates))

	graph, err := BuildTransformGraph(len(scanners), edges)
	if err != nil {
		return nil, fmt.Errorf("building transform graph: %w", err)
	}
	poses, err := graph.ComposePoses(ctx, a.Root)
	if err != nil {
		return nil, fmt.Errorf("composing poses: %w", err)
	}

	return &Alignment{
		Root:       a.Root,
		MinOverlap: a.MinOverlap,
		Scanners:   scanners,
		Candidates: candidates,
		Edges:      edges,
		Poses:      poses,
	}, nil
}

// Beacons returns every beacon in the root frame, deduplicated and sorted
// by (X, Y, Z).
func (al *Alignment) Beacons() []Point {
	seen := make(map[Point]struct{})
	for i, s := range al.Scanners {
		t := al.Poses[i].Transform
		for _, p := range s.Beacons {
			seen[t.Apply(p)] = struct{}{}
		}
	}
	out := make([]Point, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return lessPoint(out[i], out[j]) })
	return out
}

// UniqueBeacons returns the number of distinct beacons across all scanners.
func (al *Alignment) UniqueBeacons() int {
	return len(al.Beacons())
}

// ScannerPositions returns each scanner's position in the root frame,
// indexed by scanner id.
func (al *Alignment) ScannerPositions() []Point {
	out := make([]Point, len(al.Poses))
	for i, p := range al.Poses {
		out[i] = p.Transform.Translation
	}
	return out
}

// MaxSeparation returns the largest Manhattan distance between any two
// scanners, 0 when there is only one.
func (al *Alignment) MaxSeparation() int {
	positions := al.ScannerPositions()
	best := 0
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if d := positions[i].Manhattan(positions[j]); d > best {
				best = d
			}
		}
	}
	return best
}

// CountUniqueBeacons aligns scanners with default settings and returns the
// number of distinct beacons.
func CountUniqueBeacons(scanners []Scanner) (int, error) {
	al, err := NewAligner(AlignmentConfig{}).Align(context.Background(), scanners)
	if err != nil {
		return 0, err
	}
	return al.UniqueBeacons(), nil
}

// MaxScannerSeparation aligns scanners with default settings and returns
// the largest Manhattan distance between two scanners.
func MaxScannerSeparation(scanners []Scanner) (int, error) {
	al, err := NewAligner(AlignmentConfig{}).Align(context.Background(), scanners)
	if err != nil {
		return 0, err
	}
	return al.MaxSeparation(), nil
}

func lessPoint(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
