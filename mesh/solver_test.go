package mesh

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// randomBeacons returns n distinct points in [-1000, 1000]^3.
func randomBeacons(seed int64, n int) []Point {
	rng := rand.New(rand.NewSource(seed))
	seen := make(map[Point]bool)
	out := make([]Point, 0, n)
	for len(out) < n {
		p := Point{X: rng.Intn(2001) - 1000, Y: rng.Intn(2001) - 1000, Z: rng.Intn(2001) - 1000}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// observe expresses world points in the local frame of a scanner whose
// pose (local -> world) is pose.
func observe(pose Transform, world []Point) []Point {
	return TransformPoints(world, InvertTransform(pose))
}

func TestSolveTransform_RecoversPose(t *testing.T) {
	world := randomBeacons(19, 30)
	a := world[:20]
	b := world[8:] // 12 shared with a

	for _, idx := range []int{0, 5, 11, 18, 23} {
		pose := Transform{Rotation: Rotations[idx], Translation: Point{X: 1105, Y: -1205, Z: 1229}}
		got, ok := SolveTransform(a, observe(pose, b), MinOverlap)
		if !ok {
			t.Fatalf("Rotations[%d]: no transform found", idx)
		}
		if diff := cmp.Diff(pose, got); diff != "" {
			t.Errorf("Rotations[%d]: transform mismatch (-want +got):\n%s", idx, diff)
		}
	}
}

func TestSolveTransform_TooFewShared(t *testing.T) {
	world := randomBeacons(7, 30)
	a := world[:20]
	b := world[9:] // only 11 shared

	pose := Transform{Rotation: Rotations[13], Translation: Point{X: -40, Y: 700, Z: 12}}
	if _, ok := SolveTransform(a, observe(pose, b), MinOverlap); ok {
		t.Error("SolveTransform() succeeded with 11 shared beacons, want failure at threshold 12")
	}
	if got, ok := SolveTransform(a, observe(pose, b), 11); !ok || got != pose {
		t.Errorf("SolveTransform(threshold 11) = %v, %v; want %v, true", got, ok, pose)
	}
}

func TestSolveTransform_TooFewPoints(t *testing.T) {
	a := randomBeacons(3, 5)
	if _, ok := SolveTransform(a, a, 6); ok {
		t.Error("expected failure when inputs are smaller than the threshold")
	}
	if _, ok := SolveTransform(nil, a, 1); ok {
		t.Error("expected failure for empty input")
	}
}

func TestSolveTransform_Example(t *testing.T) {
	scanners := loadExample(t)
	tests := []struct {
		i, j int
		want Transform
	}{
		{0, 1, Transform{Rotation: Rotation{{-1, 0, 0}, {0, 1, 0}, {0, 0, -1}}, Translation: Point{68, -1246, -43}}},
		{1, 3, Transform{Rotation: IdentityRotation, Translation: Point{160, -1134, -23}}},
		{1, 4, Transform{Rotation: Rotation{{0, 1, 0}, {0, 0, -1}, {-1, 0, 0}}, Translation: Point{88, 113, -1104}}},
		{2, 4, Transform{Rotation: Rotation{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}}, Translation: Point{1125, -168, 72}}},
	}
	for _, tt := range tests {
		got, n, ok := solveTransform(scanners[tt.i].Beacons, scanners[tt.j].Beacons, MinOverlap)
		if !ok {
			t.Errorf("(%d,%d): no transform found", tt.i, tt.j)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("(%d,%d): transform mismatch (-want +got):\n%s", tt.i, tt.j, diff)
		}
		if n != 12 {
			t.Errorf("(%d,%d): matches = %d, want 12", tt.i, tt.j, n)
		}
	}
}

func TestSolveTransform_FalseCandidate(t *testing.T) {
	scanners := loadExample(t)
	// 0 and 4 share 15 fingerprint distances but do not overlap
	if _, ok := SolveTransform(scanners[0].Beacons, scanners[4].Beacons, MinOverlap); ok {
		t.Error("SolveTransform(0, 4) succeeded, want failure")
	}
}

func TestSolveTransform_SinglePointAnchor(t *testing.T) {
	a := []Point{{5, 5, 5}}
	b := []Point{{1, 2, 3}}
	got, ok := SolveTransform(a, b, 1)
	if !ok {
		t.Fatal("expected a transform for a single shared point")
	}
	if got.Apply(b[0]) != a[0] {
		t.Errorf("transform maps %v to %v, want %v", b[0], got.Apply(b[0]), a[0])
	}
}

func TestCountMatches(t *testing.T) {
	target := map[Point]struct{}{{1, 1, 1}: {}, {2, 2, 2}: {}}
	b := []Point{{0, 0, 0}, {1, 1, 1}, {9, 9, 9}}
	tr := Transform{Rotation: IdentityRotation, Translation: Point{1, 1, 1}}
	if got := CountMatches(target, b, tr); got != 2 {
		t.Errorf("CountMatches = %d, want 2", got)
	}
}

func TestSolveCandidates(t *testing.T) {
	scanners := loadExample(t)
	pairs := []ScannerPair{
		{I: 0, J: 1, Shared: 66},
		{I: 0, J: 4, Shared: 15}, // false candidate, skipped
		{I: 2, J: 4, Shared: 66},
		{I: 1, J: 3, Shared: 66},
	}

	edges, err := SolveCandidates(context.Background(), scanners, pairs, MinOverlap, 2)
	if err != nil {
		t.Fatalf("SolveCandidates() error: %v", err)
	}

	var got [][2]int
	for _, e := range edges {
		got = append(got, [2]int{e.From, e.To})
		if e.Matches < MinOverlap {
			t.Errorf("edge %d-%d has %d matches", e.From, e.To, e.Matches)
		}
	}
	want := [][2]int{{0, 1}, {1, 3}, {2, 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
}
