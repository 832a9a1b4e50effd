package mesh

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// loadExample parses the five-scanner fixture in testdata.
func loadExample(t *testing.T) []Scanner {
	t.Helper()
	scanners, err := ParseScannerFile(filepath.Join("testdata", "example.txt"))
	if err != nil {
		t.Fatalf("loading example: %v", err)
	}
	return scanners
}

func TestAlign_Example(t *testing.T) {
	al, err := NewAligner(AlignmentConfig{}).Align(context.Background(), loadExample(t))
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}

	if got := al.UniqueBeacons(); got != 79 {
		t.Errorf("UniqueBeacons() = %d, want 79", got)
	}
	if got := al.MaxSeparation(); got != 3621 {
		t.Errorf("MaxSeparation() = %d, want 3621", got)
	}

	wantPositions := []Point{
		{0, 0, 0},
		{68, -1246, -43},
		{1105, -1205, 1229},
		{-92, -2380, -20},
		{-20, -1133, 1061},
	}
	if diff := cmp.Diff(wantPositions, al.ScannerPositions()); diff != "" {
		t.Errorf("scanner positions mismatch (-want +got):\n%s", diff)
	}

	wantCandidates := []ScannerPair{
		{I: 0, J: 1, Shared: 66},
		{I: 1, J: 3, Shared: 66},
		{I: 1, J: 4, Shared: 66},
		{I: 2, J: 4, Shared: 66},
	}
	if diff := cmp.Diff(wantCandidates, al.Candidates); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
	if len(al.Edges) != 4 {
		t.Errorf("edges = %d, want 4", len(al.Edges))
	}
}

func TestAlign_Deterministic(t *testing.T) {
	scanners := loadExample(t)
	first, err := NewAligner(AlignmentConfig{Workers: 1}).Align(context.Background(), scanners)
	if err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{2, 8} {
		al, err := NewAligner(AlignmentConfig{Workers: workers}).Align(context.Background(), scanners)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if diff := cmp.Diff(first.Poses, al.Poses); diff != "" {
			t.Errorf("workers=%d: poses differ (-1 worker +n workers):\n%s", workers, diff)
		}
		if diff := cmp.Diff(first.Beacons(), al.Beacons()); diff != "" {
			t.Errorf("workers=%d: beacons differ", workers)
		}
	}
}

func TestAlign_RootChoiceKeepsAnswers(t *testing.T) {
	scanners := loadExample(t)
	for root := range scanners {
		al, err := NewAligner(AlignmentConfig{Root: root}).Align(context.Background(), scanners)
		if err != nil {
			t.Fatalf("root %d: %v", root, err)
		}
		if al.Poses[root].Transform != IdentityTransform() {
			t.Errorf("root %d: own pose is %v, want identity", root, al.Poses[root].Transform)
		}
		if got := al.UniqueBeacons(); got != 79 {
			t.Errorf("root %d: UniqueBeacons() = %d, want 79", root, got)
		}
		if got := al.MaxSeparation(); got != 3621 {
			t.Errorf("root %d: MaxSeparation() = %d, want 3621", root, got)
		}
	}
}

func TestAlign_PosesAreConsistent(t *testing.T) {
	al, err := NewAligner(AlignmentConfig{}).Align(context.Background(), loadExample(t))
	if err != nil {
		t.Fatal(err)
	}

	// Every solved edge must agree with the composed poses: pose(j) = pose(i) * edge
	for _, e := range al.Edges {
		want := ComposeTransforms(al.Poses[e.From].Transform, e.Transform)
		if al.Poses[e.To].Transform != want {
			t.Errorf("edge %d-%d disagrees with poses", e.From, e.To)
		}
	}
	for i, p := range al.Poses {
		if p.ScannerID != i {
			t.Errorf("Poses[%d].ScannerID = %d", i, p.ScannerID)
		}
		if !p.Transform.Rotation.IsProper() {
			t.Errorf("pose %d has improper rotation %v", i, p.Transform.Rotation)
		}
	}
}

func TestAlign_Errors(t *testing.T) {
	scanners := loadExample(t)

	if _, err := NewAligner(AlignmentConfig{}).Align(context.Background(), nil); !errors.Is(err, ErrNoScanners) {
		t.Errorf("empty input: error = %v, want ErrNoScanners", err)
	}
	if _, err := NewAligner(AlignmentConfig{Root: 5}).Align(context.Background(), scanners); !errors.Is(err, ErrRootOutOfRange) {
		t.Errorf("root 5: error = %v, want ErrRootOutOfRange", err)
	}

	// Dropping scanner 1 cuts scanner 0 off from 2, 3 and 4
	partial := []Scanner{scanners[0], scanners[2], scanners[3], scanners[4]}
	for i := range partial {
		partial[i].ID = i
	}
	_, err := NewAligner(AlignmentConfig{}).Align(context.Background(), partial)
	if !errors.Is(err, ErrDisconnected) {
		t.Fatalf("disconnected input: error = %v, want ErrDisconnected", err)
	}
	var de *DisconnectedError
	if errors.As(err, &de) {
		if diff := cmp.Diff([]int{1, 2, 3}, de.Unreachable); diff != "" {
			t.Errorf("unreachable mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestAlign_SingleScanner(t *testing.T) {
	s := loadExample(t)[0]
	al, err := NewAligner(AlignmentConfig{}).Align(context.Background(), []Scanner{s})
	if err != nil {
		t.Fatalf("Align() error: %v", err)
	}
	if got := al.UniqueBeacons(); got != len(s.Beacons) {
		t.Errorf("UniqueBeacons() = %d, want %d", got, len(s.Beacons))
	}
	if got := al.MaxSeparation(); got != 0 {
		t.Errorf("MaxSeparation() = %d, want 0", got)
	}
}

func TestAlign_DuplicateBeaconsCountOnce(t *testing.T) {
	s := Scanner{ID: 0, Beacons: []Point{{1, 2, 3}, {1, 2, 3}, {4, 5, 6}}}
	al, err := NewAligner(AlignmentConfig{}).Align(context.Background(), []Scanner{s})
	if err != nil {
		t.Fatal(err)
	}
	if got := al.UniqueBeacons(); got != 2 {
		t.Errorf("UniqueBeacons() = %d, want 2", got)
	}
}

func TestAlignment_BeaconsSorted(t *testing.T) {
	al, err := NewAligner(AlignmentConfig{}).Align(context.Background(), loadExample(t))
	if err != nil {
		t.Fatal(err)
	}
	beacons := al.Beacons()
	for i := 1; i < len(beacons); i++ {
		if !lessPoint(beacons[i-1], beacons[i]) {
			t.Fatalf("beacons not strictly sorted at %d: %v, %v", i, beacons[i-1], beacons[i])
		}
	}
	// Known beacons from the overlap of scanners 0 and 1
	want := map[Point]bool{{-618, -824, -621}: true, {459, -707, 401}: true, {-485, -357, 347}: true}
	for _, b := range beacons {
		delete(want, b)
	}
	if len(want) != 0 {
		t.Errorf("missing beacons %v", want)
	}
}

func TestCountUniqueBeaconsAndSeparation(t *testing.T) {
	scanners := loadExample(t)

	n, err := CountUniqueBeacons(scanners)
	if err != nil || n != 79 {
		t.Errorf("CountUniqueBeacons() = %d, %v; want 79, nil", n, err)
	}
	d, err := MaxScannerSeparation(scanners)
	if err != nil || d != 3621 {
		t.Errorf("MaxScannerSeparation() = %d, %v; want 3621, nil", d, err)
	}
}

func TestNewAligner_Defaults(t *testing.T) {
	a := NewAligner(AlignmentConfig{})
	if a.MinOverlap != MinOverlap {
		t.Errorf("MinOverlap = %d, want %d", a.MinOverlap, MinOverlap)
	}
	if a.Root != 0 || a.Workers != 0 {
		t.Errorf("Root, Workers = %d, %d; want 0, 0", a.Root, a.Workers)
	}
}
