package mesh

import "testing"

func TestNewFingerprint(t *testing.T) {
	tests := []struct {
		name    string
		points  []Point
		wantLen int
		want    Fingerprint
	}{
		{"empty", nil, 0, Fingerprint{}},
		{"single", []Point{{1, 2, 3}}, 0, Fingerprint{}},
		{"pair", []Point{{0, 0, 0}, {1, 2, 2}}, 1, Fingerprint{9: 1}},
		{
			name:    "unit square keeps repeated distances",
			points:  []Point{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
			wantLen: 6,
			want:    Fingerprint{1: 4, 2: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := NewFingerprint(tt.points)
			if got := fp.Len(); got != tt.wantLen {
				t.Errorf("Len() = %d, want %d", got, tt.wantLen)
			}
			if len(fp) != len(tt.want) {
				t.Fatalf("fingerprint = %v, want %v", fp, tt.want)
			}
			for d, c := range tt.want {
				if fp[d] != c {
					t.Errorf("fp[%d] = %d, want %d", d, fp[d], c)
				}
			}
		})
	}
}

func TestFingerprint_LenIsPairCount(t *testing.T) {
	for _, s := range loadExample(t) {
		n := len(s.Beacons)
		if got, want := NewFingerprint(s.Beacons).Len(), n*(n-1)/2; got != want {
			t.Errorf("scanner %d: Len() = %d, want C(%d,2) = %d", s.ID, got, n, want)
		}
	}
}

func TestFingerprint_RigidMotionInvariant(t *testing.T) {
	points := loadExample(t)[0].Beacons
	fp := NewFingerprint(points)

	for i, r := range Rotations {
		moved := TransformPoints(points, Transform{Rotation: r, Translation: Point{X: 1000, Y: -37, Z: 5}})
		if got := fp.Shared(NewFingerprint(moved)); got != fp.Len() {
			t.Errorf("Rotations[%d]: shared %d of %d distances after moving", i, got, fp.Len())
		}
	}
}

func TestFingerprint_Shared(t *testing.T) {
	tests := []struct {
		name string
		a, b Fingerprint
		want int
	}{
		{"disjoint", Fingerprint{1: 1}, Fingerprint{2: 1}, 0},
		{"multiset minimum", Fingerprint{1: 4, 2: 2}, Fingerprint{1: 1, 2: 5, 3: 1}, 3},
		{"empty", Fingerprint{}, Fingerprint{1: 3}, 0},
		{"identical", Fingerprint{5: 2, 9: 1}, Fingerprint{5: 2, 9: 1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Shared(tt.b); got != tt.want {
				t.Errorf("a.Shared(b) = %d, want %d", got, tt.want)
			}
			if got := tt.b.Shared(tt.a); got != tt.want {
				t.Errorf("b.Shared(a) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFingerprints_IndexedLikeScanners(t *testing.T) {
	scanners := []Scanner{
		{ID: 0, Beacons: []Point{{0, 0, 0}, {3, 4, 0}}},
		{ID: 1},
	}
	fps := Fingerprints(scanners)
	if len(fps) != 2 {
		t.Fatalf("len = %d, want 2", len(fps))
	}
	if fps[0][25] != 1 {
		t.Errorf("fps[0] = %v, want {25:1}", fps[0])
	}
	if len(fps[1]) != 0 {
		t.Errorf("fps[1] = %v, want empty", fps[1])
	}
}

func TestPairIndex(t *testing.T) {
	points := []Point{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	idx := pairIndex(points)

	if got := len(idx[1]); got != 2 {
		t.Errorf("pairs at distance 1 = %d, want 2", got)
	}
	if got := idx[2]; len(got) != 1 || got[0] != (indexPair{i: 1, j: 2}) {
		t.Errorf("pairs at distance 2 = %v, want [{1 2}]", got)
	}
}
