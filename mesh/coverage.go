package mesh

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Coverage is the x/y footprint of one scanner's beacons in the root frame.
type Coverage struct {
	ScannerID int
	Polygon   orb.Polygon // nil when the beacons span no area
	Area      float64
}

// ScannerCoverage returns the convex hull of every scanner's beacons,
// projected to x/y in the root frame, indexed by scanner id.
func ScannerCoverage(al *Alignment) []Coverage {
	out := make([]Coverage, len(al.Scanners))
	for i, s := range al.Scanners {
		out[i] = Coverage{ScannerID: i}
		t := al.Poses[i].Transform
		global := make([]Point, len(s.Beacons))
		for j, b := range s.Beacons {
			global[j] = t.Apply(b)
		}
		hull := hullXY(global)
		if len(hull) < 3 {
			continue
		}
		ring := make(orb.Ring, 0, len(hull)+1)
		for _, p := range hull {
			ring = append(ring, projectXY(p))
		}
		ring = append(ring, ring[0])
		out[i].Polygon = orb.Polygon{ring}
		out[i].Area = planar.Area(out[i].Polygon)
	}
	return out
}

// hullXY returns the x/y convex hull of points counter-clockwise, starting
// at the lowest x (then y), without repeating the first vertex. Z is
// dropped. Collinear boundary points are not vertices. The arithmetic is
// exact since coordinates are integers.
func hullXY(points []Point) []Point {
	seen := make(map[[2]int]bool, len(points))
	flat := make([]Point, 0, len(points))
	for _, p := range points {
		key := [2]int{p.X, p.Y}
		if !seen[key] {
			seen[key] = true
			flat = append(flat, Point{X: p.X, Y: p.Y})
		}
	}
	sort.Slice(flat, func(i, j int) bool {
		if flat[i].X != flat[j].X {
			return flat[i].X < flat[j].X
		}
		return flat[i].Y < flat[j].Y
	})
	if len(flat) < 3 {
		return flat
	}

	// turn > 0 when o->a->b bends left
	turn := func(o, a, b Point) int64 {
		return int64(a.X-o.X)*int64(b.Y-o.Y) - int64(a.Y-o.Y)*int64(b.X-o.X)
	}
	chain := func(pts []Point) []Point {
		var c []Point
		for _, p := range pts {
			for len(c) >= 2 && turn(c[len(c)-2], c[len(c)-1], p) <= 0 {
				c = c[:len(c)-1]
			}
			c = append(c, p)
		}
		return c
	}

	lower := chain(flat)
	reversed := make([]Point, len(flat))
	for i, p := range flat {
		reversed[len(flat)-1-i] = p
	}
	upper := chain(reversed)

	// each chain ends where the other starts
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil
	}
	return hull
}
