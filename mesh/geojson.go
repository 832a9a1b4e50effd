package mesh

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature kinds written to the "kind" property
const (
	KindBeacon   = "beacon"
	KindScanner  = "scanner"
	KindCoverage = "coverage"
)

// projectXY drops z for the 2D outputs; z is kept as a property instead.
func projectXY(p Point) orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}

// BeaconsGeoJSON exports the aligned map as a GeoJSON FeatureCollection in
// the root frame: one Point feature per beacon, one per scanner and one
// Polygon per scanner footprint. Coordinates are the x/y projection; z is
// stored in properties.
func BeaconsGeoJSON(al *Alignment) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for i, b := range al.Beacons() {
		f := geojson.NewFeature(projectXY(b))
		f.ID = i
		f.Properties["kind"] = KindBeacon
		f.Properties["z"] = b.Z
		fc.Append(f)
	}

	for i, pos := range al.ScannerPositions() {
		f := geojson.NewFeature(projectXY(pos))
		f.ID = len(fc.Features)
		f.Properties["kind"] = KindScanner
		f.Properties["scanner"] = i
		f.Properties["z"] = pos.Z
		f.Properties["beacons"] = len(al.Scanners[i].Beacons)
		fc.Append(f)
	}

	for _, c := range ScannerCoverage(al) {
		if c.Polygon == nil {
			continue
		}
		f := geojson.NewFeature(c.Polygon)
		f.ID = len(fc.Features)
		f.Properties["kind"] = KindCoverage
		f.Properties["scanner"] = c.ScannerID
		f.Properties["area"] = c.Area
		fc.Append(f)
	}

	return fc
}

// Bounds returns the x/y bounding box of every beacon and scanner.
func Bounds(al *Alignment) orb.Bound {
	var mp orb.MultiPoint
	for _, b := range al.Beacons() {
		mp = append(mp, projectXY(b))
	}
	for _, pos := range al.ScannerPositions() {
		mp = append(mp, projectXY(pos))
	}
	return mp.Bound()
}
