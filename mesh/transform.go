package mesh

// Add returns p + q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p - q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Neg returns -p
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y, Z: -p.Z}
}

// SquaredDistance returns the squared Euclidean distance between p and q.
// It stays in integers so fingerprints can be compared exactly.
func (p Point) SquaredDistance(q Point) int {
	d := p.Sub(q)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// Manhattan returns the taxicab distance between p and q.
func (p Point) Manhattan(q Point) int {
	d := p.Sub(q)
	return abs(d.X) + abs(d.Y) + abs(d.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Apply maps p through the transform: R*p + T
func (t Transform) Apply(p Point) Point {
	return t.Rotation.Apply(p).Add(t.Translation)
}

// TransformPoints applies a transform to multiple points
func TransformPoints(points []Point, t Transform) []Point {
	result := make([]Point, len(points))
	for i, p := range points {
		result[i] = t.Apply(p)
	}
	return result
}

// ComposeTransforms returns a*b. Applying the result is equivalent to
// applying b first, then a.
func ComposeTransforms(a, b Transform) Transform {
	return Transform{
		Rotation:    ComposeRotations(a.Rotation, b.Rotation),
		Translation: a.Rotation.Apply(b.Translation).Add(a.Translation),
	}
}

// InvertTransform computes the inverse of a rigid transform:
// R' = R^T, T' = -R^T * T
func InvertTransform(t Transform) Transform {
	inv := InvertRotation(t.Rotation)
	return Transform{
		Rotation:    inv,
		Translation: inv.Apply(t.Translation).Neg(),
	}
}
