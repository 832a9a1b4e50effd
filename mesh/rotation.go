package mesh

// IdentityRotation leaves every point unchanged.
var IdentityRotation = Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Rotations lists the 24 proper rotations of the cube, grouped by where
// the local z axis ends up. Order carries no meaning beyond being stable.
var Rotations = [24]Rotation{
	// z -> +z
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}},
	{{-1, 0, 0}, {0, -1, 0}, {0, 0, 1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},

	// z -> -z
	{{1, 0, 0}, {0, -1, 0}, {0, 0, -1}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{-1, 0, 0}, {0, 1, 0}, {0, 0, -1}},
	{{0, -1, 0}, {-1, 0, 0}, {0, 0, -1}},

	// z -> +y
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},

	// z -> -y
	{{1, 0, 0}, {0, 0, 1}, {0, -1, 0}},
	{{0, 0, 1}, {-1, 0, 0}, {0, -1, 0}},
	{{-1, 0, 0}, {0, 0, -1}, {0, -1, 0}},
	{{0, 0, -1}, {1, 0, 0}, {0, -1, 0}},

	// z -> +x
	{{0, -1, 0}, {0, 0, -1}, {1, 0, 0}},
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},
	{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}},
	{{0, 0, 1}, {0, -1, 0}, {1, 0, 0}},

	// z -> -x
	{{0, 1, 0}, {0, 0, -1}, {-1, 0, 0}},
	{{0, 0, 1}, {0, 1, 0}, {-1, 0, 0}},
	{{0, -1, 0}, {0, 0, 1}, {-1, 0, 0}},
	{{0, 0, -1}, {0, -1, 0}, {-1, 0, 0}},
}

// Apply multiplies the rotation matrix by p.
func (r Rotation) Apply(p Point) Point {
	return Point{
		X: r[0][0]*p.X + r[0][1]*p.Y + r[0][2]*p.Z,
		Y: r[1][0]*p.X + r[1][1]*p.Y + r[1][2]*p.Z,
		Z: r[2][0]*p.X + r[2][1]*p.Y + r[2][2]*p.Z,
	}
}

// ComposeRotations returns r1*r2. Applying the result is equivalent to
// applying r2 first, then r1.
func ComposeRotations(r1, r2 Rotation) Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += r1[i][k] * r2[k][j]
			}
		}
	}
	return out
}

// InvertRotation returns the inverse of r. Rotations are orthogonal, so
// this is the transpose.
func InvertRotation(r Rotation) Rotation {
	var out Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = r[j][i]
		}
	}
	return out
}

// Determinant returns det(r).
func (r Rotation) Determinant() int {
	return r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
}

// IsProper reports whether r is a signed permutation matrix with
// determinant +1, i.e. one of the 24 cube rotations.
func (r Rotation) IsProper() bool {
	for i := 0; i < 3; i++ {
		rowNonZero, colNonZero := 0, 0
		for j := 0; j < 3; j++ {
			if v := r[i][j]; v < -1 || v > 1 {
				return false
			} else if v != 0 {
				rowNonZero++
			}
			if r[j][i] != 0 {
				colNonZero++
			}
		}
		if rowNonZero != 1 || colNonZero != 1 {
			return false
		}
	}
	return r.Determinant() == 1
}

// RotationIndex returns the position of r in Rotations, or -1.
func RotationIndex(r Rotation) int {
	for i, candidate := range Rotations {
		if candidate == r {
			return i
		}
	}
	return -1
}
