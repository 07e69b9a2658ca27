package state

// Intersects reports whether open segment ab properly crosses open segment cd.
//
// Touching at an endpoint is not a crossing. Parallel, collinear and zero-length
// segments give a zero determinant and never cross, even when they overlap.
func Intersects(a, b, c, d Point) bool {
	det := (b.X-a.X)*(d.Y-c.Y) - (b.Y-a.Y)*(d.X-c.X)
	if det == 0 {
		return false
	}
	lambda := ((d.Y-c.Y)*(d.X-a.X) + (c.X-d.X)*(d.Y-a.Y)) / det
	gamma := ((a.Y-b.Y)*(d.X-a.X) + (b.X-a.X)*(d.Y-a.Y)) / det
	return 0 < lambda && lambda < 1 && 0 < gamma && gamma < 1
}
