package peel

import "math"

// identityMatrix is the identity affine matrix.
var identityMatrix = [6]float64{1, 0, 0, 1, 0, 0}

// Transform places a layer on the canvas. TX and TY are canvas pixels,
// Rotation is in degrees, SX and SY are scale factors and Anchor is the
// rotation/scale pivot as a fraction of the layer's natural size.
type Transform struct {
	TX, TY   float64
	Rotation float64
	SX, SY   float64
	Anchor   Vec2
}

// IdentityTransform places a layer at the canvas origin, unrotated and unscaled.
var IdentityTransform = Transform{SX: 1, SY: 1}

// Translated returns t positioned at (x, y) with unit scale, no rotation and
// a top-left anchor.
func Translated(x, y float64) Transform {
	t := IdentityTransform
	t.TX = x
	t.TY = y
	return t
}

// checkTransform panics if t violates the positive-scale invariant.
func checkTransform(id string, t Transform) {
	if !(t.SX > 0) || !(t.SY > 0) {
		panic("peel: layer " + quote(id) + " has non-positive scale")
	}
}

// matrix computes the affine matrix mapping a layer's local frame to canvas
// space. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(TX, TY) -> Translate(pivot) -> Rotate -> Scale -> Translate(-pivot)
//
// where pivot = (Anchor.X * size.W, Anchor.Y * size.H).
func (t Transform) matrix(size Size) [6]float64 {
	sin, cos := math.Sincos(t.Rotation * math.Pi / 180)

	// Rotate * Scale:
	a := cos * t.SX
	b := sin * t.SX
	c := -sin * t.SY
	d := cos * t.SY

	px := t.Anchor.X * size.W
	py := t.Anchor.Y * size.H

	// Translate(-pivot), then back to the pivot plus the layer translation.
	return [6]float64{
		a, b, c, d,
		-a*px - c*py + px + t.TX,
		-b*px - d*py + py + t.TY,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityMatrix
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// rotateVec rotates v by deg degrees.
func rotateVec(v Vec2, deg float64) Vec2 {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return Vec2{cos*v.X - sin*v.Y, sin*v.X + cos*v.Y}
}

// --- Layer geometry ---

// Matrix returns the layer's local-to-canvas affine matrix.
func (l Layer) Matrix() [6]float64 {
	return l.Transform.matrix(l.NaturalSize)
}

// Pivot returns the canvas position of the layer's anchor.
func (l Layer) Pivot() Vec2 {
	x, y := transformPoint(l.Matrix(),
		l.Transform.Anchor.X*l.NaturalSize.W, l.Transform.Anchor.Y*l.NaturalSize.H)
	return Vec2{x, y}
}

// Corners returns the canvas positions of the layer's natural rectangle in
// the order top-left, top-right, bottom-right, bottom-left.
func (l Layer) Corners() [4]Vec2 {
	m := l.Matrix()
	w, h := l.NaturalSize.W, l.NaturalSize.H
	local := [4]Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}}
	var out [4]Vec2
	for i, p := range local {
		out[i].X, out[i].Y = transformPoint(m, p.X, p.Y)
	}
	return out
}

// Bounds returns the canvas-space AABB of the transformed layer.
func (l Layer) Bounds() Rect {
	c := l.Corners()
	minX, minY := c[0].X, c[0].Y
	maxX, maxY := minX, minY
	for _, p := range c[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// CanvasToLocal converts a canvas point into the layer's untransformed frame.
func (l Layer) CanvasToLocal(x, y float64) (lx, ly float64) {
	return transformPoint(invertAffine(l.Matrix()), x, y)
}

// ContainsPoint reports whether the canvas point (x, y) falls on the
// transformed layer. Edges count as inside.
func (l Layer) ContainsPoint(x, y float64) bool {
	w, h := l.NaturalSize.W, l.NaturalSize.H
	if w <= 0 || h <= 0 {
		return false
	}
	lx, ly := l.CanvasToLocal(x, y)
	return lx >= 0 && lx <= w && ly >= 0 && ly <= h
}
