/*
DESCRIPTION
  solve.go provides the linear homography solvers: an exact four point
  solver used for RANSAC hypotheses and a normalised direct linear
  transform used to fit a model to any number of correspondences.

AUTHORS
  AusOcean developers

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt.  If not, see http://www.gnu.org/licenses.
*/

package homography

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Thresholds used to detect degenerate point sets.
const (
	collinearEps = 1e-6  // Sine of the angle below which three points are collinear.
	spreadEps    = 1e-12 // Relative variance below which a point set is a line.
)

// similarity is an isotropic scaling and translation.
type similarity struct {
	s, cx, cy float64
}

// normalizer returns the similarity moving the centroid of pts to the
// origin and scaling their mean distance from it to sqrt(2). ok is false if
// all the points coincide.
func normalizer(pts []Point) (t similarity, ok bool) {
	xs, ys := coords(pts)
	cx, cy := stat.Mean(xs, nil), stat.Mean(ys, nil)
	var dist float64
	for _, p := range pts {
		dist += math.Hypot(p.X-cx, p.Y-cy)
	}
	dist /= float64(len(pts))
	if dist == 0 {
		return similarity{}, false
	}
	return similarity{s: math.Sqrt2 / dist, cx: cx, cy: cy}, true
}

func (t similarity) apply(p Point) Point {
	return Point{X: t.s * (p.X - t.cx), Y: t.s * (p.Y - t.cy)}
}

func (t similarity) matrix() Matrix {
	return Matrix{t.s, 0, -t.s * t.cx, 0, t.s, -t.s * t.cy, 0, 0, 1}
}

func (t similarity) inverse() Matrix {
	return Matrix{1 / t.s, 0, t.cx, 0, 1 / t.s, t.cy, 0, 0, 1}
}

func coords(pts []Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

func split(pairs []PointPair) (src, dst []Point) {
	src = make([]Point, len(pairs))
	dst = make([]Point, len(pairs))
	for i, p := range pairs {
		src[i], dst[i] = p.Src, p.Dst
	}
	return src, dst
}

// onLine reports whether pts are coincident or lie on a single line, using
// the eigenvalues of their covariance.
func onLine(pts []Point) bool {
	xs, ys := coords(pts)
	sxx := stat.Variance(xs, nil)
	syy := stat.Variance(ys, nil)
	sxy := stat.Covariance(xs, ys, nil)
	tr := sxx + syy
	if tr == 0 {
		return true
	}
	disc := math.Sqrt(math.Max((sxx-syy)*(sxx-syy)+4*sxy*sxy, 0))
	small := (tr - disc) / 2
	large := (tr + disc) / 2
	return small <= spreadEps*large
}

// collinear reports whether a, b and c lie on a line, or two of them
// coincide.
func collinear(a, b, c Point) bool {
	d1x, d1y := b.X-a.X, b.Y-a.Y
	d2x, d2y := c.X-a.X, c.Y-a.Y
	cross := math.Abs(d1x*d2y - d1y*d2x)
	return cross <= collinearEps*math.Hypot(d1x, d1y)*math.Hypot(d2x, d2y)
}

// degenerateSample reports whether any three of the four points on either
// side of the sample are collinear.
func degenerateSample(s *[4]PointPair) bool {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			for k := j + 1; k < 4; k++ {
				if collinear(s[i].Src, s[j].Src, s[k].Src) || collinear(s[i].Dst, s[j].Dst, s[k].Dst) {
					return true
				}
			}
		}
	}
	return false
}

// solveMinimal returns the homography mapping the four sources of s exactly
// onto their destinations. The points are normalised and the bottom right
// element fixed at one, leaving an 8x8 linear system.
func solveMinimal(s *[4]PointPair) (Matrix, bool) {
	src, dst := split(s[:])
	ts, ok := normalizer(src)
	if !ok {
		return Matrix{}, false
	}
	td, ok := normalizer(dst)
	if !ok {
		return Matrix{}, false
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := range s {
		p, q := ts.apply(src[i]), td.apply(dst[i])
		a.SetRow(2*i, []float64{p.X, p.Y, 1, 0, 0, 0, -q.X * p.X, -q.X * p.Y})
		a.SetRow(2*i+1, []float64{0, 0, 0, p.X, p.Y, 1, -q.Y * p.X, -q.Y * p.Y})
		b.SetVec(2*i, q.X)
		b.SetVec(2*i+1, q.Y)
	}

	var x mat.VecDense
	err := x.SolveVec(a, b)
	if err != nil {
		return Matrix{}, false
	}
	var hn Matrix
	for i := 0; i < 8; i++ {
		hn[i] = x.AtVec(i)
	}
	hn[8] = 1
	return denormalize(hn, ts, td)
}

// solveDLT returns the least squares homography for four or more pairs
// using the normalised direct linear transform. The solution is the right
// singular vector of the smallest singular value of the design matrix.
func solveDLT(pairs []PointPair) (Matrix, bool) {
	if len(pairs) < 4 {
		return Matrix{}, false
	}
	src, dst := split(pairs)
	ts, ok := normalizer(src)
	if !ok {
		return Matrix{}, false
	}
	td, ok := normalizer(dst)
	if !ok {
		return Matrix{}, false
	}

	a := mat.NewDense(2*len(pairs), 9, nil)
	for i := range pairs {
		p, q := ts.apply(src[i]), td.apply(dst[i])
		a.SetRow(2*i, []float64{-p.X, -p.Y, -1, 0, 0, 0, q.X * p.X, q.X * p.Y, q.X})
		a.SetRow(2*i+1, []float64{0, 0, 0, -p.X, -p.Y, -1, q.Y * p.X, q.Y * p.Y, q.Y})
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFullV) {
		return Matrix{}, false
	}
	var v mat.Dense
	svd.VTo(&v)

	var hn Matrix
	for i := range hn {
		hn[i] = v.At(i, 8)
	}
	return denormalize(hn, ts, td)
}

// denormalize maps a homography between normalised frames back to pixel
// frames.
func denormalize(hn Matrix, ts, td similarity) (Matrix, bool) {
	h := td.inverse().Mul(hn).Mul(ts.matrix()).Normalized()
	for _, v := range h {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Matrix{}, false
		}
	}
	return h, true
}
