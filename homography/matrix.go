/*
DESCRIPTION
  matrix.go provides the Matrix type, a 3x3 planar projective transform,
  and helpers to apply, compose and invert it.

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

// Package homography estimates planar projective transforms from point
// correspondences.
package homography

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/scanalign/alignerr"
)

// Point is a location in an image's pixel frame.
type Point struct {
	X, Y float64
}

// PointPair is a correspondence between a point in the source image and a
// point in the destination image.
type PointPair struct {
	Src, Dst Point
}

// Matrix is a homography in row major order. It maps homogeneous source
// coordinates (x, y, 1) to destination coordinates.
type Matrix [9]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Translation returns the transform that moves points by (dx, dy).
func Translation(dx, dy float64) Matrix {
	return Matrix{1, 0, dx, 0, 1, dy, 0, 0, 1}
}

// At returns the element at row r and column c.
func (h Matrix) At(r, c int) float64 { return h[3*r+c] }

// Apply maps (x, y) through h. ok is false if the point maps to infinity.
func (h Matrix) Apply(x, y float64) (u, v float64, ok bool) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 || math.IsNaN(w) {
		return 0, 0, false
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w, true
}

// Mul returns the composition h*g, which applies g first.
func (h Matrix) Mul(g Matrix) Matrix {
	var m Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[3*r+c] = h[3*r]*g[c] + h[3*r+1]*g[3+c] + h[3*r+2]*g[6+c]
		}
	}
	return m
}

// Det returns the determinant of h.
func (h Matrix) Det() float64 {
	return h[0]*(h[4]*h[8]-h[5]*h[7]) -
		h[1]*(h[3]*h[8]-h[5]*h[6]) +
		h[2]*(h[3]*h[7]-h[4]*h[6])
}

// Normalized returns h scaled so that its bottom right element is one. If
// that element is near zero, h is scaled to unit Frobenius norm instead.
func (h Matrix) Normalized() Matrix {
	s := h[8]
	if math.Abs(s) < 1e-12 {
		s = mat.Norm(h.Dense(), 2)
		if s == 0 {
			return h
		}
	}
	for i := range h {
		h[i] /= s
	}
	return h
}

// Inverse returns the inverse of h. A singular or numerically near
// singular h gives an error wrapping alignerr.ErrDegenerateConfiguration.
func (h Matrix) Inverse() (Matrix, error) {
	var inv mat.Dense
	err := inv.Inverse(h.Dense())
	if err != nil {
		return Matrix{}, fmt.Errorf("homography is not invertible: %v: %w", err, alignerr.ErrDegenerateConfiguration)
	}
	return FromDense(&inv).Normalized(), nil
}

// ApproxEqual reports whether h and g, both normalised, differ by no more
// than tol in any element.
func (h Matrix) ApproxEqual(g Matrix, tol float64) bool {
	hn, gn := h.Normalized(), g.Normalized()
	for i := range hn {
		if math.Abs(hn[i]-gn[i]) > tol {
			return false
		}
	}
	return true
}

// Dense returns h as a gonum matrix.
func (h Matrix) Dense() *mat.Dense {
	return mat.NewDense(3, 3, h[:])
}

// FromDense returns the Matrix held in the 3x3 matrix m.
func FromDense(m mat.Matrix) Matrix {
	var h Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[3*r+c] = m.At(r, c)
		}
	}
	return h
}

// String implements fmt.Stringer.
func (h Matrix) String() string {
	return fmt.Sprintf("%v", mat.Formatted(h.Dense(), mat.Squeeze()))
}
