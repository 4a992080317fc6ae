/*
DESCRIPTION
  plane.go provides a single channel floating point image used to build
  the scale space pyramid.

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

package features

import (
	"image"
	"math"

	"gonum.org/v1/gonum/floats"
)

// plane is a row major grid of intensities.
type plane struct {
	w, h int
	pix  []float64
}

func newPlane(w, h int) *plane {
	return &plane{w: w, h: h, pix: make([]float64, w*h)}
}

// planeFromGray returns the intensities of g scaled to [0, 1].
func planeFromGray(g *image.Gray) *plane {
	b := g.Bounds()
	p := newPlane(b.Dx(), b.Dy())
	for y := 0; y < p.h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+p.w]
		for x, v := range row {
			p.pix[y*p.w+x] = float64(v) / 255
		}
	}
	return p
}

func (p *plane) at(x, y int) float64 { return p.pix[y*p.w+x] }

// clamped returns the value at (x, y) with coordinates clamped to the plane.
func (p *plane) clamped(x, y int) float64 {
	x = min(max(x, 0), p.w-1)
	y = min(max(y, 0), p.h-1)
	return p.pix[y*p.w+x]
}

// gaussianKernel returns a normalised one dimensional Gaussian kernel of
// radius ceil(3 sigma).
func gaussianKernel(sigma float64) []float64 {
	r := max(int(math.Ceil(3*sigma)), 1)
	k := make([]float64, 2*r+1)
	for i := range k {
		d := float64(i - r)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(k), k)
	return k
}

// blur returns p convolved with a Gaussian of the given sigma. Edges are
// handled by clamping.
func (p *plane) blur(sigma float64) *plane {
	k := gaussianKernel(sigma)
	r := len(k) / 2

	tmp := newPlane(p.w, p.h)
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			var sum float64
			for i, kv := range k {
				sum += kv * p.clamped(x+i-r, y)
			}
			tmp.pix[y*p.w+x] = sum
		}
	}

	out := newPlane(p.w, p.h)
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			var sum float64
			for i, kv := range k {
				sum += kv * tmp.clamped(x, y+i-r)
			}
			out.pix[y*p.w+x] = sum
		}
	}
	return out
}

// halve returns every second pixel of every second row of p.
func (p *plane) halve() *plane {
	out := newPlane(p.w/2, p.h/2)
	for y := 0; y < out.h; y++ {
		for x := 0; x < out.w; x++ {
			out.pix[y*out.w+x] = p.at(2*x, 2*y)
		}
	}
	return out
}

// sub returns p - q.
func (p *plane) sub(q *plane) *plane {
	out := newPlane(p.w, p.h)
	floats.SubTo(out.pix, p.pix, q.pix)
	return out
}
