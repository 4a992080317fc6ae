/*
DESCRIPTION
  warp.go provides Warper, which resamples an image through a homography
  onto a canvas of a given size using backward mapping.

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

// Package warp applies perspective transforms to images.
package warp

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/homography"
	"github.com/ausocean/scanalign/raster"
)

// Interpolation selects how source pixels are sampled.
type Interpolation int

// Interpolation methods.
const (
	Bilinear Interpolation = iota
	Nearest
)

// ParseInterpolation returns the Interpolation named by s ("bilinear" or
// "nearest").
func ParseInterpolation(s string) (Interpolation, error) {
	switch s {
	case "bilinear", "":
		return Bilinear, nil
	case "nearest":
		return Nearest, nil
	}
	return 0, fmt.Errorf("interpolation %q: %w", s, alignerr.ErrInvalidOption)
}

func (i Interpolation) String() string {
	if i == Nearest {
		return "nearest"
	}
	return "bilinear"
}

// Warper resamples images through homographies.
type Warper struct {
	background color.RGBA
	interp     Interpolation
}

// Option is the function signature returned by option functions below for
// use in the Warper initialiser.
type Option func(*Warper) error

// WithBackground returns an Option that sets the colour of output pixels
// that map outside the source image. The default is transparent black.
func WithBackground(c color.Color) Option {
	return func(w *Warper) error {
		if c == nil {
			return fmt.Errorf("nil background: %w", alignerr.ErrInvalidOption)
		}
		w.background = color.RGBAModel.Convert(c).(color.RGBA)
		return nil
	}
}

// WithInterpolation returns an Option that sets the sampling method.
func WithInterpolation(i Interpolation) Option {
	return func(w *Warper) error {
		if i != Bilinear && i != Nearest {
			return fmt.Errorf("interpolation %d: %w", i, alignerr.ErrInvalidOption)
		}
		w.interp = i
		return nil
	}
}

// New returns a new Warper.
func New(opts ...Option) (*Warper, error) {
	w := &Warper{interp: Bilinear}
	for i, opt := range opts {
		err := opt(w)
		if err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}
	return w, nil
}

// Background returns the background colour.
func (w *Warper) Background() color.RGBA { return w.background }

// Warp returns an image of the given size in which each pixel (x, y) is
// sampled from src at h⁻¹(x, y). Pixels whose sample falls outside the
// source take the background colour. h maps source coordinates to output
// coordinates and must be invertible.
func (w *Warper) Warp(src image.Image, h homography.Matrix, size image.Point) (*image.RGBA, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, alignerr.Errorf(alignerr.StageWarp, "output size %v: %w", size, alignerr.ErrInvalidSize)
	}
	err := raster.CheckSize(src, 0)
	if err != nil {
		return nil, alignerr.Wrap(alignerr.StageWarp, err)
	}
	inv, err := h.Inverse()
	if err != nil {
		return nil, alignerr.Wrap(alignerr.StageWarp, err)
	}

	in := raster.ToRGBA(src)
	out := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			c := w.background
			sx, sy, ok := inv.Apply(float64(x), float64(y))
			if ok && inside(in, sx, sy) {
				if w.interp == Nearest {
					c = nearest(in, sx, sy)
				} else {
					c = bilinear(in, sx, sy)
				}
			}
			out.SetRGBA(x, y, c)
		}
	}
	return out, nil
}

// inside reports whether (x, y) falls within the footprint of the pixels of
// img, whose centres are at integer coordinates.
func inside(img *image.RGBA, x, y float64) bool {
	w, h := float64(img.Rect.Dx()), float64(img.Rect.Dy())
	return x >= -0.5 && x < w-0.5 && y >= -0.5 && y < h-0.5
}

func nearest(img *image.RGBA, x, y float64) color.RGBA {
	return img.RGBAAt(clamp(int(math.Round(x)), img.Rect.Dx()), clamp(int(math.Round(y)), img.Rect.Dy()))
}

// bilinear interpolates the four pixels around (x, y), clamping at the
// image edges.
func bilinear(img *image.RGBA, x, y float64) color.RGBA {
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	w, h := img.Rect.Dx(), img.Rect.Dy()
	ix0, iy0 := clamp(int(x0), w), clamp(int(y0), h)
	ix1, iy1 := clamp(int(x0)+1, w), clamp(int(y0)+1, h)

	p00 := img.RGBAAt(ix0, iy0)
	p10 := img.RGBAAt(ix1, iy0)
	p01 := img.RGBAAt(ix0, iy1)
	p11 := img.RGBAAt(ix1, iy1)

	mix := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-fx) + float64(b)*fx
		bot := float64(c)*(1-fx) + float64(d)*fx
		return uint8(math.Round(top*(1-fy) + bot*fy))
	}
	return color.RGBA{
		R: mix(p00.R, p10.R, p01.R, p11.R),
		G: mix(p00.G, p10.G, p01.G, p11.G),
		B: mix(p00.B, p10.B, p01.B, p11.B),
		A: mix(p00.A, p10.A, p01.A, p11.A),
	}
}

func clamp(v, n int) int {
	return min(max(v, 0), n-1)
}
