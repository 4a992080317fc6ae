/*
DESCRIPTION
  testimg.go provides deterministic synthetic scenes for use in tests of
  the feature extraction and alignment packages.

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

// Package testimg generates synthetic test images.
package testimg

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"

	"github.com/fogleman/gg"
)

// Scene returns a w by h image of randomly placed, coloured and rotated
// discs, ellipses and rectangles on a mid grey background. The same seed
// always gives the same image.
func Scene(w, h int, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	dc := gg.NewContext(w, h)
	dc.SetRGB(0.5, 0.5, 0.5)
	dc.Clear()

	n := w * h / 300
	for i := 0; i < n; i++ {
		x := rng.Float64() * float64(w)
		y := rng.Float64() * float64(h)
		size := 3 + rng.Float64()*float64(min(w, h))/8
		v := rng.Float64()
		dc.SetRGB(v, math.Mod(v+0.3*rng.Float64(), 1), 1-v)

		dc.Push()
		dc.RotateAbout(rng.Float64()*math.Pi, x, y)
		switch rng.Intn(3) {
		case 0:
			dc.DrawCircle(x, y, size/2)
		case 1:
			dc.DrawEllipse(x, y, size/2, size/4+1)
		default:
			dc.DrawRectangle(x-size/2, y-size/3, size, 2*size/3)
		}
		dc.Fill()
		dc.Pop()
	}
	return Crop(dc.Image(), image.Rect(0, 0, w, h))
}

// Crop returns a copy of the region r of img with bounds starting at the
// origin.
func Crop(img image.Image, r image.Rectangle) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Rect, img, r.Min, draw.Src)
	return dst
}

// Uniform returns a w by h image filled with c.
func Uniform(w, h int, c color.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return dst
}

// MeanAbsDiff returns the mean absolute difference of the RGB channels of a
// and b over r.
func MeanAbsDiff(a, b image.Image, r image.Rectangle) float64 {
	var sum float64
	var n int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			ar, ag, ab, _ := a.At(x, y).RGBA()
			br, bg, bb, _ := b.At(x, y).RGBA()
			sum += math.Abs(float64(ar>>8)-float64(br>>8)) +
				math.Abs(float64(ag>>8)-float64(bg>>8)) +
				math.Abs(float64(ab>>8)-float64(bb>>8))
			n += 3
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
