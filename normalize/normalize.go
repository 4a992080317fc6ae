/*
DESCRIPTION
  normalize.go provides the geometric normaliser, which resizes an image
  to cover a target size while keeping its aspect ratio, and then crops it
  to exactly that size.

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

// Package normalize resizes and crops images to an exact size.
package normalize

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/ausocean/utils/logging"
	"golang.org/x/image/draw"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/raster"
)

// CropOrigin selects which part of the over-sized axis is kept when cropping.
type CropOrigin string

// Crop origins.
const (
	Top    CropOrigin = "top"
	Middle CropOrigin = "middle"
	Bottom CropOrigin = "bottom"
)

// ParseCropOrigin returns the CropOrigin named by s.
func ParseCropOrigin(s string) (CropOrigin, error) {
	o := CropOrigin(s)
	if !o.Valid() {
		return "", fmt.Errorf("crop origin %q: %w", s, alignerr.ErrInvalidCropOrigin)
	}
	return o, nil
}

// Valid reports whether o is one of the defined crop origins.
func (o CropOrigin) Valid() bool {
	switch o {
	case Top, Middle, Bottom:
		return true
	}
	return false
}

// Rounding is the convention used to round scaled dimensions and crop
// offsets to whole pixels.
type Rounding int

// Rounding conventions.
const (
	HalfEven Rounding = iota // Ties go to the even integer.
	HalfUp                   // Ties go away from zero.
)

// ParseRounding returns the Rounding named by s ("halfeven" or "halfup").
func ParseRounding(s string) (Rounding, error) {
	switch s {
	case "halfeven", "":
		return HalfEven, nil
	case "halfup":
		return HalfUp, nil
	}
	return 0, fmt.Errorf("rounding %q: %w", s, alignerr.ErrInvalidOption)
}

// Round rounds x to an integer using the convention r.
func (r Rounding) Round(x float64) int {
	if r == HalfUp {
		return int(math.Round(x))
	}
	return int(math.RoundToEven(x))
}

func (r Rounding) String() string {
	if r == HalfUp {
		return "halfup"
	}
	return "halfeven"
}

// Normalizer resizes and crops images. A Normalizer holds no per call state
// and may be used concurrently.
type Normalizer struct {
	maxPixels int
	rounding  Rounding
	interp    draw.Interpolator
	log       logging.Logger
}

// New returns a new Normalizer. A nil logger discards all log output.
func New(log logging.Logger, opts ...Option) (*Normalizer, error) {
	if log == nil {
		log = logging.New(logging.Fatal, io.Discard, true)
	}
	n := &Normalizer{
		maxPixels: raster.DefaultMaxPixels,
		rounding:  HalfEven,
		interp:    draw.CatmullRom,
		log:       log,
	}
	for i, opt := range opts {
		err := opt(n)
		if err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}
	return n, nil
}

// ResizeAndCrop scales img so that it covers size with its aspect ratio
// preserved, then crops the excess along the longer axis, keeping the part
// selected by origin. The result is fully opaque and exactly size pixels.
// Arguments are validated before any pixel work is done.
func (n *Normalizer) ResizeAndCrop(img image.Image, size image.Point, origin CropOrigin) (*image.RGBA, error) {
	if !origin.Valid() {
		return nil, alignerr.Errorf(alignerr.StageNormalize, "crop origin %q: %w", origin, alignerr.ErrInvalidCropOrigin)
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, alignerr.Errorf(alignerr.StageNormalize, "target size %v: %w", size, alignerr.ErrInvalidSize)
	}
	err := raster.CheckSize(img, n.maxPixels)
	if err != nil {
		return nil, alignerr.Wrap(alignerr.StageNormalize, err)
	}

	src := raster.ToOpaqueRGBA(img)
	scaled := ScaledSize(src.Rect.Size(), size, n.rounding)
	box, err := CropBox(scaled, size, origin, n.rounding)
	if err != nil {
		return nil, alignerr.Wrap(alignerr.StageNormalize, err)
	}
	n.log.Debug("normalizing image", "source", src.Rect.Size(), "scaled", scaled, "crop", box)

	resized := n.resize(src, scaled)
	if box == resized.Rect {
		return resized, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(out, out.Rect, resized, box.Min, draw.Src)
	return out, nil
}

// resize scales src to size. A resize to the source's own size is a copy.
func (n *Normalizer) resize(src *image.RGBA, size image.Point) *image.RGBA {
	if src.Rect.Size() == size {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	n.interp.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst
}

// ScaledSize returns the size src is scaled to so that it covers target with
// its aspect ratio preserved. Aspect ratios are compared exactly.
func ScaledSize(src, target image.Point, r Rounding) image.Point {
	// Compare target.X/target.Y with src.X/src.Y without division.
	wide := int64(target.X) * int64(src.Y)
	tall := int64(src.X) * int64(target.Y)
	switch {
	case wide > tall:
		h := r.Round(float64(target.X) * float64(src.Y) / float64(src.X))
		return image.Pt(target.X, max(h, target.Y))
	case wide < tall:
		w := r.Round(float64(target.Y) * float64(src.X) / float64(src.Y))
		return image.Pt(max(w, target.X), target.Y)
	default:
		return target
	}
}

// CropBox returns the region of an image of size scaled that is kept when
// cropping it to size using origin. scaled must cover size on both axes.
func CropBox(scaled, size image.Point, origin CropOrigin, r Rounding) (image.Rectangle, error) {
	if !origin.Valid() {
		return image.Rectangle{}, fmt.Errorf("crop origin %q: %w", origin, alignerr.ErrInvalidCropOrigin)
	}
	if size.X <= 0 || size.Y <= 0 || scaled.X < size.X || scaled.Y < size.Y {
		return image.Rectangle{}, fmt.Errorf("cannot crop %v to %v: %w", scaled, size, alignerr.ErrInvalidSize)
	}

	offset := func(extra int) int {
		switch origin {
		case Top:
			return 0
		case Bottom:
			return extra
		default:
			return r.Round(float64(extra) / 2)
		}
	}

	var at image.Point
	if scaled.Y > size.Y {
		at.Y = offset(scaled.Y - size.Y)
	}
	if scaled.X > size.X {
		at.X = offset(scaled.X - size.X)
	}
	return image.Rectangle{Min: at, Max: at.Add(size)}, nil
}
