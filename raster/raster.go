/*
DESCRIPTION
  raster.go provides pixel format conversions and size checks used by the
  normalisation, feature extraction and resampling stages.

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

// Package raster provides conversions between image formats.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/ausocean/scanalign/alignerr"
)

// DefaultMaxPixels is the default upper bound on the number of pixels in an
// image accepted by the pipeline.
const DefaultMaxPixels = 400000000

// CheckSize returns an InvalidArgument error if img has no pixels, or has
// more than maxPixels pixels. A maxPixels of zero or less disables the limit.
func CheckSize(img image.Image, maxPixels int) error {
	if img == nil {
		return fmt.Errorf("nil image: %w", alignerr.ErrInvalidSize)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("image is %dx%d: %w", b.Dx(), b.Dy(), alignerr.ErrInvalidSize)
	}
	if maxPixels > 0 && int64(b.Dx())*int64(b.Dy()) > int64(maxPixels) {
		return fmt.Errorf("image is %dx%d, limit is %d pixels: %w", b.Dx(), b.Dy(), maxPixels, alignerr.ErrImageTooLarge)
	}
	return nil
}

// ToRGBA returns img as an *image.RGBA with bounds starting at the origin.
// If img is already such an image it is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// ToOpaqueRGBA returns a copy of img as three channel colour, that is an
// *image.RGBA with every pixel fully opaque. Transparent pixels are
// composited over black.
func ToOpaqueRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Over)
	return dst
}

// ToGray returns the luminance of img as an *image.Gray with bounds
// starting at the origin.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// Size returns the width and height of img as an image.Point.
func Size(img image.Image) image.Point {
	return img.Bounds().Size()
}
