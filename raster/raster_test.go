/*
DESCRIPTION
  raster_test.go tests image conversions and size checks.

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

package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ausocean/scanalign/alignerr"
)

func TestCheckSize(t *testing.T) {
	tests := []struct {
		img       image.Image
		maxPixels int
		want      error
	}{
		{img: image.NewGray(image.Rect(0, 0, 10, 10)), maxPixels: 100, want: nil},
		{img: image.NewGray(image.Rect(0, 0, 10, 10)), maxPixels: 0, want: nil},
		{img: image.NewGray(image.Rect(0, 0, 10, 11)), maxPixels: 100, want: alignerr.ErrImageTooLarge},
		{img: image.NewGray(image.Rect(0, 0, 0, 10)), maxPixels: 100, want: alignerr.ErrInvalidSize},
		{img: nil, maxPixels: 100, want: alignerr.ErrInvalidSize},
	}

	for i, test := range tests {
		err := CheckSize(test.img, test.maxPixels)
		if !errors.Is(err, test.want) && !(err == nil && test.want == nil) {
			t.Errorf("did not get expected result from test: %d. Got: %v, Want: %v", i, err, test.want)
		}
	}
}

func TestToRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 8, 7))
	src.Set(5, 5, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(7, 6, color.RGBA{R: 40, G: 50, B: 60, A: 255})

	dst := ToRGBA(src)
	if dst.Rect != image.Rect(0, 0, 3, 2) {
		t.Fatalf("unexpected bounds. Got: %v", dst.Rect)
	}
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("unexpected pixel at origin. Got: %v", got)
	}
	if got := dst.RGBAAt(2, 1); got != (color.RGBA{R: 40, G: 50, B: 60, A: 255}) {
		t.Errorf("unexpected pixel at corner. Got: %v", got)
	}
}

func TestToOpaqueRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 200, A: 0})
	src.Set(1, 0, color.NRGBA{G: 100, A: 255})

	dst := ToOpaqueRGBA(src)
	if got := dst.RGBAAt(0, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("transparent pixel not composited over black. Got: %v", got)
	}
	if got := dst.RGBAAt(1, 0); got != (color.RGBA{G: 100, A: 255}) {
		t.Errorf("opaque pixel changed. Got: %v", got)
	}
}

func TestToGray(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	if got := ToGray(src).GrayAt(0, 0).Y; got != 255 {
		t.Errorf("unexpected luminance. Got: %d, Want: 255", got)
	}
}
