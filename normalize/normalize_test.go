/*
DESCRIPTION
  normalize_test.go tests resizing and cropping to an exact size.

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

package normalize

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/internal/testimg"
)

func newNormalizer(t *testing.T, opts ...Option) *Normalizer {
	n, err := New((*logging.TestLogger)(t), opts...)
	if err != nil {
		t.Fatalf("could not create normalizer: %v", err)
	}
	return n
}

func TestResizeAndCropSize(t *testing.T) {
	n := newNormalizer(t)
	src := testimg.Scene(120, 80, 1)

	for _, origin := range []CropOrigin{Top, Middle, Bottom} {
		for i, size := range []image.Point{
			{60, 60},
			{200, 50},
			{30, 90},
			{120, 80},
			{61, 41},
			{1, 1},
			{240, 160},
		} {
			out, err := n.ResizeAndCrop(src, size, origin)
			if err != nil {
				t.Fatalf("unexpected error for test %d origin %s: %v", i, origin, err)
			}
			if got := out.Rect.Size(); got != size {
				t.Errorf("did not get expected size from test: %d origin %s. Got: %v, Want: %v", i, origin, got, size)
			}
		}
	}
}

func TestResizeAndCropIdentity(t *testing.T) {
	n := newNormalizer(t)
	src := testimg.Scene(64, 48, 2)

	out, err := n.ResizeAndCrop(src, image.Pt(64, 48), Middle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := testimg.MeanAbsDiff(src, out, src.Rect); d != 0 {
		t.Errorf("identity resize changed the image, mean difference: %v", d)
	}
}

func TestResizeAndCropInvalid(t *testing.T) {
	n := newNormalizer(t, WithMaxPixels(1000))
	src := testimg.Scene(20, 20, 3)

	tests := []struct {
		img    image.Image
		size   image.Point
		origin CropOrigin
		want   error
	}{
		{img: src, size: image.Pt(10, 10), origin: "left", want: alignerr.ErrInvalidCropOrigin},
		{img: src, size: image.Pt(20, 20), origin: "", want: alignerr.ErrInvalidCropOrigin},
		{img: src, size: image.Pt(0, 10), origin: Top, want: alignerr.ErrInvalidSize},
		{img: src, size: image.Pt(10, -1), origin: Top, want: alignerr.ErrInvalidSize},
		{img: image.NewRGBA(image.Rect(0, 0, 0, 0)), size: image.Pt(10, 10), origin: Top, want: alignerr.ErrInvalidSize},
		{img: testimg.Scene(40, 40, 3), size: image.Pt(10, 10), origin: Top, want: alignerr.ErrImageTooLarge},
	}

	for i, test := range tests {
		out, err := n.ResizeAndCrop(test.img, test.size, test.origin)
		if !errors.Is(err, test.want) {
			t.Errorf("did not get expected error from test: %d. Got: %v, Want: %v", i, err, test.want)
		}
		if !errors.Is(err, alignerr.InvalidArgument) {
			t.Errorf("expected InvalidArgument kind from test: %d. Got: %v", i, alignerr.KindOf(err))
		}
		if alignerr.StageOf(err) != alignerr.StageNormalize {
			t.Errorf("expected normalize stage from test: %d. Got: %q", i, alignerr.StageOf(err))
		}
		if out != nil {
			t.Errorf("expected no output from test: %d", i)
		}
	}
}

func TestScaledSize(t *testing.T) {
	tests := []struct {
		src, target image.Point
		rounding    Rounding
		want        image.Point
	}{
		{src: image.Pt(100, 50), target: image.Pt(100, 50), want: image.Pt(100, 50)},
		{src: image.Pt(100, 50), target: image.Pt(50, 25), want: image.Pt(50, 25)},
		{src: image.Pt(100, 50), target: image.Pt(50, 50), want: image.Pt(100, 50)},
		{src: image.Pt(100, 50), target: image.Pt(100, 10), want: image.Pt(100, 50)},
		{src: image.Pt(4, 3), target: image.Pt(10, 5), want: image.Pt(10, 8)},  // 7.5 rounds to 8.
		{src: image.Pt(8, 5), target: image.Pt(10, 5), want: image.Pt(10, 6)},  // 6.25 rounds to 6.
		{src: image.Pt(4, 1), target: image.Pt(10, 2), want: image.Pt(10, 2)},  // 2.5 rounds to 2.
		{src: image.Pt(5, 1), target: image.Pt(10, 5), want: image.Pt(25, 5)},
		{src: image.Pt(4, 1), target: image.Pt(10, 2), rounding: HalfUp, want: image.Pt(10, 3)},
	}

	for i, test := range tests {
		got := ScaledSize(test.src, test.target, test.rounding)
		if got != test.want {
			t.Errorf("did not get expected result from test: %d. Got: %v, Want: %v", i, got, test.want)
		}
	}
}

func TestCropBox(t *testing.T) {
	tests := []struct {
		scaled, size image.Point
		origin       CropOrigin
		rounding     Rounding
		want         image.Rectangle
	}{
		{scaled: image.Pt(10, 20), size: image.Pt(10, 10), origin: Top, want: image.Rect(0, 0, 10, 10)},
		{scaled: image.Pt(10, 20), size: image.Pt(10, 10), origin: Middle, want: image.Rect(0, 5, 10, 15)},
		{scaled: image.Pt(10, 20), size: image.Pt(10, 10), origin: Bottom, want: image.Rect(0, 10, 10, 20)},
		{scaled: image.Pt(20, 10), size: image.Pt(10, 10), origin: Top, want: image.Rect(0, 0, 10, 10)},
		{scaled: image.Pt(20, 10), size: image.Pt(10, 10), origin: Middle, want: image.Rect(5, 0, 15, 10)},
		{scaled: image.Pt(20, 10), size: image.Pt(10, 10), origin: Bottom, want: image.Rect(10, 0, 20, 10)},
		{scaled: image.Pt(10, 13), size: image.Pt(10, 10), origin: Middle, want: image.Rect(0, 2, 10, 12)}, // 1.5 rounds to 2.
		{scaled: image.Pt(10, 15), size: image.Pt(10, 10), origin: Middle, want: image.Rect(0, 2, 10, 12)}, // 2.5 rounds to 2.
		{scaled: image.Pt(10, 15), size: image.Pt(10, 10), origin: Middle, rounding: HalfUp, want: image.Rect(0, 3, 10, 13)},
		{scaled: image.Pt(10, 10), size: image.Pt(10, 10), origin: Bottom, want: image.Rect(0, 0, 10, 10)},
	}

	for i, test := range tests {
		got, err := CropBox(test.scaled, test.size, test.origin, test.rounding)
		if err != nil {
			t.Fatalf("unexpected error for test %d: %v", i, err)
		}
		if got != test.want {
			t.Errorf("did not get expected result from test: %d. Got: %v, Want: %v", i, got, test.want)
		}
		if got.Size() != test.size {
			t.Errorf("crop box for test %d has wrong size. Got: %v, Want: %v", i, got.Size(), test.size)
		}
	}

	_, err := CropBox(image.Pt(5, 5), image.Pt(10, 10), Top, HalfEven)
	if !errors.Is(err, alignerr.ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize for undersized crop. Got: %v", err)
	}
}

// TestCropOrigin checks that each origin keeps the expected band of a
// source whose rows are coloured by position.
func TestCropOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, color.RGBA{R: uint8(y / 10 * 100), A: 255})
		}
	}
	n := newNormalizer(t)

	for origin, want := range map[CropOrigin]uint8{Top: 0, Middle: 100, Bottom: 200} {
		out, err := n.ResizeAndCrop(src, image.Pt(10, 10), origin)
		if err != nil {
			t.Fatalf("unexpected error for origin %s: %v", origin, err)
		}
		if got := out.RGBAAt(5, 5).R; got != want {
			t.Errorf("did not get expected band for origin %s. Got: %d, Want: %d", origin, got, want)
		}
	}
}

func TestResizeIsOpaque(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	n := newNormalizer(t)
	out, err := n.ResizeAndCrop(src, image.Pt(4, 4), Middle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if a := out.RGBAAt(x, y).A; a != 255 {
				t.Fatalf("pixel (%d,%d) not opaque, alpha: %d", x, y, a)
			}
		}
	}
}

func TestParse(t *testing.T) {
	if _, err := ParseCropOrigin("middle"); err != nil {
		t.Errorf("unexpected error parsing middle: %v", err)
	}
	if _, err := ParseCropOrigin("centre"); !errors.Is(err, alignerr.InvalidArgument) {
		t.Errorf("expected InvalidArgument parsing centre. Got: %v", err)
	}
	if r, err := ParseRounding("halfup"); err != nil || r != HalfUp {
		t.Errorf("unexpected result parsing halfup. Got: %v, %v", r, err)
	}
	if _, err := New(nil, WithMaxPixels(-1)); !errors.Is(err, alignerr.ErrInvalidOption) {
		t.Errorf("expected ErrInvalidOption for negative max pixels. Got: %v", err)
	}
}
