/*
DESCRIPTION
  warp_test.go tests perspective resampling.

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

package warp

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/homography"
	"github.com/ausocean/scanalign/internal/testimg"
)

func newWarper(t *testing.T, opts ...Option) *Warper {
	w, err := New(opts...)
	if err != nil {
		t.Fatalf("could not create warper: %v", err)
	}
	return w
}

func TestWarpIdentity(t *testing.T) {
	src := testimg.Scene(64, 48, 1)
	for _, interp := range []Interpolation{Bilinear, Nearest} {
		w := newWarper(t, WithInterpolation(interp))
		out, err := w.Warp(src, homography.Identity(), src.Rect.Size())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d := testimg.MeanAbsDiff(src, out, src.Rect); d != 0 {
			t.Errorf("%v identity warp changed the image, mean difference: %v", interp, d)
		}
	}
}

func TestWarpTranslation(t *testing.T) {
	const dx, dy = 5, 3
	src := testimg.Scene(40, 30, 2)
	bg := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	w := newWarper(t, WithBackground(bg))

	out, err := w.Warp(src, homography.Translation(dx, dy), image.Pt(50, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Rect.Size() != image.Pt(50, 20) {
		t.Fatalf("did not get expected output size. Got: %v", out.Rect.Size())
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 50; x++ {
			want := bg
			if x >= dx && y >= dy && x-dx < 40 {
				want = src.RGBAAt(x-dx, y-dy)
			}
			if got := out.RGBAAt(x, y); got != want {
				t.Fatalf("unexpected pixel at (%d,%d). Got: %v, Want: %v", x, y, got, want)
			}
		}
	}
}

func TestWarpBilinear(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 200, A: 255})
	w := newWarper(t)

	out, err := w.Warp(src, homography.Translation(-0.5, 0), image.Pt(1, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 100, A: 255}) {
		t.Errorf("did not get interpolated pixel. Got: %v", got)
	}
}

func TestWarpDefaultBackground(t *testing.T) {
	src := testimg.Uniform(10, 10, color.White)
	w := newWarper(t)
	out, err := w.Warp(src, homography.Translation(100, 100), image.Pt(10, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.RGBAAt(5, 5); got != (color.RGBA{}) {
		t.Errorf("expected zero background. Got: %v", got)
	}
}

func TestWarpErrors(t *testing.T) {
	src := testimg.Uniform(10, 10, color.White)
	w := newWarper(t)

	tests := []struct {
		src  image.Image
		h    homography.Matrix
		size image.Point
		want error
	}{
		{src: src, h: homography.Matrix{1, 2, 3, 2, 4, 6, 0, 0, 1}, size: image.Pt(10, 10), want: alignerr.ErrDegenerateConfiguration},
		{src: src, h: homography.Matrix{}, size: image.Pt(10, 10), want: alignerr.ErrDegenerateConfiguration},
		{src: src, h: homography.Identity(), size: image.Pt(0, 10), want: alignerr.ErrInvalidSize},
		{src: image.NewRGBA(image.Rect(0, 0, 0, 0)), h: homography.Identity(), size: image.Pt(10, 10), want: alignerr.ErrInvalidSize},
	}

	for i, test := range tests {
		out, err := w.Warp(test.src, test.h, test.size)
		if !errors.Is(err, test.want) {
			t.Errorf("did not get expected error from test: %d. Got: %v, Want: %v", i, err, test.want)
		}
		if alignerr.StageOf(err) != alignerr.StageWarp {
			t.Errorf("expected warp stage from test: %d. Got: %q", i, alignerr.StageOf(err))
		}
		if out != nil {
			t.Errorf("expected no output from test: %d", i)
		}
	}

	if _, err := New(WithInterpolation(Interpolation(9))); !errors.Is(err, alignerr.InvalidArgument) {
		t.Errorf("expected InvalidArgument for unknown interpolation. Got: %v", err)
	}
}
