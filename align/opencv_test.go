//go:build withcv
// +build withcv

/*
DESCRIPTION
  opencv_test.go tests alignment with the OpenCV backend.

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

package align

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/homography"
	"github.com/ausocean/scanalign/internal/testimg"
)

func openCVConfig() Config {
	cfg := DefaultConfig()
	cfg.Backend = BackendOpenCV
	return cfg
}

func TestOpenCVTranslation(t *testing.T) {
	const dx, dy = 16, 8
	canvas := testimg.Scene(480, 400, 5)
	src := testimg.Crop(canvas, image.Rect(dx, dy, dx+400, dy+320))
	dst := testimg.Crop(canvas, image.Rect(0, 0, 360, 300))

	a := newAligner(t, WithConfig(openCVConfig()))
	res, err := a.Align(src, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Aligned.Bounds().Size(); got != dst.Rect.Size() {
		t.Errorf("aligned image does not have destination size. Got: %v", got)
	}
	if math.Abs(res.H[2]-dx) > 0.5 || math.Abs(res.H[5]-dy) > 0.5 {
		t.Errorf("did not recover translation. Got: %v", res.H)
	}
}

func TestOpenCVIdentical(t *testing.T) {
	img := testimg.Scene(240, 180, 6)
	a := newAligner(t, WithConfig(openCVConfig()))
	res, err := a.Align(img, img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.H.ApproxEqual(homography.Identity(), 1e-3) {
		t.Errorf("expected identity homography. Got: %v", res.H)
	}
}

func TestOpenCVBlank(t *testing.T) {
	blank := testimg.Uniform(120, 90, color.Gray{Y: 200})
	a := newAligner(t, WithConfig(openCVConfig()))
	_, err := a.Align(blank, blank)
	if !errors.Is(err, alignerr.DegenerateInput) {
		t.Errorf("expected DegenerateInput. Got: %v", err)
	}
}

func TestNewOpenCVMethod(t *testing.T) {
	tests := []struct {
		method string
		want   gocv.HomographyMethod
	}{
		{method: "ransac", want: gocv.HomographyMethodRANSAC},
		{method: "", want: gocv.HomographyMethodRANSAC},
		{method: "allpoints", want: gocv.HomographyMethodAllPoints},
	}
	for i, test := range tests {
		cfg := openCVConfig()
		cfg.Method = test.method
		b, err := NewOpenCV(cfg)
		if err != nil {
			t.Fatalf("unexpected error from test %d: %v", i, err)
		}
		if got := b.(*OpenCV).method; got != test.want {
			t.Errorf("did not get expected method from test: %d. Got: %v, Want: %v", i, got, test.want)
		}
	}
}

func TestOpenCVAllPoints(t *testing.T) {
	pairs := make([]homography.PointPair, 0, 12)
	for i := 0; i < 12; i++ {
		x, y := float64(20*(i%4)), float64(30*(i/4)+i%3)
		pairs = append(pairs, homography.PointPair{
			Src: homography.Point{X: x, Y: y},
			Dst: homography.Point{X: x + 16, Y: y + 8},
		})
	}
	cfg := openCVConfig()
	cfg.Method = "allpoints"
	b, err := NewOpenCV(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := b.EstimateHomography(pairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.H.ApproxEqual(homography.Translation(16, 8), 1e-3) {
		t.Errorf("did not recover translation. Got: %v", res.H)
	}
	if res.NumInliers != len(pairs) {
		t.Errorf("expected every pair to be an inlier. Got: %d of %d", res.NumInliers, len(pairs))
	}
}
