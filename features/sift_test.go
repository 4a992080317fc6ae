/*
DESCRIPTION
  sift_test.go tests the SIFT feature detector.

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
	"errors"
	"image"
	"image/color"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/internal/testimg"
)

func newSIFT(t *testing.T, opts ...SIFTOption) *SIFT {
	s, err := NewSIFT(opts...)
	if err != nil {
		t.Fatalf("could not create detector: %v", err)
	}
	return s
}

func TestExtractBlank(t *testing.T) {
	s := newSIFT(t)
	set, err := s.Extract(testimg.Uniform(120, 90, color.Gray{Y: 128}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("expected no keypoints in a blank image, got %d", set.Len())
	}
}

func TestExtractTiny(t *testing.T) {
	s := newSIFT(t)
	set, err := s.Extract(testimg.Scene(8, 8, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("expected no keypoints in an image smaller than one octave, got %d", set.Len())
	}
}

func TestExtractScene(t *testing.T) {
	s := newSIFT(t)
	img := testimg.Scene(200, 150, 1)
	set, err := s.Extract(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() < 20 {
		t.Fatalf("too few keypoints: %d", set.Len())
	}
	if len(set.Descriptors) != set.Len() {
		t.Fatalf("keypoint and descriptor counts differ: %d != %d", set.Len(), len(set.Descriptors))
	}

	for i, kp := range set.Keypoints {
		if kp.X < 0 || kp.Y < 0 || kp.X >= 200 || kp.Y >= 150 {
			t.Errorf("keypoint %d out of bounds: %+v", i, kp)
		}
		if kp.Angle < 0 || kp.Angle >= 360 {
			t.Errorf("keypoint %d angle out of range: %v", i, kp.Angle)
		}
		if kp.Size <= 0 {
			t.Errorf("keypoint %d has non-positive size: %v", i, kp.Size)
		}
		d := set.Descriptors[i]
		if len(d) != DescriptorLen {
			t.Fatalf("descriptor %d has length %d, want %d", i, len(d), DescriptorLen)
		}
		if n := floats.Norm(d, 2); math.Abs(n-1) > 1e-9 {
			t.Errorf("descriptor %d not unit length: %v", i, n)
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	s := newSIFT(t)
	img := testimg.Scene(160, 120, 2)
	a, err := s.Extract(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := s.Extract(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated extraction gave different results")
	}
}

// TestExtractTranslation checks that keypoints of two overlapping crops of
// one scene agree where neither crop's edges influence the result.
func TestExtractTranslation(t *testing.T) {
	const dx, dy = 16, 8
	canvas := testimg.Scene(480, 400, 3)
	a := testimg.Crop(canvas, image.Rect(40, 40, 440, 360))
	b := testimg.Crop(canvas, image.Rect(40-dx, 40-dy, 440-dx, 360-dy))

	s := newSIFT(t)
	setA, err := s.Extract(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	setB, err := s.Extract(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	safe := image.Rect(100, 100, 284, 212)
	var checked, found int
	for i, kp := range setA.Keypoints {
		if kp.Octave != 0 || !image.Pt(int(kp.X), int(kp.Y)).In(safe) {
			continue
		}
		checked++
		if hasMatch(setB, kp.X+dx, kp.Y+dy, setA.Descriptors[i], 0.01) {
			found++
		}
	}
	if checked < 10 {
		t.Fatalf("too few keypoints to check: %d", checked)
	}
	if frac := float64(found) / float64(checked); frac < 0.9 {
		t.Errorf("only %d of %d keypoints found after translation", found, checked)
	}
}

// TestExtractRotation checks that keypoints and descriptors are preserved
// by a quarter turn of the image.
func TestExtractRotation(t *testing.T) {
	a := testimg.Scene(160, 120, 4)
	b := rotate90(a)
	h := float64(a.Rect.Dy())

	s := newSIFT(t)
	setA, err := s.Extract(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	setB, err := s.Extract(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var checked, found int
	for i, kp := range setA.Keypoints {
		if kp.Octave != 0 {
			continue
		}
		checked++
		if hasMatch(setB, h-1-kp.Y, kp.X, setA.Descriptors[i], 1e-3) {
			found++
		}
	}
	if checked < 10 {
		t.Fatalf("too few keypoints to check: %d", checked)
	}
	if frac := float64(found) / float64(checked); frac < 0.8 {
		t.Errorf("only %d of %d keypoints found after rotation", found, checked)
	}
}

func TestExtractInvalid(t *testing.T) {
	s := newSIFT(t, WithMaxPixels(100))
	_, err := s.Extract(testimg.Scene(20, 20, 1))
	if !errors.Is(err, alignerr.ErrImageTooLarge) {
		t.Errorf("expected ErrImageTooLarge. Got: %v", err)
	}
	if alignerr.StageOf(err) != alignerr.StageExtract {
		t.Errorf("expected extract stage. Got: %q", alignerr.StageOf(err))
	}

	for i, opt := range []SIFTOption{
		WithScalesPerOctave(0),
		WithSigma(0.4),
		WithContrastThreshold(-1),
		WithEdgeThreshold(0),
		WithMaxPixels(-1),
	} {
		_, err := NewSIFT(opt)
		if !errors.Is(err, alignerr.InvalidArgument) {
			t.Errorf("expected InvalidArgument from option %d. Got: %v", i, err)
		}
	}
}

// hasMatch reports whether set has a keypoint within tol of (x, y) on both
// axes whose descriptor is within tol of d.
func hasMatch(set *Set, x, y float64, d Descriptor, tol float64) bool {
	for i, kp := range set.Keypoints {
		if math.Abs(kp.X-x) <= tol && math.Abs(kp.Y-y) <= tol &&
			floats.Distance(set.Descriptors[i], d, 2) < tol {
			return true
		}
	}
	return false
}

// rotate90 returns img turned a quarter turn clockwise.
func rotate90(img *image.RGBA) *image.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetRGBA(h-1-y, x, img.RGBAAt(x, y))
		}
	}
	return dst
}
