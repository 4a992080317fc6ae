//go:build withcv
// +build withcv

/*
DESCRIPTION
  opencv.go provides OpenCV, a Backend that delegates every stage to OpenCV
  through gocv.

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
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/features"
	"github.com/ausocean/scanalign/homography"
	"github.com/ausocean/scanalign/match"
	"github.com/ausocean/scanalign/warp"
)

// OpenCV is a Backend using OpenCV's SIFT, brute force matcher,
// findHomography and warpPerspective. Detector tuning options of Config
// other than the pixel limit are left at OpenCV's defaults.
type OpenCV struct {
	ratio      float64
	method     gocv.HomographyMethod
	threshold  float64
	maxIters   int
	confidence float64
	interp     gocv.InterpolationFlags
	background color.RGBA
}

// NewOpenCV returns an OpenCV backend configured by cfg.
func NewOpenCV(cfg Config) (Backend, error) {
	if cfg.Ratio <= 0 || cfg.Ratio > 1 {
		return nil, fmt.Errorf("ratio %v not in (0, 1]: %w", cfg.Ratio, alignerr.ErrInvalidOption)
	}
	method, err := homography.ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	interp, err := warp.ParseInterpolation(cfg.Interpolation)
	if err != nil {
		return nil, err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}

	o := &OpenCV{
		ratio:      cfg.Ratio,
		method:     gocv.HomographyMethodRANSAC,
		threshold:  cfg.Threshold,
		maxIters:   cfg.MaxIters,
		confidence: cfg.Confidence,
		interp:     gocv.InterpolationLinear,
		background: bg,
	}
	if method == homography.AllPoints {
		o.method = gocv.HomographyMethodAllPoints
	}
	if interp == warp.Nearest {
		o.interp = gocv.InterpolationNearestNeighbor
	}
	return o, nil
}

// DetectFeatures implements Backend.
func (o *OpenCV) DetectFeatures(img image.Image) (*features.Set, error) {
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, alignerr.Errorf(alignerr.StageExtract, "could not convert image: %v: %w", err, alignerr.ErrInvalidSize)
	}
	defer m.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(m, &gray, gocv.ColorBGRToGray)

	sift := gocv.NewSIFT()
	defer sift.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	kps, desc := sift.DetectAndCompute(gray, mask)
	defer desc.Close()

	set := &features.Set{}
	for i, kp := range kps {
		d := make(features.Descriptor, desc.Cols())
		for j := range d {
			d[j] = float64(desc.GetFloatAt(i, j))
		}
		set.Add(features.Keypoint{
			X:        kp.X,
			Y:        kp.Y,
			Size:     kp.Size,
			Angle:    kp.Angle,
			Response: kp.Response,
			Octave:   kp.Octave,
		}, d)
	}
	return set, nil
}

// MatchDescriptors implements Backend.
func (o *OpenCV) MatchDescriptors(query, train *features.Set) ([]match.Correspondence, error) {
	if query.Len() == 0 || train.Len() < 2 {
		return nil, nil
	}
	q := descriptorMat(query.Descriptors)
	defer q.Close()
	t := descriptorMat(train.Descriptors)
	defer t.Close()

	bf := gocv.NewBFMatcher()
	defer bf.Close()
	knn := bf.KnnMatch(q, t, 2)

	lists := make([][]match.Correspondence, len(knn))
	for i, l := range knn {
		for _, m := range l {
			lists[i] = append(lists[i], match.Correspondence{QueryIdx: m.QueryIdx, TrainIdx: m.TrainIdx, Distance: m.Distance})
		}
	}
	return match.RatioTest(lists, o.ratio), nil
}

// EstimateHomography implements Backend.
func (o *OpenCV) EstimateHomography(pairs []homography.PointPair) (*homography.Result, error) {
	if len(pairs) < 4 {
		return nil, alignerr.Errorf(alignerr.StageEstimate, "have %d pairs: %w", len(pairs), alignerr.ErrInsufficientCorrespondences)
	}
	src := gocv.NewMatWithSize(len(pairs), 2, gocv.MatTypeCV32F)
	defer src.Close()
	dst := gocv.NewMatWithSize(len(pairs), 2, gocv.MatTypeCV32F)
	defer dst.Close()
	for i, p := range pairs {
		src.SetFloatAt(i, 0, float32(p.Src.X))
		src.SetFloatAt(i, 1, float32(p.Src.Y))
		dst.SetFloatAt(i, 0, float32(p.Dst.X))
		dst.SetFloatAt(i, 1, float32(p.Dst.Y))
	}

	mask := gocv.NewMat()
	defer mask.Close()
	hm := gocv.FindHomography(src, &dst, o.method, o.threshold, &mask, o.maxIters, o.confidence)
	defer hm.Close()
	if hm.Empty() {
		return nil, alignerr.Errorf(alignerr.StageEstimate, "findHomography returned no model: %w", alignerr.ErrEstimationFailure)
	}

	var h homography.Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[3*r+c] = hm.GetDoubleAt(r, c)
		}
	}
	h = h.Normalized()

	res := &homography.Result{
		H:         h,
		Inliers:   make([]bool, len(pairs)),
		Residuals: make([]float64, len(pairs)),
	}
	for i, p := range pairs {
		res.Residuals[i] = homography.Reprojection(h, p)
		res.Inliers[i] = o.method == gocv.HomographyMethodAllPoints || mask.GetUCharAt(i, 0) != 0
		if res.Inliers[i] {
			res.NumInliers++
		}
	}
	return res, nil
}

// Warp implements Backend.
func (o *OpenCV) Warp(img image.Image, h homography.Matrix, size image.Point) (image.Image, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, alignerr.Errorf(alignerr.StageWarp, "output size %v: %w", size, alignerr.ErrInvalidSize)
	}
	if _, err := h.Inverse(); err != nil {
		return nil, alignerr.Wrap(alignerr.StageWarp, err)
	}
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, alignerr.Errorf(alignerr.StageWarp, "could not convert image: %v: %w", err, alignerr.ErrInvalidSize)
	}
	defer src.Close()

	hm := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer hm.Close()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			hm.SetDoubleAt(r, c, h.At(r, c))
		}
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.WarpPerspectiveWithParams(src, &out, hm, size, o.interp, gocv.BorderConstant, o.background)
	return out.ToImage()
}

// descriptorMat packs descriptors into the rows of a 32 bit float Mat.
func descriptorMat(ds []features.Descriptor) gocv.Mat {
	m := gocv.NewMatWithSize(len(ds), len(ds[0]), gocv.MatTypeCV32F)
	for i, d := range ds {
		for j, v := range d {
			m.SetFloatAt(i, j, float32(v))
		}
	}
	return m
}
