/*
DESCRIPTION
  backend.go defines the Backend interface, the capabilities the pipeline
  needs from an image processing implementation, and Native, the pure Go
  implementation of it.

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

	"github.com/ausocean/scanalign/features"
	"github.com/ausocean/scanalign/homography"
	"github.com/ausocean/scanalign/match"
	"github.com/ausocean/scanalign/warp"
)

// Backend provides the four stages of an alignment. Errors returned by a
// Backend should be classified with the alignerr package.
type Backend interface {
	// DetectFeatures returns the keypoints and descriptors of img.
	DetectFeatures(img image.Image) (*features.Set, error)

	// MatchDescriptors returns the ratio tested matches from query to
	// train.
	MatchDescriptors(query, train *features.Set) ([]match.Correspondence, error)

	// EstimateHomography robustly fits a homography to pairs.
	EstimateHomography(pairs []homography.PointPair) (*homography.Result, error)

	// Warp resamples img through h onto a canvas of the given size.
	Warp(img image.Image, h homography.Matrix, size image.Point) (image.Image, error)
}

// Native is a Backend built from this module's pure Go stages.
type Native struct {
	Extractor features.Extractor
	Matcher   *match.Matcher
	Estimator *homography.Estimator
	Warper    *warp.Warper
}

// NewNative returns a Native backend configured by cfg.
func NewNative(cfg Config) (*Native, error) {
	sift, err := features.NewSIFT(
		features.WithScalesPerOctave(cfg.ScalesPerOctave),
		features.WithSigma(cfg.Sigma),
		features.WithContrastThreshold(cfg.ContrastThreshold),
		features.WithEdgeThreshold(cfg.EdgeThreshold),
		features.WithMaxPixels(cfg.MaxPixels),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create feature extractor: %w", err)
	}

	m, err := match.New(match.WithRatio(cfg.Ratio))
	if err != nil {
		return nil, fmt.Errorf("could not create matcher: %w", err)
	}

	method, err := homography.ParseMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	est, err := homography.NewEstimator(
		homography.WithMethod(method),
		homography.WithThreshold(cfg.Threshold),
		homography.WithMaxIters(cfg.MaxIters),
		homography.WithConfidence(cfg.Confidence),
		homography.WithMinInliers(cfg.MinInliers),
		homography.WithSeed(cfg.Seed),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create estimator: %w", err)
	}

	interp, err := warp.ParseInterpolation(cfg.Interpolation)
	if err != nil {
		return nil, err
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		return nil, err
	}
	w, err := warp.New(warp.WithInterpolation(interp), warp.WithBackground(bg))
	if err != nil {
		return nil, fmt.Errorf("could not create warper: %w", err)
	}

	return &Native{Extractor: sift, Matcher: m, Estimator: est, Warper: w}, nil
}

// DetectFeatures implements Backend.
func (n *Native) DetectFeatures(img image.Image) (*features.Set, error) {
	return n.Extractor.Extract(img)
}

// MatchDescriptors implements Backend.
func (n *Native) MatchDescriptors(query, train *features.Set) ([]match.Correspondence, error) {
	return n.Matcher.Match(query.Descriptors, train.Descriptors), nil
}

// EstimateHomography implements Backend.
func (n *Native) EstimateHomography(pairs []homography.PointPair) (*homography.Result, error) {
	return n.Estimator.Estimate(pairs)
}

// Warp implements Backend.
func (n *Native) Warp(img image.Image, h homography.Matrix, size image.Point) (image.Image, error) {
	out, err := n.Warper.Warp(img, h, size)
	if err != nil {
		return nil, err
	}
	return out, nil
}
