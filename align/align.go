/*
DESCRIPTION
  align.go provides Aligner, which registers one image onto the frame of
  another by matching local features and fitting a homography to them.

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

// Package align registers a source image onto the coordinate frame of a
// destination image. Alignment runs feature detection on both images,
// matches descriptors with a ratio test, robustly estimates a homography
// from the matches and warps the source through it.
package align

import (
	"fmt"
	"image"
	"io"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/features"
	"github.com/ausocean/scanalign/homography"
	"github.com/ausocean/scanalign/match"
	"github.com/ausocean/scanalign/raster"
)

// Result is the outcome of a successful alignment.
type Result struct {
	// Aligned is the source warped into the destination frame. It has the
	// size of the destination image.
	Aligned image.Image

	// H maps source pixel coordinates to destination pixel coordinates.
	H homography.Matrix

	Source      *features.Set
	Destination *features.Set

	// Matches index Source keypoints with QueryIdx and Destination
	// keypoints with TrainIdx. Inliers[i] and Residuals[i] describe
	// Matches[i].
	Matches   []match.Correspondence
	Inliers   []bool
	Residuals []float64

	Stats Stats
}

// Aligner aligns image pairs. An Aligner holds no per call state, so one
// value may align several pairs concurrently provided its Backend allows
// it, as the Native backend does.
type Aligner struct {
	cfg     Config
	backend Backend
	log     logging.Logger
}

// NewAligner returns a new Aligner. Unless WithBackend is given, the
// backend named by the configuration is built after all options are
// applied. A nil logger discards all log output.
func NewAligner(log logging.Logger, opts ...Option) (*Aligner, error) {
	if log == nil {
		log = logging.New(logging.Fatal, io.Discard, true)
	}
	a := &Aligner{cfg: DefaultConfig(), log: log}
	for i, opt := range opts {
		err := opt(a)
		if err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}

	if a.backend != nil {
		return a, nil
	}
	var err error
	switch a.cfg.Backend {
	case BackendNative, "":
		a.backend, err = NewNative(a.cfg)
	case BackendOpenCV:
		a.backend, err = NewOpenCV(a.cfg)
	default:
		err = fmt.Errorf("backend %q: %w", a.cfg.Backend, alignerr.ErrInvalidOption)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s backend: %w", a.cfg.Backend, err)
	}
	return a, nil
}

// Config returns the configuration of the Aligner.
func (a *Aligner) Config() Config { return a.cfg }

// Align warps src into the frame of dst. Every failure is returned as an
// *alignerr.Error naming the stage that failed; no stage substitutes a
// default transform for one it could not compute.
func (a *Aligner) Align(src, dst image.Image) (*Result, error) {
	for _, img := range []image.Image{src, dst} {
		err := raster.CheckSize(img, a.cfg.MaxPixels)
		if err != nil {
			return nil, alignerr.Wrap(alignerr.StageExtract, err)
		}
	}

	srcSet, err := a.detect("source", src)
	if err != nil {
		return nil, err
	}
	dstSet, err := a.detect("destination", dst)
	if err != nil {
		return nil, err
	}

	matches, err := a.backend.MatchDescriptors(srcSet, dstSet)
	if err != nil {
		return nil, alignerr.Wrap(alignerr.StageMatch, err)
	}
	a.log.Debug("matched descriptors", "matches", len(matches), "ratio", a.cfg.Ratio)

	srcPts, dstPts := srcSet.Points(), dstSet.Points()
	pairs := make([]homography.PointPair, len(matches))
	for i, m := range matches {
		pairs[i] = homography.PointPair{Src: srcPts[m.QueryIdx], Dst: dstPts[m.TrainIdx]}
	}

	est, err := a.backend.EstimateHomography(pairs)
	if err != nil {
		a.log.Warning("could not estimate homography", "matches", len(matches), "error", err.Error())
		return nil, alignerr.Wrap(alignerr.StageEstimate, err)
	}
	a.log.Debug("estimated homography", "inliers", est.NumInliers, "iterations", est.Iterations, "H", est.H.String())

	out, err := a.backend.Warp(src, est.H, raster.Size(dst))
	if err != nil {
		return nil, alignerr.Wrap(alignerr.StageWarp, err)
	}

	res := &Result{
		Aligned:     out,
		H:           est.H,
		Source:      srcSet,
		Destination: dstSet,
		Matches:     matches,
		Inliers:     est.Inliers,
		Residuals:   est.Residuals,
	}
	res.Stats = newStats(res, est.Iterations)
	a.log.Info("aligned image", "keypoints", fmt.Sprintf("%d/%d", srcSet.Len(), dstSet.Len()),
		"matches", len(matches), "inliers", est.NumInliers, "meanResidual", res.Stats.MeanResidual)
	return res, nil
}

// detect runs feature detection on img and fails if nothing was found.
func (a *Aligner) detect(name string, img image.Image) (*features.Set, error) {
	set, err := a.backend.DetectFeatures(img)
	if err != nil {
		return nil, alignerr.Wrap(alignerr.StageExtract, err)
	}
	a.log.Debug("detected features", "image", name, "keypoints", set.Len())
	if set.Len() == 0 {
		return nil, alignerr.Errorf(alignerr.StageExtract, "%s image: %w", name, alignerr.ErrNoKeypoints)
	}
	return set, nil
}
