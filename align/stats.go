/*
DESCRIPTION
  stats.go provides Stats, a summary of the quality of an alignment.

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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises an alignment. Residual statistics are over inliers only
// and are in destination pixels.
type Stats struct {
	SourceKeypoints      int
	DestinationKeypoints int
	Matches              int
	Inliers              int
	InlierRatio          float64
	MeanResidual         float64
	StdResidual          float64
	MaxResidual          float64
	Iterations           int
}

// newStats returns the Stats of res.
func newStats(res *Result, iters int) Stats {
	s := Stats{
		SourceKeypoints:      res.Source.Len(),
		DestinationKeypoints: res.Destination.Len(),
		Matches:              len(res.Matches),
		Iterations:           iters,
	}

	var in []float64
	for i, ok := range res.Inliers {
		if ok {
			in = append(in, res.Residuals[i])
		}
	}
	s.Inliers = len(in)
	if s.Matches > 0 {
		s.InlierRatio = float64(s.Inliers) / float64(s.Matches)
	}
	if len(in) == 0 {
		return s
	}
	s.MaxResidual = floats.Max(in)
	if len(in) == 1 {
		s.MeanResidual = in[0]
		return s
	}
	s.MeanResidual, s.StdResidual = stat.MeanStdDev(in, nil)
	return s
}

// String returns a one line summary of s.
func (s Stats) String() string {
	return fmt.Sprintf("keypoints: %d/%d, matches: %d, inliers: %d (%.1f%%), residual: %.3f±%.3f px (max %.3f), iterations: %d",
		s.SourceKeypoints, s.DestinationKeypoints, s.Matches, s.Inliers, 100*s.InlierRatio,
		s.MeanResidual, s.StdResidual, s.MaxResidual, s.Iterations)
}
