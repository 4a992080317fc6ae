/*
DESCRIPTION
  matches.go provides DrawMatches, which renders feature matches between
  two images onto a side by side composite.

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

// Package diag provides diagnostic renderings of alignments. Nothing in
// the alignment pipeline depends on it.
package diag

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/features"
	"github.com/ausocean/scanalign/match"
	"github.com/ausocean/scanalign/raster"
)

// Drawing constants.
const (
	lineWidth    = 2.0
	markerRadius = 3.0
)

// outlierColor is used for matches rejected by the estimator.
var outlierColor = color.RGBA{R: 160, G: 160, B: 160, A: 200}

// DrawMatches returns src and dst placed side by side, src on the left,
// with a line joining the keypoints of each match. Matches index a with
// QueryIdx and b with TrainIdx. Inliers marks the matches that agree with
// the estimated homography; a nil inliers draws every match as an inlier.
// Outliers are drawn in grey unless inliersOnly is set, in which case they
// are omitted. Keypoints without a match are not drawn.
func DrawMatches(src, dst image.Image, a, b *features.Set, matches []match.Correspondence, inliers []bool, inliersOnly bool) (*image.RGBA, error) {
	for _, img := range []image.Image{src, dst} {
		err := raster.CheckSize(img, 0)
		if err != nil {
			return nil, err
		}
	}
	if inliers != nil && len(inliers) != len(matches) {
		return nil, fmt.Errorf("have %d inlier flags for %d matches: %w", len(inliers), len(matches), alignerr.ErrInvalidOption)
	}

	sw, sh := src.Bounds().Dx(), src.Bounds().Dy()
	dw, dh := dst.Bounds().Dx(), dst.Bounds().Dy()
	dc := gg.NewContext(sw+dw, max(sh, dh))
	dc.SetColor(color.Black)
	dc.Clear()
	dc.DrawImage(raster.ToRGBA(src), 0, 0)
	dc.DrawImage(raster.ToRGBA(dst), sw, 0)
	dc.SetLineWidth(lineWidth)

	for i, m := range matches {
		if m.QueryIdx < 0 || m.QueryIdx >= a.Len() || m.TrainIdx < 0 || m.TrainIdx >= b.Len() {
			return nil, fmt.Errorf("match %d (%d, %d) out of range: %w", i, m.QueryIdx, m.TrainIdx, alignerr.ErrInvalidOption)
		}
		in := inliers == nil || inliers[i]
		if !in && inliersOnly {
			continue
		}
		c := color.Color(outlierColor)
		if in {
			c = matchColor(i, len(matches))
		}

		// Pixel centres are at half integer coordinates in gg.
		p, q := a.Keypoints[m.QueryIdx], b.Keypoints[m.TrainIdx]
		x0, y0 := p.X+0.5, p.Y+0.5
		x1, y1 := q.X+0.5+float64(sw), q.Y+0.5
		dc.SetColor(c)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
		dc.DrawCircle(x0, y0, markerRadius)
		dc.DrawCircle(x1, y1, markerRadius)
		dc.Stroke()
	}
	return raster.ToRGBA(dc.Image()), nil
}

// matchColor returns a distinct, saturated colour for match i of n.
func matchColor(i, n int) color.Color {
	h := 360 * float64(i) / float64(max(n, 1))
	return colorful.Hsv(h, 0.9, 1).Clamped()
}
