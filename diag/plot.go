/*
DESCRIPTION
  plot.go provides plots of match distances and reprojection residuals.

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

package diag

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/match"
)

// Plot constants.
const (
	plotSize     = 15 * vg.Centimeter
	residualBins = 30
)

// errNoData is returned when there is nothing to plot.
var errNoData = errors.New("no data to plot")

// PlotResiduals saves a histogram of the reprojection residuals of the
// inliers, and of the outliers if there are any, to the file at path. The
// image format is chosen by the extension of path. Non finite residuals are
// skipped.
func PlotResiduals(path string, residuals []float64, inliers []bool) error {
	if inliers != nil && len(inliers) != len(residuals) {
		return fmt.Errorf("have %d inlier flags for %d residuals: %w", len(inliers), len(residuals), alignerr.ErrInvalidOption)
	}
	var in, out plotter.Values
	for i, r := range residuals {
		if math.IsInf(r, 0) || math.IsNaN(r) {
			continue
		}
		if inliers == nil || inliers[i] {
			in = append(in, r)
		} else {
			out = append(out, r)
		}
	}
	if len(in) == 0 {
		return errNoData
	}

	return plotToFile(path, "Reprojection residuals", "Residual (px)", "Matches", func(p *plot.Plot) error {
		h, err := plotter.NewHist(in, residualBins)
		if err != nil {
			return fmt.Errorf("could not create inlier histogram: %w", err)
		}
		h.FillColor = plotutil.Color(0)
		p.Add(h)
		p.Legend.Add("inliers", h)
		if len(out) == 0 {
			return nil
		}
		h, err = plotter.NewHist(out, residualBins)
		if err != nil {
			return fmt.Errorf("could not create outlier histogram: %w", err)
		}
		h.FillColor = plotutil.Color(1)
		p.Add(h)
		p.Legend.Add("outliers", h)
		return nil
	})
}

// PlotDistances saves a plot of match descriptor distances, sorted in
// ascending order, to the file at path.
func PlotDistances(path string, matches []match.Correspondence) error {
	if len(matches) == 0 {
		return errNoData
	}
	x := make([]float64, len(matches))
	y := make([]float64, len(matches))
	for i, m := range matches {
		x[i] = float64(i)
		y[i] = m.Distance
	}
	sort.Float64s(y)

	return plotToFile(path, "Match distances", "Rank", "Descriptor distance", func(p *plot.Plot) error {
		return plotutil.AddLinePoints(p, "distance", plotterXY(x, y))
	})
}

// plotToFile creates a plot with the given title and x&y titles using the
// provided draw function, and then saves it to path.
func plotToFile(path, title, xTitle, yTitle string, draw func(*plot.Plot) error) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xTitle
	p.Y.Label.Text = yTitle
	err := draw(p)
	if err != nil {
		return fmt.Errorf("could not draw plot contents: %w", err)
	}
	if err := p.Save(plotSize, plotSize, path); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}

// plotterXY provides a plotter.XYs type value based on the given x and y data.
func plotterXY(x, y []float64) plotter.XYs {
	xy := make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy
}
