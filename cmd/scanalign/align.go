/*
DESCRIPTION
  align.go provides the align subcommand.

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

package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ausocean/scanalign/align"
	"github.com/ausocean/scanalign/diag"
	"github.com/ausocean/scanalign/imageio"
)

// Output file prefixes.
const (
	alignedPrefix   = "aligned"
	matchesPrefix   = "matches"
	residualsPrefix = "residuals"
	distancesPrefix = "distances"
)

func newAlignCmd(a *app) *cobra.Command {
	var (
		outDir      string
		ratio       float64
		threshold   float64
		seed        int64
		backend     string
		method      string
		matches     bool
		plots       bool
		inliersOnly bool
	)

	cmd := &cobra.Command{
		Use:   "align <source> <destination>",
		Short: "Warp the source image into the frame of the destination image",
		Long: `Detect features in both images, match them with a ratio test, estimate a
homography and write the source warped to the size and frame of the
destination. Optionally write a visualisation of the matches and plots of
the match quality.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &a.cfg
			flags := cmd.Flags()
			if flags.Changed("out-dir") {
				c.Output.Dir = outDir
			}
			if flags.Changed("ratio") {
				c.Align.Ratio = ratio
			}
			if flags.Changed("threshold") {
				c.Align.Threshold = threshold
			}
			if flags.Changed("seed") {
				c.Align.Seed = seed
			}
			if flags.Changed("backend") {
				c.Align.Backend = backend
			}
			if flags.Changed("method") {
				c.Align.Method = method
			}
			if flags.Changed("matches") {
				c.Output.Matches = matches
			}
			if flags.Changed("plot") {
				c.Output.Plots = plots
			}
			return a.align(args[0], args[1], inliersOnly)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "results", "directory results are written to")
	cmd.Flags().Float64VarP(&ratio, "ratio", "r", align.DefaultConfig().Ratio, "ratio test threshold")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", align.DefaultConfig().Threshold, "inlier reprojection threshold in pixels")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed of the robust estimator")
	cmd.Flags().StringVar(&backend, "backend", align.BackendNative, "image processing backend (native|opencv)")
	cmd.Flags().StringVar(&method, "method", "ransac", "homography fitting method (ransac|allpoints)")
	cmd.Flags().BoolVar(&matches, "matches", true, "write the match visualisation")
	cmd.Flags().BoolVar(&plots, "plot", false, "write residual and match distance plots")
	cmd.Flags().BoolVar(&inliersOnly, "inliers-only", false, "draw only inlier matches")
	return cmd
}

// align aligns the image at srcPath onto the image at dstPath and writes
// the results to the output directory.
func (a *app) align(srcPath, dstPath string, inliersOnly bool) error {
	src, err := imageio.Load(srcPath)
	if err != nil {
		return err
	}
	dst, err := imageio.Load(dstPath)
	if err != nil {
		return err
	}

	aligner, err := align.NewAligner(a.log, align.WithConfig(a.cfg.Align))
	if err != nil {
		return fmt.Errorf("could not create aligner: %w", err)
	}
	res, err := aligner.Align(src, dst)
	if err != nil {
		a.log.Error("alignment failed", "source", srcPath, "destination", dstPath, "error", err.Error())
		return err
	}
	a.log.Info("alignment complete", "stats", res.Stats.String())

	out := a.cfg.Output
	err = os.MkdirAll(out.Dir, 0o755)
	if err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}
	name := func(prefix string) string {
		return filepath.Join(out.Dir, outputName(prefix, a.cfg.Align.Ratio, out.Format))
	}

	path := name(alignedPrefix)
	a.log.Info("saving aligned image", "path", path)
	err = imageio.Save(path, res.Aligned)
	if err != nil {
		return err
	}

	if out.Matches {
		img, err := diag.DrawMatches(src, dst, res.Source, res.Destination, res.Matches, res.Inliers, inliersOnly)
		if err != nil {
			return fmt.Errorf("could not draw matches: %w", err)
		}
		path := name(matchesPrefix)
		a.log.Info("saving matching image", "path", path)
		err = imageio.Save(path, img)
		if err != nil {
			return err
		}
	}

	if out.Plots {
		err = diag.PlotResiduals(filepath.Join(out.Dir, outputName(residualsPrefix, a.cfg.Align.Ratio, "png")), res.Residuals, res.Inliers)
		if err != nil {
			a.log.Warning("could not plot residuals", "error", err.Error())
		}
		err = diag.PlotDistances(filepath.Join(out.Dir, outputName(distancesPrefix, a.cfg.Align.Ratio, "png")), res.Matches)
		if err != nil {
			a.log.Warning("could not plot match distances", "error", err.Error())
		}
	}
	return nil
}

// outputName returns the file name of a result, tagged with the ratio test
// threshold, for example aligned_clr070.png.
func outputName(prefix string, ratio float64, ext string) string {
	return fmt.Sprintf("%s_clr%03d.%s", prefix, int(math.Round(ratio*100)), ext)
}
