/*
DESCRIPTION
  config.go provides Config, the tunable parameters of an alignment, and
  their defaults.

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
	"image/color"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/features"
	"github.com/ausocean/scanalign/homography"
	"github.com/ausocean/scanalign/match"
	"github.com/ausocean/scanalign/raster"
)

// Backend names.
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// Config holds the parameters of the alignment stages.
type Config struct {
	Backend string `yaml:"backend"` // "native" or "opencv".

	// Feature extraction.
	ScalesPerOctave   int     `yaml:"scalesperoctave"`
	Sigma             float64 `yaml:"sigma"`
	ContrastThreshold float64 `yaml:"contrastthreshold"`
	EdgeThreshold     float64 `yaml:"edgethreshold"`
	MaxPixels         int     `yaml:"maxpixels"`

	// Matching.
	Ratio float64 `yaml:"ratio"`

	// Estimation.
	Method     string  `yaml:"method"` // "ransac" or "allpoints".
	Threshold  float64 `yaml:"threshold"`
	MaxIters   int     `yaml:"maxiters"`
	Confidence float64 `yaml:"confidence"`
	MinInliers int     `yaml:"mininliers"`
	Seed       int64   `yaml:"seed"`

	// Resampling.
	Interpolation string `yaml:"interpolation"` // "bilinear" or "nearest".
	Background    string `yaml:"background"`    // "#rrggbb", "#rrggbbaa" or empty for transparent.
}

// DefaultConfig returns the default alignment parameters.
func DefaultConfig() Config {
	return Config{
		Backend:           BackendNative,
		ScalesPerOctave:   features.DefaultScalesPerOctave,
		Sigma:             features.DefaultSigma,
		ContrastThreshold: features.DefaultContrastThreshold,
		EdgeThreshold:     features.DefaultEdgeThreshold,
		MaxPixels:         raster.DefaultMaxPixels,
		Ratio:             match.DefaultRatio,
		Method:            homography.RANSAC.String(),
		Threshold:         homography.DefaultThreshold,
		MaxIters:          homography.DefaultMaxIters,
		Confidence:        homography.DefaultConfidence,
		MinInliers:        homography.DefaultMinInliers,
		Interpolation:     "bilinear",
	}
}

// BackgroundColor returns the parsed background colour.
func (c Config) BackgroundColor() (color.RGBA, error) {
	return ParseColor(c.Background)
}

// ParseColor parses "#rrggbb" as an opaque colour and "#rrggbbaa" as a
// colour with alpha. The empty string is transparent black.
func ParseColor(s string) (color.RGBA, error) {
	switch len(s) {
	case 0:
		return color.RGBA{}, nil
	case 7:
		c, err := colorful.Hex(s)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("colour %q: %v: %w", s, err, alignerr.ErrInvalidOption)
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
	case 9:
		c, err := ParseColor(s[:7])
		if err != nil {
			return c, err
		}
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("colour %q alpha: %v: %w", s, err, alignerr.ErrInvalidOption)
		}
		// Premultiply to match the color.RGBA representation.
		scale := func(v uint8) uint8 { return uint8(uint32(v) * uint32(a) / 0xff) }
		return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: uint8(a)}, nil
	}
	return color.RGBA{}, fmt.Errorf("colour %q: %w", s, alignerr.ErrInvalidOption)
}
