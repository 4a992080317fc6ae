/*
DESCRIPTION
  options.go provides option functions for the Aligner.

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

	"github.com/ausocean/scanalign/alignerr"
)

// Option is the function signature returned by option functions below for
// use in the Aligner initialiser.
type Option func(*Aligner) error

// WithConfig returns an Option that replaces the whole configuration.
// Options that follow it adjust the given configuration.
func WithConfig(cfg Config) Option {
	return func(a *Aligner) error {
		a.cfg = cfg
		return nil
	}
}

// WithBackend returns an Option that sets the Backend used for every stage.
// The configuration then only bounds the input image size.
func WithBackend(b Backend) Option {
	return func(a *Aligner) error {
		if b == nil {
			return fmt.Errorf("nil backend: %w", alignerr.ErrInvalidOption)
		}
		a.backend = b
		return nil
	}
}

// WithRatio returns an Option that sets the ratio test threshold.
func WithRatio(r float64) Option {
	return func(a *Aligner) error {
		if r <= 0 || r > 1 {
			return fmt.Errorf("ratio %v not in (0, 1]: %w", r, alignerr.ErrInvalidOption)
		}
		a.cfg.Ratio = r
		return nil
	}
}

// WithThreshold returns an Option that sets the inlier reprojection
// threshold in pixels.
func WithThreshold(t float64) Option {
	return func(a *Aligner) error {
		if t <= 0 {
			return fmt.Errorf("threshold %v: %w", t, alignerr.ErrInvalidOption)
		}
		a.cfg.Threshold = t
		return nil
	}
}

// WithMaxPixels returns an Option that sets the largest accepted input
// image, in pixels. Zero disables the limit.
func WithMaxPixels(n int) Option {
	return func(a *Aligner) error {
		if n < 0 {
			return fmt.Errorf("max pixels %d: %w", n, alignerr.ErrInvalidOption)
		}
		a.cfg.MaxPixels = n
		return nil
	}
}

// WithSeed returns an Option that seeds the robust estimator.
func WithSeed(s int64) Option {
	return func(a *Aligner) error {
		a.cfg.Seed = s
		return nil
	}
}

// WithBackgroundColor returns an Option that sets the colour of warped
// pixels with no source, as "#rrggbb" or "#rrggbbaa".
func WithBackgroundColor(hex string) Option {
	return func(a *Aligner) error {
		_, err := ParseColor(hex)
		if err != nil {
			return err
		}
		a.cfg.Background = hex
		return nil
	}
}
