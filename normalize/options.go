/*
DESCRIPTION
  options.go provides the functional options accepted by New.

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

package normalize

import (
	"fmt"

	"golang.org/x/image/draw"

	"github.com/ausocean/scanalign/alignerr"
)

// Option is the function signature returned by option functions below for
// use in the Normalizer initialiser.
type Option func(*Normalizer) error

// WithMaxPixels returns an Option that sets the largest source image, in
// pixels, the Normalizer accepts. Zero disables the limit.
func WithMaxPixels(n int) Option {
	return func(nz *Normalizer) error {
		if n < 0 {
			return fmt.Errorf("max pixels %d: %w", n, alignerr.ErrInvalidOption)
		}
		nz.maxPixels = n
		return nil
	}
}

// WithRounding returns an Option that sets the rounding convention used for
// scaled dimensions and crop offsets.
func WithRounding(r Rounding) Option {
	return func(nz *Normalizer) error {
		if r != HalfEven && r != HalfUp {
			return fmt.Errorf("rounding %d: %w", r, alignerr.ErrInvalidOption)
		}
		nz.rounding = r
		return nil
	}
}

// WithInterpolator returns an Option that sets the resampling kernel, for
// example draw.CatmullRom or draw.ApproxBiLinear.
func WithInterpolator(i draw.Interpolator) Option {
	return func(nz *Normalizer) error {
		if i == nil {
			return fmt.Errorf("nil interpolator: %w", alignerr.ErrInvalidOption)
		}
		nz.interp = i
		return nil
	}
}
