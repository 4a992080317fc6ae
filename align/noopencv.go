//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  noopencv.go replaces the OpenCV backend when built without OpenCV.

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

// NewOpenCV always fails; rebuild with the withcv tag to use OpenCV.
func NewOpenCV(cfg Config) (Backend, error) {
	return nil, fmt.Errorf("built without OpenCV support, use -tags withcv: %w", alignerr.ErrInvalidOption)
}
