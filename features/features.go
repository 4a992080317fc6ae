/*
DESCRIPTION
  features.go defines keypoints, descriptors and the Extractor interface
  implemented by feature detectors.

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

// Package features detects scale and rotation invariant keypoints in an
// image and computes a descriptor for each of them.
package features

import (
	"image"

	"github.com/ausocean/scanalign/homography"
)

// Keypoint is a distinctive location in an image. X and Y are in the pixel
// frame of the image it was detected in.
type Keypoint struct {
	X, Y     float64
	Size     float64 // Diameter of the meaningful neighbourhood.
	Angle    float64 // Dominant orientation in degrees, [0, 360).
	Response float64 // Strength of the detector response.
	Octave   int     // Pyramid octave the keypoint was found in.
}

// Descriptor is a fixed length vector describing the neighbourhood of a
// keypoint. Descriptors are compared by Euclidean distance.
type Descriptor []float64

// Set holds the keypoints detected in one image and their descriptors.
// Keypoints[i] is described by Descriptors[i].
type Set struct {
	Keypoints   []Keypoint
	Descriptors []Descriptor
}

// Len returns the number of keypoints in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Keypoints)
}

// Points returns the locations of the keypoints in the set, in order.
func (s *Set) Points() []homography.Point {
	if s == nil {
		return nil
	}
	pts := make([]homography.Point, len(s.Keypoints))
	for i, kp := range s.Keypoints {
		pts[i] = homography.Point{X: kp.X, Y: kp.Y}
	}
	return pts
}

// Add appends a keypoint and its descriptor to the set.
func (s *Set) Add(kp Keypoint, d Descriptor) {
	s.Keypoints = append(s.Keypoints, kp)
	s.Descriptors = append(s.Descriptors, d)
}

// Extractor detects keypoints in an image and describes them.
// Implementations must work on image luminance and must return an empty
// Set, rather than an error, for images without any features.
type Extractor interface {
	Extract(img image.Image) (*Set, error)
}
