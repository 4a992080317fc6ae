/*
DESCRIPTION
  descriptor.go provides orientation assignment and gradient histogram
  descriptors for SIFT keypoints.

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

package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Orientation assignment constants.
const (
	oriBins      = 36  // Histogram bins covering 360 degrees.
	oriSigma     = 1.5 // Gaussian weighting window, in units of keypoint scale.
	oriRadius    = 3 * oriSigma
	oriPeakRatio = 0.8 // Secondary peaks at least this high make extra keypoints.
)

// Descriptor constants.
const (
	descWidth    = 4   // Spatial bins along each axis.
	descBins     = 8   // Orientation bins per spatial bin.
	descScale    = 3   // Spatial bin width, in units of keypoint scale.
	descMagLimit = 0.2 // Normalised bin values are clamped to this.

	// DescriptorLen is the length of descriptors produced by SIFT.
	DescriptorLen = descWidth * descWidth * descBins
)

// gradient returns the central difference gradient of p at (x, y).
// Orientations are measured in image coordinates, with y pointing down.
func gradient(p *plane, x, y int) (gx, gy float64) {
	return p.at(x+1, y) - p.at(x-1, y), p.at(x, y+1) - p.at(x, y-1)
}

// orientationHistogram returns the smoothed, Gaussian weighted histogram of
// gradient orientations within radius of (x, y).
func orientationHistogram(p *plane, x, y, radius int, sigma float64) [oriBins]float64 {
	var raw [oriBins]float64
	expScale := -1 / (2 * sigma * sigma)
	for j := -radius; j <= radius; j++ {
		yy := y + j
		if yy <= 0 || yy >= p.h-1 {
			continue
		}
		for i := -radius; i <= radius; i++ {
			xx := x + i
			if xx <= 0 || xx >= p.w-1 {
				continue
			}
			gx, gy := gradient(p, xx, yy)
			w := math.Exp(float64(i*i+j*j) * expScale)
			bin := int(math.Round(math.Atan2(gy, gx) * oriBins / (2 * math.Pi)))
			bin = ((bin % oriBins) + oriBins) % oriBins
			raw[bin] += w * math.Hypot(gx, gy)
		}
	}

	var hist [oriBins]float64
	for i := range hist {
		at := func(k int) float64 { return raw[((i+k)%oriBins+oriBins)%oriBins] }
		hist[i] = (at(-2)+at(2))/16 + (at(-1)+at(1))*4/16 + at(0)*6/16
	}
	return hist
}

// dominantOrientations returns the interpolated angles, in radians in
// [0, 2pi), of histogram peaks within oriPeakRatio of the highest peak.
func dominantOrientations(hist [oriBins]float64) []float64 {
	top := floats.Max(hist[:])
	if top <= 0 {
		return nil
	}

	var angles []float64
	for i, c := range hist {
		l := hist[(i+oriBins-1)%oriBins]
		r := hist[(i+1)%oriBins]
		if c <= l || c <= r || c < oriPeakRatio*top {
			continue
		}
		bin := float64(i) + 0.5*(l-r)/(l-2*c+r)
		a := 2 * math.Pi * bin / oriBins
		a = math.Mod(a+2*math.Pi, 2*math.Pi)
		angles = append(angles, a)
	}
	return angles
}

// describeAt returns the descriptor of the neighbourhood of (x, y) in p,
// rotated by angle radians and scaled by scl. Samples are distributed over
// a descWidth x descWidth grid of orientation histograms with trilinear
// interpolation.
func describeAt(p *plane, x, y int, angle, scl float64) Descriptor {
	const d, n = descWidth, descBins

	histWidth := descScale * scl
	radius := int(math.Round(histWidth * math.Sqrt2 * (d + 1) * 0.5))
	radius = min(radius, int(math.Hypot(float64(p.w), float64(p.h))))
	cos := math.Cos(angle) / histWidth
	sin := math.Sin(angle) / histWidth
	binsPerRad := n / (2 * math.Pi)
	expScale := -1 / (d * d * 0.5)

	hist := make([]float64, (d+2)*(d+2)*n)
	for j := -radius; j <= radius; j++ {
		for i := -radius; i <= radius; i++ {
			// Offset in the keypoint frame, in units of histogram bins.
			u := cos*float64(i) + sin*float64(j)
			v := -sin*float64(i) + cos*float64(j)
			ub := u + d/2 - 0.5
			vb := v + d/2 - 0.5
			if ub <= -1 || ub >= d || vb <= -1 || vb >= d {
				continue
			}
			xx, yy := x+i, y+j
			if xx <= 0 || xx >= p.w-1 || yy <= 0 || yy >= p.h-1 {
				continue
			}

			gx, gy := gradient(p, xx, yy)
			ori := math.Mod(math.Atan2(gy, gx)-angle+4*math.Pi, 2*math.Pi)
			ob := ori * binsPerRad
			mag := math.Hypot(gx, gy) * math.Exp((u*u+v*v)*expScale)

			u0, v0, o0 := math.Floor(ub), math.Floor(vb), math.Floor(ob)
			fu, fv, fo := ub-u0, vb-v0, ob-o0
			for iv := 0; iv < 2; iv++ {
				wv := 1 - fv
				if iv == 1 {
					wv = fv
				}
				for iu := 0; iu < 2; iu++ {
					wu := 1 - fu
					if iu == 1 {
						wu = fu
					}
					for io := 0; io < 2; io++ {
						wo := 1 - fo
						if io == 1 {
							wo = fo
						}
						row := int(v0) + 1 + iv
						col := int(u0) + 1 + iu
						bin := (int(o0) + io) % n
						hist[(row*(d+2)+col)*n+bin] += mag * wv * wu * wo
					}
				}
			}
		}
	}

	desc := make(Descriptor, DescriptorLen)
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			copy(desc[(r*d+c)*n:(r*d+c+1)*n], hist[((r+1)*(d+2)+c+1)*n:])
		}
	}
	normalizeDescriptor(desc)
	return desc
}

// normalizeDescriptor scales d to unit length, clamps large components to
// reduce the influence of non-linear illumination changes, and scales to
// unit length again.
func normalizeDescriptor(d Descriptor) {
	norm := floats.Norm(d, 2)
	if norm == 0 {
		return
	}
	floats.Scale(1/norm, d)
	for i, v := range d {
		d[i] = math.Min(v, descMagLimit)
	}
	norm = floats.Norm(d, 2)
	if norm == 0 {
		return
	}
	floats.Scale(1/norm, d)
}
