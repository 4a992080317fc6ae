/*
DESCRIPTION
  sift.go provides SIFT, a pure Go scale invariant feature detector. It
  builds a difference of Gaussians pyramid, finds scale space extrema,
  refines them to sub-pixel accuracy and rejects weak and edge-like
  responses before orientations and descriptors are computed.

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
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/raster"
)

// Detector defaults.
const (
	DefaultScalesPerOctave   = 3    // Layers per octave in which extrema are searched.
	DefaultSigma             = 1.6  // Blur of the first layer of each octave.
	DefaultContrastThreshold = 0.04 // Minimum interpolated DoG response, per layer.
	DefaultEdgeThreshold     = 10.0 // Maximum ratio of principal curvatures.
)

// Detector internals.
const (
	inputSigma     = 0.5 // Blur assumed to be present in the input image.
	imgBorder      = 5   // Extrema closer than this to an edge are ignored.
	maxInterpSteps = 5   // Refinement iterations before a candidate is dropped.
	minOctaveSide  = 16  // Octaves smaller than this are not built.
)

// SIFT detects difference of Gaussians extrema and describes them with
// histograms of local gradient orientations. SIFT holds only its
// parameters, so one value may be used by several goroutines.
type SIFT struct {
	scales    int
	sigma     float64
	contrast  float64
	edge      float64
	maxPixels int
}

// SIFTOption is the function signature returned by option functions below
// for use in the SIFT initialiser.
type SIFTOption func(*SIFT) error

// NewSIFT returns a new SIFT detector with the default parameters modified
// by opts.
func NewSIFT(opts ...SIFTOption) (*SIFT, error) {
	s := &SIFT{
		scales:    DefaultScalesPerOctave,
		sigma:     DefaultSigma,
		contrast:  DefaultContrastThreshold,
		edge:      DefaultEdgeThreshold,
		maxPixels: raster.DefaultMaxPixels,
	}
	for i, opt := range opts {
		err := opt(s)
		if err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}
	return s, nil
}

// WithScalesPerOctave returns a SIFTOption that sets the number of layers
// searched in each octave.
func WithScalesPerOctave(n int) SIFTOption {
	return func(s *SIFT) error {
		if n < 1 {
			return fmt.Errorf("scales per octave %d: %w", n, alignerr.ErrInvalidOption)
		}
		s.scales = n
		return nil
	}
}

// WithSigma returns a SIFTOption that sets the base blur of each octave.
func WithSigma(sigma float64) SIFTOption {
	return func(s *SIFT) error {
		if !(sigma > inputSigma) {
			return fmt.Errorf("sigma %v: %w", sigma, alignerr.ErrInvalidOption)
		}
		s.sigma = sigma
		return nil
	}
}

// WithContrastThreshold returns a SIFTOption that sets the minimum contrast
// of an accepted keypoint. Larger values give fewer keypoints.
func WithContrastThreshold(c float64) SIFTOption {
	return func(s *SIFT) error {
		if c < 0 {
			return fmt.Errorf("contrast threshold %v: %w", c, alignerr.ErrInvalidOption)
		}
		s.contrast = c
		return nil
	}
}

// WithEdgeThreshold returns a SIFTOption that sets the largest accepted
// ratio of principal curvatures. Smaller values reject more edge responses.
func WithEdgeThreshold(e float64) SIFTOption {
	return func(s *SIFT) error {
		if !(e > 0) {
			return fmt.Errorf("edge threshold %v: %w", e, alignerr.ErrInvalidOption)
		}
		s.edge = e
		return nil
	}
}

// WithMaxPixels returns a SIFTOption that sets the largest image, in
// pixels, that will be processed. Zero disables the limit.
func WithMaxPixels(n int) SIFTOption {
	return func(s *SIFT) error {
		if n < 0 {
			return fmt.Errorf("max pixels %d: %w", n, alignerr.ErrInvalidOption)
		}
		s.maxPixels = n
		return nil
	}
}

// octave holds the Gaussian and difference of Gaussian layers of one
// pyramid level.
type octave struct {
	gauss []*plane
	dog   []*plane
}

// candidate is a refined scale space extremum in octave coordinates.
type candidate struct {
	x, y, layer int     // Integer location.
	dx, dy, ds  float64 // Sub-pixel and sub-layer offsets.
	response    float64 // Interpolated DoG value.
}

// Extract implements Extractor. Keypoints are returned in octave, layer,
// row, column order.
func (s *SIFT) Extract(img image.Image) (*Set, error) {
	err := raster.CheckSize(img, s.maxPixels)
	if err != nil {
		return nil, alignerr.Wrap(alignerr.StageExtract, err)
	}

	base := planeFromGray(raster.ToGray(img))
	base = base.blur(math.Sqrt(s.sigma*s.sigma - inputSigma*inputSigma))

	set := &Set{}
	for o, oct := range s.pyramid(base) {
		s.detect(o, oct, set)
	}
	return set, nil
}

// pyramid builds octaves from base until they become too small to search.
func (s *SIFT) pyramid(base *plane) []octave {
	n := s.scales

	// Incremental blur taking layer i-1 to layer i.
	sig := make([]float64, n+3)
	k := math.Exp2(1 / float64(n))
	for i := 1; i < n+3; i++ {
		prev := math.Pow(k, float64(i-1)) * s.sigma
		total := prev * k
		sig[i] = math.Sqrt(total*total - prev*prev)
	}

	var pyr []octave
	for img := base; min(img.w, img.h) >= minOctaveSide; {
		g := make([]*plane, n+3)
		g[0] = img
		for i := 1; i < n+3; i++ {
			g[i] = g[i-1].blur(sig[i])
		}
		d := make([]*plane, n+2)
		for i := range d {
			d[i] = g[i+1].sub(g[i])
		}
		pyr = append(pyr, octave{gauss: g, dog: d})

		// Layer n has twice the base blur, so it seeds the next octave.
		img = g[n].halve()
	}
	return pyr
}

// detect finds the keypoints of one octave and adds them to set.
func (s *SIFT) detect(o int, oct octave, set *Set) {
	thresh := 0.5 * s.contrast / float64(s.scales)
	for layer := 1; layer <= s.scales; layer++ {
		cur := oct.dog[layer]
		for y := imgBorder; y < cur.h-imgBorder; y++ {
			for x := imgBorder; x < cur.w-imgBorder; x++ {
				if math.Abs(cur.at(x, y)) <= thresh || !isExtremum(oct.dog, layer, x, y) {
					continue
				}
				c, ok := s.localize(oct, layer, x, y)
				if !ok {
					continue
				}
				s.describe(o, oct, c, set)
			}
		}
	}
}

// isExtremum reports whether the DoG value at (x, y) in layer is at least as
// extreme as all 26 of its scale space neighbours.
func isExtremum(dog []*plane, layer, x, y int) bool {
	v := dog[layer].at(x, y)
	for l := layer - 1; l <= layer+1; l++ {
		p := dog[l]
		for yy := y - 1; yy <= y+1; yy++ {
			for xx := x - 1; xx <= x+1; xx++ {
				if l == layer && xx == x && yy == y {
					continue
				}
				n := p.at(xx, yy)
				if (v > 0 && n > v) || (v < 0 && n < v) {
					return false
				}
			}
		}
	}
	return true
}

// localize fits a quadratic to the DoG around an extremum, moving the
// sample point until the fitted offset is within half a sample. Candidates
// that leave the search region, have low contrast or lie on an edge are
// rejected.
func (s *SIFT) localize(oct octave, layer, x, y int) (candidate, bool) {
	var (
		off, grad     [3]float64
		dxx, dyy, dxy float64
	)
	w, h := oct.dog[0].w, oct.dog[0].h

	step := 0
	for ; step < maxInterpSteps; step++ {
		cur, prev, next := oct.dog[layer], oct.dog[layer-1], oct.dog[layer+1]
		v2 := 2 * cur.at(x, y)
		grad = [3]float64{
			(cur.at(x+1, y) - cur.at(x-1, y)) / 2,
			(cur.at(x, y+1) - cur.at(x, y-1)) / 2,
			(next.at(x, y) - prev.at(x, y)) / 2,
		}
		dxx = cur.at(x+1, y) + cur.at(x-1, y) - v2
		dyy = cur.at(x, y+1) + cur.at(x, y-1) - v2
		dss := next.at(x, y) + prev.at(x, y) - v2
		dxy = (cur.at(x+1, y+1) - cur.at(x-1, y+1) - cur.at(x+1, y-1) + cur.at(x-1, y-1)) / 4
		dxs := (next.at(x+1, y) - next.at(x-1, y) - prev.at(x+1, y) + prev.at(x-1, y)) / 4
		dys := (next.at(x, y+1) - next.at(x, y-1) - prev.at(x, y+1) + prev.at(x, y-1)) / 4

		hess := mat.NewDense(3, 3, []float64{
			dxx, dxy, dxs,
			dxy, dyy, dys,
			dxs, dys, dss,
		})
		var sol mat.VecDense
		err := sol.SolveVec(hess, mat.NewVecDense(3, grad[:]))
		if err != nil {
			return candidate{}, false
		}
		off = [3]float64{-sol.AtVec(0), -sol.AtVec(1), -sol.AtVec(2)}

		if math.Abs(off[0]) < 0.5 && math.Abs(off[1]) < 0.5 && math.Abs(off[2]) < 0.5 {
			break
		}
		if math.Abs(off[0]) > float64(w) || math.Abs(off[1]) > float64(h) || math.Abs(off[2]) > float64(s.scales) {
			return candidate{}, false
		}
		x += int(math.Round(off[0]))
		y += int(math.Round(off[1]))
		layer += int(math.Round(off[2]))
		if layer < 1 || layer > s.scales ||
			x < imgBorder || x >= w-imgBorder ||
			y < imgBorder || y >= h-imgBorder {
			return candidate{}, false
		}
	}
	if step >= maxInterpSteps {
		return candidate{}, false
	}

	response := oct.dog[layer].at(x, y) + 0.5*(grad[0]*off[0]+grad[1]*off[1]+grad[2]*off[2])
	if math.Abs(response)*float64(s.scales) < s.contrast {
		return candidate{}, false
	}

	// Reject edges, where one principal curvature is much larger than the other.
	tr := dxx + dyy
	det := dxx*dyy - dxy*dxy
	if det <= 0 || tr*tr*s.edge >= (s.edge+1)*(s.edge+1)*det {
		return candidate{}, false
	}

	return candidate{
		x: x, y: y, layer: layer,
		dx: off[0], dy: off[1], ds: off[2],
		response: response,
	}, true
}

// describe assigns one or more orientations to c and adds a keypoint and
// descriptor to set for each of them.
func (s *SIFT) describe(o int, oct octave, c candidate, set *Set) {
	// Blur of the candidate relative to its octave.
	scl := s.sigma * math.Exp2((float64(c.layer)+c.ds)/float64(s.scales))
	img := oct.gauss[c.layer]
	factor := math.Exp2(float64(o))

	hist := orientationHistogram(img, c.x, c.y, int(math.Round(oriRadius*scl)), oriSigma*scl)
	for _, angle := range dominantOrientations(hist) {
		set.Add(Keypoint{
			X:        (float64(c.x) + c.dx) * factor,
			Y:        (float64(c.y) + c.dy) * factor,
			Size:     2 * scl * factor,
			Angle:    angle * 180 / math.Pi,
			Response: math.Abs(c.response),
			Octave:   o,
		}, describeAt(img, c.x, c.y, angle, scl))
	}
}
