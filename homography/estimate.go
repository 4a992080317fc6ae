/*
DESCRIPTION
  estimate.go provides Estimator, which fits a homography to point
  correspondences that may contain outliers using RANSAC followed by a
  least squares refit on the consensus set.

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

package homography

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ausocean/scanalign/alignerr"
)

// Estimation defaults.
const (
	DefaultThreshold  = 3.0   // Maximum allowed reprojection error to treat a point pair as an inlier.
	DefaultMaxIters   = 2000  // The maximum number of RANSAC iterations.
	DefaultConfidence = 0.995 // Confidence level, between 0 and 1.
	DefaultMinInliers = 4     // Smallest consensus set accepted as a model.

	minPairs     = 4 // Correspondences needed to fix a homography.
	refineRounds = 3 // Least squares refits while the consensus set grows.
)

// Method selects how the homography is fitted.
type Method int

// Fitting methods.
const (
	RANSAC    Method = iota // Robust fit ignoring outliers.
	AllPoints               // Least squares fit to every correspondence.
)

// ParseMethod returns the Method named by s ("ransac" or "allpoints").
func ParseMethod(s string) (Method, error) {
	switch s {
	case "ransac", "":
		return RANSAC, nil
	case "allpoints":
		return AllPoints, nil
	}
	return 0, fmt.Errorf("method %q: %w", s, alignerr.ErrInvalidOption)
}

func (m Method) String() string {
	if m == AllPoints {
		return "allpoints"
	}
	return "ransac"
}

// Result is a fitted homography with its consensus set.
type Result struct {
	H          Matrix
	Inliers    []bool    // Inliers[i] reports whether pair i agrees with H.
	NumInliers int       // Number of true values in Inliers.
	Residuals  []float64 // Reprojection error of each pair under H, in pixels.
	Iterations int       // RANSAC iterations run.
}

// Estimator fits homographies. Each call to Estimate seeds its own random
// source, so results are reproducible and an Estimator may be shared.
type Estimator struct {
	threshold  float64
	maxIters   int
	confidence float64
	seed       int64
	method     Method
	minInliers int
}

// Option is the function signature returned by option functions below for
// use in the Estimator initialiser.
type Option func(*Estimator) error

// NewEstimator returns a new Estimator.
func NewEstimator(opts ...Option) (*Estimator, error) {
	e := &Estimator{
		threshold:  DefaultThreshold,
		maxIters:   DefaultMaxIters,
		confidence: DefaultConfidence,
		method:     RANSAC,
		minInliers: DefaultMinInliers,
	}
	for i, opt := range opts {
		err := opt(e)
		if err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}
	return e, nil
}

// WithThreshold returns an Option that sets the reprojection error, in
// pixels, below which a pair is an inlier.
func WithThreshold(t float64) Option {
	return func(e *Estimator) error {
		if !(t > 0) {
			return fmt.Errorf("threshold %v: %w", t, alignerr.ErrInvalidOption)
		}
		e.threshold = t
		return nil
	}
}

// WithMaxIters returns an Option that bounds the number of RANSAC
// iterations.
func WithMaxIters(n int) Option {
	return func(e *Estimator) error {
		if n < 1 {
			return fmt.Errorf("max iterations %d: %w", n, alignerr.ErrInvalidOption)
		}
		e.maxIters = n
		return nil
	}
}

// WithConfidence returns an Option that sets the probability with which
// RANSAC should draw at least one outlier free sample before stopping.
func WithConfidence(c float64) Option {
	return func(e *Estimator) error {
		if !(c > 0 && c < 1) {
			return fmt.Errorf("confidence %v: %w", c, alignerr.ErrInvalidOption)
		}
		e.confidence = c
		return nil
	}
}

// WithSeed returns an Option that sets the seed of the random sampler.
func WithSeed(s int64) Option {
	return func(e *Estimator) error {
		e.seed = s
		return nil
	}
}

// WithMethod returns an Option that sets the fitting method.
func WithMethod(m Method) Option {
	return func(e *Estimator) error {
		if m != RANSAC && m != AllPoints {
			return fmt.Errorf("method %d: %w", m, alignerr.ErrInvalidOption)
		}
		e.method = m
		return nil
	}
}

// WithMinInliers returns an Option that sets the smallest consensus set
// accepted. Smaller consensus sets fail with an estimation failure.
func WithMinInliers(n int) Option {
	return func(e *Estimator) error {
		if n < minPairs {
			return fmt.Errorf("min inliers %d: %w", n, alignerr.ErrInvalidOption)
		}
		e.minInliers = n
		return nil
	}
}

// Estimate fits a homography mapping each pair's Src onto its Dst.
//
// Fewer than four pairs fail with alignerr.ErrInsufficientCorrespondences.
// Point sets with no unique solution, such as collinear points, fail with
// alignerr.ErrDegenerateConfiguration. A consensus set smaller than the
// configured minimum fails with alignerr.ErrEstimationFailure.
func (e *Estimator) Estimate(pairs []PointPair) (*Result, error) {
	if len(pairs) < minPairs {
		return nil, alignerr.Errorf(alignerr.StageEstimate, "got %d correspondences, need %d: %w", len(pairs), minPairs, alignerr.ErrInsufficientCorrespondences)
	}
	src, dst := split(pairs)
	if onLine(src) || onLine(dst) {
		return nil, alignerr.Errorf(alignerr.StageEstimate, "points are collinear or coincident: %w", alignerr.ErrDegenerateConfiguration)
	}

	if e.method == AllPoints {
		h, ok := solveDLT(pairs)
		if !ok {
			return nil, alignerr.Errorf(alignerr.StageEstimate, "least squares fit failed: %w", alignerr.ErrDegenerateConfiguration)
		}
		return e.result(h, pairs, 0)
	}
	return e.ransac(pairs)
}

// ransac runs the hypothesise and verify loop, then refits the best model
// to its inliers.
func (e *Estimator) ransac(pairs []PointPair) (*Result, error) {
	n := len(pairs)
	rng := rand.New(rand.NewSource(e.seed))
	mask := make([]bool, n)
	bestMask := make([]bool, n)
	var (
		best      Matrix
		bestCount int
		sample    [4]PointPair
	)

	iters := e.maxIters
	i := 0
	for ; i < iters; i++ {
		for j, k := range sampleIndices(rng, n) {
			sample[j] = pairs[k]
		}
		if degenerateSample(&sample) {
			continue
		}
		h, ok := solveMinimal(&sample)
		if !ok {
			continue
		}
		count := e.classify(h, pairs, mask, nil)
		if count > bestCount {
			best, bestCount = h, count
			copy(bestMask, mask)
			iters = min(iters, e.updateIters(count, n))
		}
	}

	if bestCount == 0 {
		return nil, alignerr.Errorf(alignerr.StageEstimate, "no non-degenerate sample in %d iterations: %w", i, alignerr.ErrDegenerateConfiguration)
	}
	if bestCount < e.minInliers {
		return nil, alignerr.Errorf(alignerr.StageEstimate, "best model has %d inliers, need %d: %w", bestCount, e.minInliers, alignerr.ErrEstimationFailure)
	}

	// Refit to the consensus set while doing so gains inliers.
	for r := 0; r < refineRounds; r++ {
		h, ok := solveDLT(selectPairs(pairs, bestMask))
		if !ok {
			break
		}
		count := e.classify(h, pairs, mask, nil)
		if count < bestCount {
			break
		}
		grew := count > bestCount
		best, bestCount = h, count
		copy(bestMask, mask)
		if !grew {
			break
		}
	}
	return e.result(best, pairs, i)
}

// result packages h with its inliers and residuals over pairs.
func (e *Estimator) result(h Matrix, pairs []PointPair, iters int) (*Result, error) {
	_, err := h.Inverse()
	if err != nil {
		return nil, alignerr.Wrap(alignerr.StageEstimate, err)
	}
	res := &Result{
		H:          h,
		Inliers:    make([]bool, len(pairs)),
		Residuals:  make([]float64, len(pairs)),
		Iterations: iters,
	}
	res.NumInliers = e.classify(h, pairs, res.Inliers, res.Residuals)
	if e.method == AllPoints {
		for i := range res.Inliers {
			res.Inliers[i] = true
		}
		res.NumInliers = len(pairs)
	}
	return res, nil
}

// classify marks in mask the pairs whose reprojection error under h is
// within the threshold and returns their number. If residuals is not nil
// the errors are stored in it.
func (e *Estimator) classify(h Matrix, pairs []PointPair, mask []bool, residuals []float64) int {
	var count int
	for i, p := range pairs {
		d := Reprojection(h, p)
		if residuals != nil {
			residuals[i] = d
		}
		mask[i] = d <= e.threshold
		if mask[i] {
			count++
		}
	}
	return count
}

// updateIters returns the number of iterations needed to draw an all inlier
// sample with the configured confidence, given the inlier count so far.
func (e *Estimator) updateIters(inliers, n int) int {
	w := float64(inliers) / float64(n)
	num := math.Log(1 - e.confidence)
	den := math.Log(1 - math.Pow(w, minPairs))
	if den >= 0 {
		return e.maxIters
	}
	if math.IsInf(den, -1) {
		return 0
	}
	it := num / den
	if it >= float64(e.maxIters) {
		return e.maxIters
	}
	return int(math.Ceil(it))
}

// Reprojection returns the distance between p.Dst and p.Src mapped by h.
// Points mapped to infinity have infinite error.
func Reprojection(h Matrix, p PointPair) float64 {
	u, v, ok := h.Apply(p.Src.X, p.Src.Y)
	if !ok {
		return math.Inf(1)
	}
	return math.Hypot(u-p.Dst.X, v-p.Dst.Y)
}

// sampleIndices returns four distinct indices in [0, n).
func sampleIndices(rng *rand.Rand, n int) [4]int {
	var idx [4]int
	for i := 0; i < 4; {
		k := rng.Intn(n)
		dup := false
		for _, j := range idx[:i] {
			if j == k {
				dup = true
				break
			}
		}
		if !dup {
			idx[i] = k
			i++
		}
	}
	return idx
}

func selectPairs(pairs []PointPair, mask []bool) []PointPair {
	var out []PointPair
	for i, p := range pairs {
		if mask[i] {
			out = append(out, p)
		}
	}
	return out
}
