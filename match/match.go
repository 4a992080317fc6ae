/*
DESCRIPTION
  match.go provides brute force k nearest neighbour matching of feature
  descriptors and the ratio test used to keep only distinctive matches.

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

// Package match pairs feature descriptors of one image with those of
// another.
package match

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/features"
)

// DefaultRatio is the default ratio test threshold.
const DefaultRatio = 0.7

// Correspondence pairs descriptor QueryIdx of the query image with
// descriptor TrainIdx of the train image.
type Correspondence struct {
	QueryIdx int
	TrainIdx int
	Distance float64
}

// Matcher matches descriptors by exhaustive search.
type Matcher struct {
	ratio float64
}

// Option is the function signature returned by option functions below for
// use in the Matcher initialiser.
type Option func(*Matcher) error

// WithRatio returns an Option that sets the ratio test threshold. A match
// is kept only if its distance is less than ratio times the distance to
// the second nearest neighbour. Lower values keep fewer matches.
func WithRatio(r float64) Option {
	return func(m *Matcher) error {
		if !(r > 0 && r <= 1) {
			return fmt.Errorf("ratio %v not in (0, 1]: %w", r, alignerr.ErrInvalidOption)
		}
		m.ratio = r
		return nil
	}
}

// New returns a new Matcher.
func New(opts ...Option) (*Matcher, error) {
	m := &Matcher{ratio: DefaultRatio}
	for i, opt := range opts {
		err := opt(m)
		if err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}
	return m, nil
}

// Ratio returns the ratio test threshold.
func (m *Matcher) Ratio() float64 { return m.ratio }

// Match returns, for each query descriptor, its nearest train descriptor if
// it passes the ratio test. Matching is one directional, from query to
// train. If there are fewer than two train descriptors no match can be
// tested and none are returned.
func (m *Matcher) Match(query, train []features.Descriptor) []Correspondence {
	return RatioTest(KnnMatch(query, train, 2), m.ratio)
}

// KnnMatch returns the k nearest train descriptors of each query
// descriptor, nearest first, by Euclidean distance. Equal distances are
// ordered by train index. Fewer than k neighbours are returned when train
// has fewer than k descriptors.
func KnnMatch(query, train []features.Descriptor, k int) [][]Correspondence {
	if k <= 0 || len(query) == 0 || len(train) == 0 {
		return nil
	}

	knn := make([][]Correspondence, len(query))
	for qi, q := range query {
		best := make([]Correspondence, 0, k+1)
		for ti, tr := range train {
			d := floats.Distance(q, tr, 2)
			if len(best) == k && d >= best[k-1].Distance {
				continue
			}
			// Insert after any equal distance so lower train indices stay first.
			at := sort.Search(len(best), func(i int) bool { return best[i].Distance > d })
			best = append(best, Correspondence{})
			copy(best[at+1:], best[at:])
			best[at] = Correspondence{QueryIdx: qi, TrainIdx: ti, Distance: d}
			if len(best) > k {
				best = best[:k]
			}
		}
		knn[qi] = best
	}
	return knn
}

// RatioTest keeps the nearest neighbour of each list in knn whose distance
// is strictly less than ratio times that of the second nearest. Lists with
// fewer than two neighbours are dropped.
func RatioTest(knn [][]Correspondence, ratio float64) []Correspondence {
	var out []Correspondence
	for _, nn := range knn {
		if len(nn) < 2 {
			continue
		}
		if nn[0].Distance < ratio*nn[1].Distance {
			out = append(out, nn[0])
		}
	}
	return out
}
