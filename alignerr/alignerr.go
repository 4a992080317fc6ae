/*
DESCRIPTION
  alignerr.go defines the error taxonomy shared by every stage of the
  alignment pipeline. Each error belongs to a Kind, and errors returned by
  a stage are wrapped in an Error naming that stage.

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

// Package alignerr provides the error kinds reported by the scanalign
// pipeline. Callers distinguish failures with errors.Is, for example:
//
//	if errors.Is(err, alignerr.DegenerateInput) { ... }
package alignerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. A Kind is itself an error so it can be used as
// an errors.Is target.
type Kind int

// Error kinds.
const (
	Unknown           Kind = iota
	InvalidArgument        // A caller supplied parameter violates a precondition.
	DegenerateInput        // The data cannot produce a unique solution.
	EstimationFailure      // The robust estimator could not converge on a model.
)

// Error implements the error interface.
func (k Kind) Error() string { return k.String() }

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case DegenerateInput:
		return "degenerate input"
	case EstimationFailure:
		return "estimation failure"
	default:
		return "unknown error"
	}
}

// sentinel is a specific failure belonging to a Kind.
type sentinel struct {
	kind Kind
	msg  string
}

func (s *sentinel) Error() string { return s.msg }
func (s *sentinel) Unwrap() error { return s.kind }

// New returns a new specific error of the given kind.
func New(kind Kind, msg string) error { return &sentinel{kind: kind, msg: msg} }

// Specific failures.
var (
	ErrInvalidCropOrigin = New(InvalidArgument, "invalid crop origin")
	ErrInvalidSize       = New(InvalidArgument, "invalid image size")
	ErrImageTooLarge     = New(InvalidArgument, "image exceeds pixel limit")
	ErrInvalidOption     = New(InvalidArgument, "invalid option")

	ErrNoKeypoints                 = New(DegenerateInput, "no keypoints detected")
	ErrInsufficientCorrespondences = New(DegenerateInput, "insufficient correspondences")
	ErrDegenerateConfiguration     = New(DegenerateInput, "degenerate point configuration")

	ErrEstimationFailure = New(EstimationFailure, "could not estimate homography")
)

// Pipeline stages.
const (
	StageNormalize = "normalize"
	StageExtract   = "extract"
	StageMatch     = "match"
	StageEstimate  = "estimate"
	StageWarp      = "warp"
)

// Error is an error raised by a pipeline stage.
type Error struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Stage + ": " + e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error { return e.Err }

// Wrap returns err attributed to stage. A nil err returns nil, and an err
// already attributed to a stage is returned unchanged.
func Wrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Stage: stage, Err: err}
}

// Errorf formats a message that wraps one of the specific failures and
// attributes it to stage. The format must contain a %w verb.
func Errorf(stage, format string, args ...interface{}) error {
	return &Error{Stage: stage, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of err, or Unknown if err has none.
func KindOf(err error) Kind {
	for _, k := range []Kind{InvalidArgument, DegenerateInput, EstimationFailure} {
		if errors.Is(err, k) {
			return k
		}
	}
	return Unknown
}

// StageOf returns the stage err was raised in, or the empty string.
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}
