/*
DESCRIPTION
  config_test.go tests loading and validation of the command configuration.

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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andreyvit/diff"

	"github.com/ausocean/scanalign/alignerr"
)

const defaultYAML = `log:
  path: scanalign.log
  verbosity: info
  maxsize: 500
  maxbackup: 10
  maxage: 28
  suppress: false
align:
  backend: native
  scalesperoctave: 3
  sigma: 1.6
  contrastthreshold: 0.04
  edgethreshold: 10
  maxpixels: 400000000
  ratio: 0.7
  method: ransac
  threshold: 3
  maxiters: 2000
  confidence: 0.995
  mininliers: 4
  seed: 0
  interpolation: bilinear
  background: ""
normalize:
  width: 0
  height: 0
  croporigin: middle
  rounding: halfeven
  maxpixels: 400000000
output:
  dir: results
  matches: true
  plots: false
  format: png
`

func TestAsYAML(t *testing.T) {
	got, err := Default().AsYAML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != defaultYAML {
		t.Errorf("Result not as expected:\nExpected:\n%v\nReceived:\n%v\nDiff:\n%v\n", defaultYAML, got, diff.LineDiff(defaultYAML, got))
	}
}

func writeConfig(t *testing.T, s string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scanalign.yaml")
	err := os.WriteFile(path, []byte(s), 0o644)
	if err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log:
  verbosity: debug
align:
  ratio: 0.8
  seed: 42
  background: "#ffffff"
normalize:
  width: 640
  height: 480
  croporigin: top
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Default()
	want.Log.Verbosity = "debug"
	want.Align.Ratio = 0.8
	want.Align.Seed = 42
	want.Align.Background = "#ffffff"
	want.Normalize.Width = 640
	want.Normalize.Height = 480
	want.Normalize.CropOrigin = "top"
	if c != want {
		a, _ := want.AsYAML()
		b, _ := c.AsYAML()
		t.Errorf("Result not as expected:\nDiff:\n%v\n", diff.LineDiff(a, b))
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		yaml string
		want error
	}{
		{yaml: "normalize:\n  croporigin: left\n", want: alignerr.ErrInvalidCropOrigin},
		{yaml: "normalize:\n  rounding: up\n", want: alignerr.ErrInvalidOption},
		{yaml: "normalize:\n  width: -1\n", want: alignerr.ErrInvalidSize},
		{yaml: "log:\n  verbosity: loud\n", want: alignerr.ErrInvalidOption},
		{yaml: "output:\n  format: gif\n", want: alignerr.ErrInvalidOption},
	}
	for i, test := range tests {
		_, err := Load(writeConfig(t, test.yaml))
		if !errors.Is(err, test.want) {
			t.Errorf("did not get expected error from test: %d. Got: %v, Want: %v", i, err, test.want)
		}
	}

	if _, err := Load(writeConfig(t, "align:\n  ratios: 0.5\n")); err == nil {
		t.Errorf("expected error for unknown field")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestFinalizeDefaults(t *testing.T) {
	var c Config
	err := c.Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Log.Verbosity != DefaultVerbosity || c.Align.Backend != "native" || c.Normalize.CropOrigin != "middle" || c.Output.Format != "png" {
		t.Errorf("defaults not filled in: %+v", c)
	}
}
