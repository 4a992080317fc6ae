/*
DESCRIPTION
  config.go provides the configuration file of the scanalign command.

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

// Package config provides the YAML configuration of the scanalign command.
package config

import (
	"fmt"
	"os"

	"github.com/ausocean/utils/logging"
	"gopkg.in/yaml.v2"

	"github.com/ausocean/scanalign/align"
	"github.com/ausocean/scanalign/alignerr"
	"github.com/ausocean/scanalign/normalize"
	"github.com/ausocean/scanalign/raster"
)

// Logging defaults.
const (
	DefaultLogPath      = "scanalign.log"
	DefaultLogMaxSize   = 500 // MB.
	DefaultLogMaxBackup = 10
	DefaultLogMaxAge    = 28 // Days.
	DefaultVerbosity    = "info"
)

// Log configures the command's log.
type Log struct {
	Path      string `yaml:"path"` // Empty disables the log file.
	Verbosity string `yaml:"verbosity"`
	MaxSize   int    `yaml:"maxsize"`
	MaxBackup int    `yaml:"maxbackup"`
	MaxAge    int    `yaml:"maxage"`
	Suppress  bool   `yaml:"suppress"`
}

// Normalize configures the resize command.
type Normalize struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	CropOrigin string `yaml:"croporigin"`
	Rounding   string `yaml:"rounding"`
	MaxPixels  int    `yaml:"maxpixels"`
}

// Output configures where results are written.
type Output struct {
	Dir     string `yaml:"dir"`
	Matches bool   `yaml:"matches"` // Write the match visualisation.
	Plots   bool   `yaml:"plots"`   // Write residual and distance plots.
	Format  string `yaml:"format"`  // Image file extension.
}

// Config is the configuration of the scanalign command.
type Config struct {
	Log       Log          `yaml:"log"`
	Align     align.Config `yaml:"align"`
	Normalize Normalize    `yaml:"normalize"`
	Output    Output       `yaml:"output"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Log: Log{
			Path:      DefaultLogPath,
			Verbosity: DefaultVerbosity,
			MaxSize:   DefaultLogMaxSize,
			MaxBackup: DefaultLogMaxBackup,
			MaxAge:    DefaultLogMaxAge,
		},
		Align: align.DefaultConfig(),
		Normalize: Normalize{
			CropOrigin: string(normalize.Middle),
			Rounding:   normalize.HalfEven.String(),
			MaxPixels:  raster.DefaultMaxPixels,
		},
		Output: Output{
			Dir:     "results",
			Matches: true,
			Format:  "png",
		},
	}
}

// Load reads the YAML configuration at path. Fields missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("could not read config: %w", err)
	}
	err = yaml.UnmarshalStrict(b, &c)
	if err != nil {
		return c, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return c, c.Finalize()
}

// AsYAML returns c in YAML form.
func (c Config) AsYAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("could not marshal config: %w", err)
	}
	return string(b), nil
}

// Finalize validates c, filling in defaults for empty fields.
func (c *Config) Finalize() error {
	if c.Log.Verbosity == "" {
		c.Log.Verbosity = DefaultVerbosity
	}
	if _, err := ParseVerbosity(c.Log.Verbosity); err != nil {
		return err
	}
	if c.Align.Backend == "" {
		c.Align.Backend = align.BackendNative
	}
	if c.Normalize.CropOrigin == "" {
		c.Normalize.CropOrigin = string(normalize.Middle)
	}
	if _, err := normalize.ParseCropOrigin(c.Normalize.CropOrigin); err != nil {
		return err
	}
	if _, err := normalize.ParseRounding(c.Normalize.Rounding); err != nil {
		return err
	}
	if c.Normalize.Width < 0 || c.Normalize.Height < 0 {
		return fmt.Errorf("normalize size %dx%d: %w", c.Normalize.Width, c.Normalize.Height, alignerr.ErrInvalidSize)
	}
	if c.Output.Format == "" {
		c.Output.Format = "png"
	}
	switch c.Output.Format {
	case "png", "jpg", "jpeg", "tif", "tiff", "bmp":
	default:
		return fmt.Errorf("output format %q: %w", c.Output.Format, alignerr.ErrInvalidOption)
	}
	return nil
}

// ParseVerbosity returns the logging level named by s.
func ParseVerbosity(s string) (int8, error) {
	switch s {
	case "debug":
		return logging.Debug, nil
	case "info":
		return logging.Info, nil
	case "warning":
		return logging.Warning, nil
	case "error":
		return logging.Error, nil
	case "fatal":
		return logging.Fatal, nil
	}
	return 0, fmt.Errorf("verbosity %q: %w", s, alignerr.ErrInvalidOption)
}
