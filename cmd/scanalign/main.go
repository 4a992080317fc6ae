/*
DESCRIPTION
  scanalign aligns one photograph of a scene onto the frame of another and
  resizes images to a common size.

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

// scanalign registers sequential scans or photographs of overlapping pages.
//
// Usage:
//
//	scanalign align source.jpg reference.jpg --out-dir results
//	scanalign resize in.jpg out.png --width 1200 --height 1600 --crop-origin top
//	scanalign config > scanalign.yaml
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ausocean/utils/logging"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/scanalign/config"
)

// app holds the state shared by all subcommands.
type app struct {
	cfgPath string
	cfg     config.Config
	log     logging.Logger
	stderr  io.Writer
}

func main() {
	err := newRootCmd(&app{stderr: os.Stderr}).Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd returns the scanalign command with all subcommands attached.
func newRootCmd(a *app) *cobra.Command {
	var (
		logPath   string
		verbosity string
	)

	root := &cobra.Command{
		Use:   "scanalign",
		Short: "Align photographs of overlapping pages",
		Long: `scanalign detects local features in two images, matches them and warps
the first image into the frame of the second with a robustly estimated
homography.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Default()
			if a.cfgPath != "" {
				var err error
				a.cfg, err = config.Load(a.cfgPath)
				if err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("log-path") {
				a.cfg.Log.Path = logPath
			}
			if cmd.Flags().Changed("verbosity") {
				a.cfg.Log.Verbosity = verbosity
			}
			err := a.cfg.Finalize()
			if err != nil {
				return err
			}
			a.log, err = newLogger(a.cfg.Log, a.stderr)
			return err
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&logPath, "log-path", config.DefaultLogPath, "log file, empty to log to stderr only")
	root.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", config.DefaultVerbosity, "log verbosity (debug|info|warning|error|fatal)")

	root.AddCommand(newAlignCmd(a))
	root.AddCommand(newResizeCmd(a))
	root.AddCommand(newConfigCmd(a))
	return root
}

// newLogger returns a logger writing to stderr and, if a path is
// configured, to a rotated log file.
func newLogger(c config.Log, stderr io.Writer) (logging.Logger, error) {
	v, err := config.ParseVerbosity(c.Verbosity)
	if err != nil {
		return nil, err
	}
	w := stderr
	if c.Path != "" {
		fileLog := &lumberjack.Logger{
			Filename:   c.Path,
			MaxSize:    c.MaxSize,
			MaxBackups: c.MaxBackup,
			MaxAge:     c.MaxAge,
		}
		w = io.MultiWriter(fileLog, stderr)
	}
	return logging.New(v, w, c.Suppress), nil
}

// newConfigCmd returns the config subcommand, which prints the effective
// configuration.
func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.cfg.AsYAML()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), s)
			return err
		},
	}
}
