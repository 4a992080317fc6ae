/*
DESCRIPTION
  resize.go provides the resize subcommand.

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

package main

import (
	"fmt"
	"image"

	"github.com/spf13/cobra"

	"github.com/ausocean/scanalign/imageio"
	"github.com/ausocean/scanalign/normalize"
)

func newResizeCmd(a *app) *cobra.Command {
	var (
		width, height int
		origin        string
		rounding      string
	)

	cmd := &cobra.Command{
		Use:   "resize <input> <output>",
		Short: "Resize and crop an image to an exact size",
		Long: `Scale the input so that it covers the requested size with its aspect ratio
preserved, then crop the excess, keeping the top, middle or bottom of a tall
image, or the left, middle or right of a wide one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &a.cfg.Normalize
			flags := cmd.Flags()
			if flags.Changed("width") {
				c.Width = width
			}
			if flags.Changed("height") {
				c.Height = height
			}
			if flags.Changed("crop-origin") {
				c.CropOrigin = origin
			}
			if flags.Changed("rounding") {
				c.Rounding = rounding
			}
			return a.resize(args[0], args[1])
		},
	}

	cmd.Flags().IntVarP(&width, "width", "W", 0, "output width")
	cmd.Flags().IntVarP(&height, "height", "H", 0, "output height")
	cmd.Flags().StringVar(&origin, "crop-origin", string(normalize.Middle), "part of the image kept when cropping (top|middle|bottom)")
	cmd.Flags().StringVar(&rounding, "rounding", normalize.HalfEven.String(), "rounding of scaled sizes and offsets (halfeven|halfup)")
	return cmd
}

// resize normalizes the image at inPath and saves it to outPath.
func (a *app) resize(inPath, outPath string) error {
	c := a.cfg.Normalize
	origin, err := normalize.ParseCropOrigin(c.CropOrigin)
	if err != nil {
		return err
	}
	r, err := normalize.ParseRounding(c.Rounding)
	if err != nil {
		return err
	}
	n, err := normalize.New(a.log, normalize.WithRounding(r), normalize.WithMaxPixels(c.MaxPixels))
	if err != nil {
		return fmt.Errorf("could not create normalizer: %w", err)
	}

	img, err := imageio.Load(inPath)
	if err != nil {
		return err
	}
	out, err := n.ResizeAndCrop(img, image.Pt(c.Width, c.Height), origin)
	if err != nil {
		return err
	}
	a.log.Info("saving resized image", "path", outPath, "size", out.Rect.Size().String())
	return imageio.Save(outPath, out)
}
