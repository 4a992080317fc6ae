/*
DESCRIPTION
  imageio.go provides loading and saving of image files, with EXIF
  orientation correction on load.

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

// Package imageio reads and writes PNG, JPEG, TIFF and BMP files.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/ausocean/scanalign/raster"
)

// JPEGQuality is the quality used when saving JPEG files.
const JPEGQuality = 95

// ErrUnsupportedFormat is returned when saving to a file whose extension
// names no supported format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Load decodes the image file at path. If the file carries an EXIF
// orientation tag the image is returned upright.
func Load(path string) (image.Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read image: %w", err)
	}
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	if format != "jpeg" && format != "tiff" {
		return img, nil
	}
	return Orient(img, Orientation(b)), nil
}

// Orientation returns the EXIF orientation (1 to 8) of the encoded image
// b, or 1 if it has none.
func Orientation(b []byte) int {
	x, err := exif.Decode(bytes.NewReader(b))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

// Orient returns img transformed so that an image stored with the given
// EXIF orientation is upright. Orientation 1, or any invalid value,
// returns img unchanged.
func Orient(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}
	src := raster.ToRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	ow, oh := w, h
	if orientation >= 5 {
		ow, oh = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, ow, oh))
	for y := 0; y < oh; y++ {
		for x := 0; x < ow; x++ {
			var sx, sy int
			switch orientation {
			case 2: // Mirrored horizontally.
				sx, sy = w-1-x, y
			case 3: // Rotated 180.
				sx, sy = w-1-x, h-1-y
			case 4: // Mirrored vertically.
				sx, sy = x, h-1-y
			case 5: // Transposed.
				sx, sy = y, x
			case 6: // Needs 90 clockwise.
				sx, sy = y, h-1-x
			case 7: // Transversed.
				sx, sy = w-1-y, h-1-x
			case 8: // Needs 90 anticlockwise.
				sx, sy = w-1-y, x
			}
			dst.SetRGBA(x, y, src.RGBAAt(sx, sy))
		}
	}
	return dst
}

// Save encodes img to the file at path, choosing the format from the file
// extension.
func Save(path string, img image.Image) error {
	var enc func(*bytes.Buffer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		enc = func(b *bytes.Buffer) error { return png.Encode(b, img) }
	case ".jpg", ".jpeg":
		enc = func(b *bytes.Buffer) error { return jpeg.Encode(b, img, &jpeg.Options{Quality: JPEGQuality}) }
	case ".tif", ".tiff":
		enc = func(b *bytes.Buffer) error { return tiff.Encode(b, img, &tiff.Options{Compression: tiff.Deflate}) }
	case ".bmp":
		enc = func(b *bytes.Buffer) error { return bmp.Encode(b, img) }
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	var buf bytes.Buffer
	err := enc(&buf)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", path, err)
	}
	err = os.WriteFile(path, buf.Bytes(), 0o644)
	if err != nil {
		return fmt.Errorf("could not write image: %w", err)
	}
	return nil
}
