package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"

	"cssprite/common"
)

type DpiType uint8

const (
	DpiNoUnits DpiType = iota
	DpiPxPerInch
	DpiPxPerSm
)

// EnsureJFIFAPP0 inserts JFIF APP0 marker segment if it is missing.
// image/jpeg does not write one and some consumers insist on it.
func EnsureJFIFAPP0(jpegData []byte, dpit DpiType, xdensity, ydensity int16) ([]byte, bool, error) {
	if len(jpegData) < 4 {
		return nil, false, errors.New("jpeg too small")
	}

	// Must start with SOI marker.
	if jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		return nil, false, errors.New("not a jpeg")
	}

	marker := []byte{0xFF, 0xE0}                             // APP0 segment marker
	jfif := []byte{0x4A, 0x46, 0x49, 0x46, 0x00, 0x01, 0x02} // jfif + version

	if jpegData[2] == marker[0] && jpegData[3] == marker[1] {
		return jpegData, false, nil
	}

	buf := new(bytes.Buffer)
	buf.Write(jpegData[:2])
	buf.Write(marker)
	_ = binary.Write(buf, binary.BigEndian, uint16(0x10)) // length
	buf.Write(jfif)
	_ = binary.Write(buf, binary.BigEndian, uint8(dpit))
	_ = binary.Write(buf, binary.BigEndian, uint16(xdensity))
	_ = binary.Write(buf, binary.BigEndian, uint16(ydensity))
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // no thumbnail segment
	buf.Write(jpegData[2:])
	return buf.Bytes(), true, nil
}

// Encode serializes sprite sheet. PNG is written with best compression.
// JPEG has no alpha channel, so transparent areas are flattened over white
// background, grayscale sheets are stored with a single component.
func Encode(img image.Image, format common.SheetFormat, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	switch format {
	case common.SheetFormatPng:
		if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, fmt.Errorf("unable to encode png: %w", err)
		}
		return buf.Bytes(), nil

	case common.SheetFormatJpeg:
		var flat image.Image = img
		if !IsOpaque(img) {
			bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
			flat = imaging.Overlay(bg, img, image.Point{}, 1.0)
		}
		if IsGrayscale(flat) {
			gray := image.NewGray(flat.Bounds())
			draw.Draw(gray, gray.Bounds(), flat, flat.Bounds().Min, draw.Src)
			flat = gray
		}
		if err := imaging.Encode(buf, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("unable to encode jpeg: %w", err)
		}
		out, _, err := EnsureJFIFAPP0(buf.Bytes(), DpiNoUnits, 1, 1)
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported sheet format %q", format)
}
