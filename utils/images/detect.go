package images

import (
	"bytes"

	"github.com/h2non/filetype"
)

// Format names used throughout the build.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatWEBP = "webp"
	FormatSVG  = "svg"
)

var formatsByExt = map[string]string{
	"png":  FormatPNG,
	"jpg":  FormatJPEG,
	"gif":  FormatGIF,
	"bmp":  FormatBMP,
	"tif":  FormatTIFF,
	"webp": FormatWEBP,
}

// Detect classifies image data by content. Empty string is returned for
// anything that could not be put into a sprite sheet.
func Detect(data []byte) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return formatsByExt[kind.Extension]
	}
	if isSVG(data) {
		return FormatSVG
	}
	return ""
}

// isSVG looks for svg root element close to the beginning of the text.
func isSVG(data []byte) bool {
	head := data[:min(len(data), 4096)]
	head = bytes.TrimLeft(head, "\xef\xbb\xbf \t\r\n")
	if len(head) == 0 || head[0] != '<' {
		return false
	}
	return bytes.Contains(head, []byte("<svg"))
}
