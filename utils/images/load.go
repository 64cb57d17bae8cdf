package images

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"os"
	"regexp"
	"strconv"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"cssprite/jpegquality"
)

// Source is a decoded image referenced from a stylesheet.
type Source struct {
	Path    string
	Format  string
	Image   *image.NRGBA
	Width   int
	Height  int
	Hash    string // sha256 of file content
	Quality int    // estimated quality for jpeg sources, 0 otherwise
}

// LoadOptions controls which inputs are accepted.
type LoadOptions struct {
	SVG bool
}

// Load reads and decodes image file.
func Load(path string, opts LoadOptions) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read image: %w", err)
	}
	return Decode(data, path, opts)
}

// Decode decodes image data, path is recorded as is.
func Decode(data []byte, path string, opts LoadOptions) (*Source, error) {
	sum := sha256.Sum256(data)
	src := &Source{
		Path:   path,
		Format: Detect(data),
		Hash:   hex.EncodeToString(sum[:]),
	}

	switch src.Format {
	case "":
		return nil, fmt.Errorf("unsupported image type: %s", path)

	case FormatSVG:
		if !opts.SVG {
			return nil, fmt.Errorf("svg images are disabled: %s", path)
		}
		norm, err := NormalizeSVG(data)
		if err != nil {
			return nil, err
		}
		if src.Image, err = RasterizeSVG(norm, 0, 0); err != nil {
			return nil, fmt.Errorf("unable to rasterize svg: %w", err)
		}

	default:
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("unable to decode %s image: %w", src.Format, err)
		}
		src.Image = toNRGBA(img)
		if src.Format == FormatJPEG {
			if qr, err := jpegquality.NewWithBytes(data); err == nil {
				src.Quality = qr.Quality()
			}
		}
	}

	src.Width, src.Height = src.Image.Rect.Dx(), src.Image.Rect.Dy()
	return src, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

var retinaPattern = regexp.MustCompile(`@(\d+)x\.[A-Za-z0-9]+(?:[?#].*)?$`)

// RetinaRatio returns pixel ratio encoded in image name ("icon@2x.png"),
// 1 when there is none.
func RetinaRatio(url string) int {
	m := retinaPattern.FindStringSubmatch(url)
	if m == nil {
		return 1
	}
	r, err := strconv.Atoi(m[1])
	if err != nil || r < 1 {
		return 1
	}
	return r
}
