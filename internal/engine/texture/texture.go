// Package texture decodes texture images from disk and from inline
// color(r,g,b,a) descriptors.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported texture format")
	ErrBadColor          = errors.New("malformed color descriptor")
)

const colorPrefix = "color("

// IsColor reports whether path is an inline color descriptor.
func IsColor(path string) bool {
	return strings.HasPrefix(path, colorPrefix)
}

// ParseColor parses "color(r,g,b,a)" where each component is in [0,1].
// Values outside the range are clamped.
func ParseColor(desc string) (color.RGBA, error) {
	if !IsColor(desc) || !strings.HasSuffix(desc, ")") {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, desc)
	}
	parts := strings.Split(desc[len(colorPrefix):len(desc)-1], ",")
	if len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("%w: %q needs 4 components", ErrBadColor, desc)
	}
	var c [4]uint8
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: %q: %v", ErrBadColor, desc, err)
		}
		c[i] = uint8(min(max(f, 0), 1)*255 + 0.5)
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}

// Load decodes the texture at path into RGBA. Inline color descriptors
// produce a 1x1 image.
func Load(path string) (*image.RGBA, error) {
	if IsColor(path) {
		c, err := ParseColor(path)
		if err != nil {
			return nil, err
		}
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, c)
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture: %w", err)
	}
	img, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return ToRGBA(img), nil
}

// Decode decodes image bytes. ext selects the TGA decoder, which has no
// magic number; other formats are sniffed.
func Decode(data []byte, ext string) (image.Image, error) {
	if strings.EqualFold(ext, ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return img, err
}

// ToRGBA converts img to *image.RGBA with origin at (0,0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
