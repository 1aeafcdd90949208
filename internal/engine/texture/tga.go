package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	ErrTGATruncated   = errors.New("tga data truncated")
	ErrTGAUnsupported = errors.New("unsupported tga variant")
)

// DecodeTGA decodes uncompressed (type 2) and RLE (type 10) true-color
// TGA images with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	if imageType != 2 && imageType != 10 {
		return nil, fmt.Errorf("%w: image type %d", ErrTGAUnsupported, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrTGAUnsupported, bpp)
	}
	if 18+idLength > len(data) {
		return nil, ErrTGATruncated
	}

	r := &tgaReader{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		px:          data[18+idLength:],
		stride:      bpp / 8,
		topToBottom: topToBottom,
	}
	var err error
	if imageType == 2 {
		err = r.raw()
	} else {
		err = r.rle()
	}
	if err != nil {
		return nil, err
	}
	return r.img, nil
}

type tgaReader struct {
	img         *image.RGBA
	px          []byte
	pos         int
	stride      int
	topToBottom bool
}

// pixel reads one BGR(A) pixel at the cursor.
func (r *tgaReader) pixel() (color.RGBA, bool) {
	if r.pos+r.stride > len(r.px) {
		return color.RGBA{}, false
	}
	p := r.px[r.pos:]
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.stride == 4 {
		c.A = p[3]
	}
	r.pos += r.stride
	return c, true
}

// set writes pixel number i, flipping rows for bottom-up images.
func (r *tgaReader) set(i int, c color.RGBA) {
	w, h := r.img.Rect.Dx(), r.img.Rect.Dy()
	x, y := i%w, i/w
	if !r.topToBottom {
		y = h - 1 - y
	}
	r.img.SetRGBA(x, y, c)
}

func (r *tgaReader) raw() error {
	n := r.img.Rect.Dx() * r.img.Rect.Dy()
	for i := 0; i < n; i++ {
		c, ok := r.pixel()
		if !ok {
			return ErrTGATruncated
		}
		r.set(i, c)
	}
	return nil
}

func (r *tgaReader) rle() error {
	n := r.img.Rect.Dx() * r.img.Rect.Dy()
	for i := 0; i < n; {
		if r.pos >= len(r.px) {
			return ErrTGATruncated
		}
		header := r.px[r.pos]
		r.pos++
		count := int(header&0x7F) + 1

		if header&0x80 != 0 {
			c, ok := r.pixel()
			if !ok {
				return ErrTGATruncated
			}
			for j := 0; j < count && i < n; j++ {
				r.set(i, c)
				i++
			}
			continue
		}
		for j := 0; j < count && i < n; j++ {
			c, ok := r.pixel()
			if !ok {
				return ErrTGATruncated
			}
			r.set(i, c)
			i++
		}
	}
	return nil
}
