package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

const tgaHeaderSize = 18

// DecodeTGA decodes an uncompressed or RLE true-color TGA image with 24 or
// 32 bits per pixel.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("%w: TGA header", ErrTruncated)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped TGA", ErrUnsupportedFormat)
	}
	if imageType != tgaTrueColor && imageType != tgaTrueColorRLE {
		return nil, fmt.Errorf("%w: TGA image type %d", ErrUnsupportedFormat, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("%w: TGA bit depth %d", ErrUnsupportedFormat, bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: TGA image id", ErrTruncated)
	}

	d := tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		width:       width,
		height:      height,
		pixelSize:   bpp / 8,
		topToBottom: topToBottom,
	}
	var err error
	if imageType == tgaTrueColor {
		err = d.raw(width * height)
	} else {
		err = d.rle()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	img         *image.RGBA
	src         []byte
	pos         int
	pixel       int
	width       int
	height      int
	pixelSize   int
	topToBottom bool
}

// next reads one BGR(A) pixel from the source.
func (d *tgaDecoder) next() (color.RGBA, error) {
	if d.pos+d.pixelSize > len(d.src) {
		return color.RGBA{}, fmt.Errorf("%w: TGA pixel %d", ErrTruncated, d.pixel)
	}
	p := d.src[d.pos : d.pos+d.pixelSize]
	d.pos += d.pixelSize

	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.pixelSize == 4 {
		c.A = p[3]
	}
	return c, nil
}

func (d *tgaDecoder) put(c color.RGBA) {
	x := d.pixel % d.width
	y := d.pixel / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
	d.pixel++
}

func (d *tgaDecoder) remaining() int {
	return d.width*d.height - d.pixel
}

func (d *tgaDecoder) raw(n int) error {
	for i := 0; i < n; i++ {
		c, err := d.next()
		if err != nil {
			return err
		}
		d.put(c)
	}
	return nil
}

func (d *tgaDecoder) rle() error {
	for d.remaining() > 0 {
		if d.pos >= len(d.src) {
			return fmt.Errorf("%w: TGA packet header", ErrTruncated)
		}
		packet := d.src[d.pos]
		d.pos++
		count := min(int(packet&0x7f)+1, d.remaining())

		if packet&0x80 == 0 {
			if err := d.raw(count); err != nil {
				return err
			}
			continue
		}

		c, err := d.next()
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			d.put(c)
		}
	}
	return nil
}
