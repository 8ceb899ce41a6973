package resource

import "fmt"

// TGA image type constants.
const (
	tgaTypeUncompressed = 2  // uncompressed true-color
	tgaTypeRLE          = 10 // RLE compressed true-color
)

// DecodeTGA decodes TGA data into an Image with tightly packed RGBA
// pixels. Uncompressed and RLE true-color files at 24 or 32 bpp are
// supported. The returned image carries the given id.
func DecodeTGA(id string, data []byte) (*Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("tga %q: data too short", id)
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("tga %q: color-mapped files not supported", id)
	}
	if imageType != tgaTypeUncompressed && imageType != tgaTypeRLE {
		return nil, fmt.Errorf("tga %q: unsupported type %d", id, imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga %q: unsupported bit depth %d", id, bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("tga %q: truncated id field", id)
	}
	src := data[offset:]

	img := &Image{
		ID:     id,
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*4),
	}
	perPixel := bpp / 8
	// Bit 5 of the descriptor means rows are stored top-to-bottom.
	topDown := descriptor&0x20 != 0

	if imageType == tgaTypeUncompressed {
		if len(src) < width*height*perPixel {
			return nil, fmt.Errorf("tga %q: truncated pixel data", id)
		}
		for i := 0; i < width*height; i++ {
			img.setPixel(i, src[i*perPixel:], perPixel, topDown)
		}
		return img, nil
	}

	if err := decodeRLE(img, src, perPixel, topDown); err != nil {
		return nil, fmt.Errorf("tga %q: %w", id, err)
	}
	return img, nil
}

func decodeRLE(img *Image, src []byte, perPixel int, topDown bool) error {
	total := img.Width * img.Height
	pixel := 0
	pos := 0

	for pixel < total {
		if pos >= len(src) {
			return fmt.Errorf("truncated RLE stream")
		}
		packet := src[pos]
		pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run: one source pixel repeated.
			if pos+perPixel > len(src) {
				return fmt.Errorf("truncated RLE run")
			}
			for i := 0; i < count && pixel < total; i++ {
				img.setPixel(pixel, src[pos:], perPixel, topDown)
				pixel++
			}
			pos += perPixel
		} else {
			// Literal: count individual pixels.
			if pos+count*perPixel > len(src) {
				return fmt.Errorf("truncated RLE literal")
			}
			for i := 0; i < count && pixel < total; i++ {
				img.setPixel(pixel, src[pos:], perPixel, topDown)
				pixel++
				pos += perPixel
			}
		}
	}
	return nil
}

// setPixel writes BGR(A) source bytes as RGBA at linear index i,
// flipping rows for bottom-up files.
func (img *Image) setPixel(i int, src []byte, perPixel int, topDown bool) {
	x := i % img.Width
	y := i / img.Width
	if !topDown {
		y = img.Height - 1 - y
	}
	dst := (y*img.Width + x) * 4

	img.Pixels[dst] = src[2]
	img.Pixels[dst+1] = src[1]
	img.Pixels[dst+2] = src[0]
	if perPixel == 4 {
		img.Pixels[dst+3] = src[3]
	} else {
		img.Pixels[dst+3] = 255
	}
}
