package pix

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode converts an encoded upload into an 8-bit grayscale Pix. The
// returned format name is the one registered with the image package.
func Decode(data []byte) (*Pix, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	p, err := FromImage(img)
	if err != nil {
		return nil, format, err
	}
	return p, format, nil
}

// FromImage converts any image.Image into an 8-bit grayscale Pix.
func FromImage(img image.Image) (*Pix, error) {
	b := img.Bounds()
	p, err := New(b.Dx(), b.Dy(), Depth8)
	if err != nil {
		return nil, err
	}

	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < p.Height; y++ {
			src := gray.Pix[(y+b.Min.Y-gray.Rect.Min.Y)*gray.Stride+(b.Min.X-gray.Rect.Min.X):]
			copy(p.Data[y*p.Stride:y*p.Stride+p.Width], src[:p.Width])
		}
		return p, nil
	}

	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			p.Data[y*p.Stride+x] = c.Y
		}
	}
	return p, nil
}
