// Package pix defines the decoded pixel buffer handed to the recognition
// engine and the single-owner handle that carries it.
package pix

import (
	"bytes"
	"fmt"
	"image"

	"github.com/adverant/nexus/ocr-worker/internal/resource"
)

// Supported pixel depths.
const (
	Depth8  = 8  // one byte of luminance per pixel
	Depth32 = 32 // RGBA, four bytes per pixel
)

// Pix is a decoded image in the engine's fixed pixel contract.
type Pix struct {
	Width  int
	Height int
	Depth  int
	Stride int
	Data   []byte

	// XRes/YRes carry the source resolution in DPI when known.
	XRes int
	YRes int
}

// Handle owns one Pix.
type Handle = resource.Handle[*Pix]

// New allocates a zeroed Pix.
func New(width, height, depth int) (*Pix, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if depth != Depth8 && depth != Depth32 {
		return nil, fmt.Errorf("unsupported depth %d", depth)
	}
	stride := width * depth / 8
	return &Pix{
		Width:  width,
		Height: height,
		Depth:  depth,
		Stride: stride,
		Data:   make([]byte, stride*height),
	}, nil
}

// Validate checks the buffer against its declared geometry.
func (p *Pix) Validate() error {
	if p == nil {
		return fmt.Errorf("nil image")
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", p.Width, p.Height)
	}
	if p.Depth != Depth8 && p.Depth != Depth32 {
		return fmt.Errorf("unsupported depth %d", p.Depth)
	}
	if p.Stride < p.Width*p.Depth/8 {
		return fmt.Errorf("stride %d too small for width %d", p.Stride, p.Width)
	}
	if len(p.Data) < p.Stride*p.Height {
		return fmt.Errorf("buffer holds %d bytes, need %d", len(p.Data), p.Stride*p.Height)
	}
	return nil
}

// Bounds returns the image rectangle in pixel coordinates.
func (p *Pix) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

// Gray returns the luminance at (x, y).
func (p *Pix) Gray(x, y int) uint8 {
	off := y*p.Stride + x*p.Depth/8
	if p.Depth == Depth8 {
		return p.Data[off]
	}
	r, g, b := uint32(p.Data[off]), uint32(p.Data[off+1]), uint32(p.Data[off+2])
	return uint8((299*r + 587*g + 114*b) / 1000)
}

// Destroy drops the pixel buffer. It is the destroy function of Handle.
func Destroy(p *Pix) {
	if p == nil {
		return
	}
	p.Data = nil
	p.Width, p.Height, p.Stride = 0, 0, 0
}

// Adopt wraps p in a Handle that destroys it on release.
func Adopt(p *Pix) *Handle {
	return resource.AdoptPtr(p, Destroy)
}

// EncodePNM serialises the image as binary PGM (depth 8) or PPM (depth 32,
// alpha dropped), the simplest format every engine build can read.
func EncodePNM(p *Pix) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if p.Depth == Depth8 {
		fmt.Fprintf(&buf, "P5\n%d %d\n255\n", p.Width, p.Height)
		for y := 0; y < p.Height; y++ {
			row := p.Data[y*p.Stride : y*p.Stride+p.Width]
			buf.Write(row)
		}
		return buf.Bytes(), nil
	}

	fmt.Fprintf(&buf, "P6\n%d %d\n255\n", p.Width, p.Height)
	for y := 0; y < p.Height; y++ {
		row := p.Data[y*p.Stride:]
		for x := 0; x < p.Width; x++ {
			buf.Write(row[x*4 : x*4+3])
		}
	}
	return buf.Bytes(), nil
}
