package imaging

import (
	"errors"
	"image"
	"image/color"
)

// ErrInvalidDimensions is returned when a bitmap or target geometry has a
// zero or negative area.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Bitmap is a tightly packed 8-bit RGB raster in scan order.
type Bitmap struct {
	W, H int
	Pix  []uint8 // 3*W*H bytes, RGB
}

// NewBitmap allocates a black bitmap of the given size.
func NewBitmap(w, h int) *Bitmap {
	return &Bitmap{W: w, H: h, Pix: make([]uint8, 3*w*h)}
}

// RGBAt returns the pixel at (x, y). Out-of-range coordinates return black.
func (p *Bitmap) RGBAt(x, y int) (r, g, b uint8) {
	if x < 0 || x >= p.W || y < 0 || y >= p.H {
		return 0, 0, 0
	}
	i := 3 * (y*p.W + x)
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2]
}

// SetRGB sets the pixel at (x, y). Out-of-range coordinates are ignored.
func (p *Bitmap) SetRGB(x, y int, r, g, b uint8) {
	if x < 0 || x >= p.W || y < 0 || y >= p.H {
		return
	}
	i := 3 * (y*p.W + x)
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = r, g, b
}

// toRGBA copies the bitmap into a stdlib RGBA image for use with x/image scalers.
func (p *Bitmap) toRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.W, p.H))
	for y := 0; y < p.H; y++ {
		si := 3 * y * p.W
		di := y * img.Stride
		for x := 0; x < p.W; x++ {
			img.Pix[di+0] = p.Pix[si+0]
			img.Pix[di+1] = p.Pix[si+1]
			img.Pix[di+2] = p.Pix[si+2]
			img.Pix[di+3] = 0xFF
			si += 3
			di += 4
		}
	}
	return img
}

// FromImage flattens any image.Image into a Bitmap, compositing over black.
func FromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	p := NewBitmap(bounds.Dx(), bounds.Dy())
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			p.Pix[i+0] = c.R
			p.Pix[i+1] = c.G
			p.Pix[i+2] = c.B
			i += 3
		}
	}
	return p
}
