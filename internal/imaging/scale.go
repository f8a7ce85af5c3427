package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// Resample scales src to exactly w x h using a kernel resampler.
// CatmullRom keeps edges crisp at panel resolutions; extreme downscales fall
// back to the cheaper bilinear approximation to bound CPU per frame.
func Resample(src *Bitmap, w, h int) (*Bitmap, error) {
	if src == nil || src.W <= 0 || src.H <= 0 || w <= 0 || h <= 0 {
		return nil, ErrInvalidDimensions
	}
	if src.W == w && src.H == h {
		out := NewBitmap(w, h)
		copy(out.Pix, src.Pix)
		return out, nil
	}

	var scaler draw.Scaler = draw.CatmullRom
	if src.W >= 8*w || src.H >= 8*h {
		scaler = draw.ApproxBiLinear
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	srcImg := src.toRGBA()
	scaler.Scale(dst, dst.Bounds(), srcImg, srcImg.Bounds(), draw.Src, nil)

	out := NewBitmap(w, h)
	for y := 0; y < h; y++ {
		si := y * dst.Stride
		di := 3 * y * w
		for x := 0; x < w; x++ {
			out.Pix[di+0] = dst.Pix[si+0]
			out.Pix[di+1] = dst.Pix[si+1]
			out.Pix[di+2] = dst.Pix[si+2]
			si += 4
			di += 3
		}
	}
	return out, nil
}
