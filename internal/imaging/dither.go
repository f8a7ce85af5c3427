package imaging

import "fmt"

// Quantized is a bitmap whose channel values have been reduced to BitDepth
// bits (0..2^BitDepth-1) by error diffusion.
type Quantized struct {
	W, H     int
	BitDepth int
	Pix      []uint8 // 3*W*H, one quantized value per channel
}

// MaxValue is the largest channel value representable at the bit depth.
func (q *Quantized) MaxValue() int { return (1 << q.BitDepth) - 1 }

// RGBAt returns the quantized channel values at (x, y).
func (q *Quantized) RGBAt(x, y int) (r, g, b uint8) {
	i := 3 * (y*q.W + x)
	return q.Pix[i], q.Pix[i+1], q.Pix[i+2]
}

// QuantizeOptions tunes the quantization pass.
type QuantizeOptions struct {
	// Gamma applies perceptual correction before quantizing.
	Gamma bool
}

// Quantize reduces an 8-bit bitmap to bitDepth bits per channel using
// serpentine Floyd-Steinberg error diffusion. Accumulated quantization error
// from already-processed pixels is folded into each pixel before rounding,
// which keeps the local mean faithful to the source on low-depth panels.
func Quantize(src *Bitmap, bitDepth int, opts QuantizeOptions) (*Quantized, error) {
	if src == nil || src.W <= 0 || src.H <= 0 {
		return nil, ErrInvalidDimensions
	}
	if bitDepth < 1 || bitDepth > 8 {
		return nil, fmt.Errorf("bit depth %d out of range 1..8", bitDepth)
	}

	w, h := src.W, src.H
	out := &Quantized{W: w, H: h, BitDepth: bitDepth, Pix: make([]uint8, 3*w*h)}
	maxQ := float32((int(1) << bitDepth) - 1)

	// One row of carried error per channel for the current and next scan line.
	cur := make([][3]float32, w)
	next := make([][3]float32, w)

	for y := 0; y < h; y++ {
		ltr := y%2 == 0
		x0, x1, step := 0, w, 1
		if !ltr {
			x0, x1, step = w-1, -1, -1
		}
		for x := x0; x != x1; x += step {
			i := 3 * (y*w + x)
			for c := 0; c < 3; c++ {
				v := src.Pix[i+c]
				if opts.Gamma {
					v = gammaTable[v]
				}
				val := float32(v) + cur[x][c]

				q := int32(val*maxQ/255 + 0.5)
				if q < 0 {
					q = 0
				}
				if q > int32(maxQ) {
					q = int32(maxQ)
				}
				out.Pix[i+c] = uint8(q)

				// Diffuse the residual 7/16 ahead, 3/16, 5/16, 1/16 below,
				// mirrored on right-to-left rows.
				e := val - float32(q)*255/maxQ
				if xn := x + step; xn >= 0 && xn < w {
					cur[xn][c] += e * 7 / 16
				}
				if y+1 < h {
					if xp := x - step; xp >= 0 && xp < w {
						next[xp][c] += e * 3 / 16
					}
					next[x][c] += e * 5 / 16
					if xn := x + step; xn >= 0 && xn < w {
						next[xn][c] += e * 1 / 16
					}
				}
			}
		}
		cur, next = next, cur
		for x := range next {
			next[x] = [3]float32{}
		}
	}
	return out, nil
}
