package imaging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, r, g, b uint8) *Bitmap {
	p := NewBitmap(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p.SetRGB(x, y, r, g, b)
		}
	}
	return p
}

func TestQuantizeSolidRedScaledToPanel(t *testing.T) {
	// A 2x2 solid red source scaled to a 64x32 panel at 4-bit depth must
	// quantize every pixel to full red and zero green/blue.
	src := solid(2, 2, 255, 0, 0)
	scaled, err := Resample(src, 64, 32)
	require.NoError(t, err)

	q, err := Quantize(scaled, 4, QuantizeOptions{})
	require.NoError(t, err)
	require.Equal(t, 64, q.W)
	require.Equal(t, 32, q.H)

	for y := 0; y < q.H; y++ {
		for x := 0; x < q.W; x++ {
			r, g, b := q.RGBAt(x, y)
			require.Equal(t, uint8(15), r, "red at (%d,%d)", x, y)
			require.Equal(t, uint8(0), g, "green at (%d,%d)", x, y)
			require.Equal(t, uint8(0), b, "blue at (%d,%d)", x, y)
		}
	}
}

func TestQuantizeUniformRegionIsUnbiased(t *testing.T) {
	// Error diffusion must keep the mean reconstructed value of a large
	// uniform region within one quantization step of the source value.
	const v = 200
	const depth = 3
	src := solid(64, 64, v, v, v)

	q, err := Quantize(src, depth, QuantizeOptions{})
	require.NoError(t, err)

	maxQ := float64(q.MaxValue())
	step := 255 / maxQ
	var sum float64
	for i := 0; i < len(q.Pix); i += 3 {
		sum += float64(q.Pix[i]) * 255 / maxQ
	}
	mean := sum / float64(64*64)
	assert.LessOrEqual(t, math.Abs(mean-v), step, "mean %.2f drifted from %d", mean, v)
}

func TestQuantizeInvalidInput(t *testing.T) {
	_, err := Quantize(nil, 4, QuantizeOptions{})
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Quantize(&Bitmap{W: 0, H: 10}, 4, QuantizeOptions{})
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Quantize(solid(4, 4, 0, 0, 0), 0, QuantizeOptions{})
	assert.Error(t, err)
	_, err = Quantize(solid(4, 4, 0, 0, 0), 9, QuantizeOptions{})
	assert.Error(t, err)
}

func TestResampleInvalidDimensions(t *testing.T) {
	_, err := Resample(nil, 64, 32)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = Resample(solid(4, 4, 0, 0, 0), 0, 32)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = Resample(&Bitmap{W: 0, H: 0}, 64, 32)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestResampleSinglePixelReplicates(t *testing.T) {
	src := solid(1, 1, 30, 60, 90)
	out, err := Resample(src, 8, 8)
	require.NoError(t, err)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			r, g, b := out.RGBAt(x, y)
			assert.InDelta(t, 30, int(r), 1)
			assert.InDelta(t, 60, int(g), 1)
			assert.InDelta(t, 90, int(b), 1)
		}
	}
}
