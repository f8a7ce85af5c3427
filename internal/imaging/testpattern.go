package imaging

import "math"

// ColorWheel renders a hue wheel centered on the bitmap, used as the startup
// image before the first payload arrives.
func ColorWheel(w, h int) *Bitmap {
	p := NewBitmap(w, h)
	cx := float64(w-1) / 2
	cy := float64(h-1) / 2
	maxR := math.Hypot(cx, cy)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			hue := math.Mod(math.Atan2(dy, dx)/(2*math.Pi)+1, 1)
			r, g, b := wheelColor(hue)
			fade := 1 - math.Hypot(dx, dy)/maxR
			if fade < 0 {
				fade = 0
			}
			p.SetRGB(x, y, uint8(float64(r)*fade), uint8(float64(g)*fade), uint8(float64(b)*fade))
		}
	}
	return p
}

func wheelColor(h float64) (uint8, uint8, uint8) {
	h *= 6
	switch {
	case h < 1:
		return 255, uint8(255 * h), 0
	case h < 2:
		return uint8(255 * (2 - h)), 255, 0
	case h < 3:
		return 0, 255, uint8(255 * (h - 2))
	case h < 4:
		return 0, uint8(255 * (4 - h)), 255
	case h < 5:
		return uint8(255 * (h - 4)), 0, 255
	default:
		return 255, 0, uint8(255 * (6 - h))
	}
}
