package led

import (
	"sync"
	"time"
)

// FramePublisher receives reconstructed RGB frames, one per refresh cycle.
type FramePublisher interface {
	PublishFrame(w, h int, rgb []byte)
}

// Preview reconstructs full frames from the shifted bit-planes and hands
// them to a publisher, typically the websocket hub. It decodes exactly what
// the panel would show, so the preview reflects quantization and plane order
// rather than the pipeline's intermediate bitmaps.
type Preview struct {
	mu       sync.Mutex
	w, h     int
	scanRows int
	depth    int
	acc      []uint8 // quantized channel values, 3 per pixel
	pub      FramePublisher
	seen     int // rows shifted in the current cycle
}

func NewPreview(w, h, depth int, pub FramePublisher) *Preview {
	return &Preview{
		w:        w,
		h:        h,
		scanRows: h / 2,
		depth:    depth,
		acc:      make([]uint8, 3*w*h),
		pub:      pub,
	}
}

func (p *Preview) ShiftRow(plane, row int, bits []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if plane == 0 && row == 0 {
		for i := range p.acc {
			p.acc[i] = 0
		}
		p.seen = 0
	}
	upper := 3 * row * p.w
	lower := 3 * (row + p.scanRows) * p.w
	for x, v := range bits {
		if x >= p.w {
			break
		}
		if v&BitR1 != 0 {
			p.acc[upper+3*x] |= 1 << plane
		}
		if v&BitG1 != 0 {
			p.acc[upper+3*x+1] |= 1 << plane
		}
		if v&BitB1 != 0 {
			p.acc[upper+3*x+2] |= 1 << plane
		}
		if v&BitR2 != 0 {
			p.acc[lower+3*x] |= 1 << plane
		}
		if v&BitG2 != 0 {
			p.acc[lower+3*x+1] |= 1 << plane
		}
		if v&BitB2 != 0 {
			p.acc[lower+3*x+2] |= 1 << plane
		}
	}

	p.seen++
	if plane == p.depth-1 && row == p.scanRows-1 {
		p.emit()
	}
	return nil
}

// emit expands quantized values to 8 bits and publishes. Caller holds mu.
func (p *Preview) emit() {
	if p.pub == nil {
		return
	}
	maxQ := (1 << p.depth) - 1
	rgb := make([]uint8, len(p.acc))
	for i, v := range p.acc {
		rgb[i] = uint8(int(v) * 255 / maxQ)
	}
	p.pub.PublishFrame(p.w, p.h, rgb)
}

func (p *Preview) Latch(row int) error        { return nil }
func (p *Preview) Hold(d time.Duration) error { return nil }
func (p *Preview) Blank() error               { return nil }
func (p *Preview) Close() error               { return nil }
