package panel

import (
	"fmt"

	"github.com/coreman2200/funtimes-matrixgram/internal/imaging"
	"github.com/coreman2200/funtimes-matrixgram/internal/led"
)

// BitPlaneSet holds one frame as Depth bit-planes in shift order. Plane 0 is
// the least significant bit; plane i is displayed for 2^i time units. Rows
// are scan rows (half the panel height), each byte packing the six HUB75
// data bits for one column.
type BitPlaneSet struct {
	Depth int
	Rows  int
	Cols  int
	data  []uint8
}

// NewBitPlaneSet allocates a blank (all dark) set.
func NewBitPlaneSet(depth, rows, cols int) *BitPlaneSet {
	return &BitPlaneSet{Depth: depth, Rows: rows, Cols: cols, data: make([]uint8, depth*rows*cols)}
}

// Row returns the packed bytes for one plane's scan row, ready to shift out.
func (s *BitPlaneSet) Row(plane, row int) []uint8 {
	off := (plane*s.Rows + row) * s.Cols
	return s.data[off : off+s.Cols]
}

// At reconstructs the quantized channel values at panel coordinates (x, y)
// by summing plane bits. Used by the preview sink and as the round-trip
// check against the encoder input.
func (s *BitPlaneSet) At(x, y int) (r, g, b uint8) {
	row := y % s.Rows
	rMask, gMask, bMask := uint8(led.BitR1), uint8(led.BitG1), uint8(led.BitB1)
	if y >= s.Rows {
		rMask, gMask, bMask = led.BitR2, led.BitG2, led.BitB2
	}
	for plane := 0; plane < s.Depth; plane++ {
		v := s.Row(plane, row)[x]
		if v&rMask != 0 {
			r |= 1 << plane
		}
		if v&gMask != 0 {
			g |= 1 << plane
		}
		if v&bMask != 0 {
			b |= 1 << plane
		}
	}
	return r, g, b
}

// EncodePlanes slices a quantized bitmap into bit-planes for the panel.
// A geometry or depth mismatch is a programming error in the pipeline, not
// something that happens with well-formed input.
func EncodePlanes(q *imaging.Quantized, cfg Config) (*BitPlaneSet, error) {
	if q.W != cfg.Cols() || q.H != cfg.Height {
		return nil, fmt.Errorf("quantized bitmap %dx%d does not match panel %dx%d",
			q.W, q.H, cfg.Cols(), cfg.Height)
	}
	if q.BitDepth != cfg.BitDepth {
		return nil, fmt.Errorf("quantized depth %d does not match panel depth %d", q.BitDepth, cfg.BitDepth)
	}

	set := NewBitPlaneSet(cfg.BitDepth, cfg.ScanRows(), cfg.Cols())
	for y := 0; y < q.H; y++ {
		row := y % set.Rows
		lower := y >= set.Rows
		for x := 0; x < q.W; x++ {
			r, g, b := q.RGBAt(x, y)
			for plane := 0; plane < set.Depth; plane++ {
				var bits uint8
				if (r>>plane)&1 != 0 {
					bits |= led.BitR1
				}
				if (g>>plane)&1 != 0 {
					bits |= led.BitG1
				}
				if (b>>plane)&1 != 0 {
					bits |= led.BitB1
				}
				if lower {
					// Lower-half pixels ride the R2/G2/B2 lines of the
					// same shifted byte.
					bits >>= 3
				}
				set.Row(plane, row)[x] |= bits
			}
		}
	}
	return set, nil
}
