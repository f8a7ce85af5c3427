package panel

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-matrixgram/internal/imaging"
)

// recordSink captures signaling calls so timing and ordering can be checked
// without hardware.
type recordSink struct {
	holds    map[int]time.Duration // per-plane accumulated exposure
	last     int
	rows     int
	blanks   int
	shiftErr error
}

func newRecordSink() *recordSink { return &recordSink{holds: map[int]time.Duration{}} }

func (s *recordSink) ShiftRow(plane, row int, bits []byte) error {
	s.last = plane
	s.rows++
	return s.shiftErr
}
func (s *recordSink) Latch(row int) error { return nil }
func (s *recordSink) Hold(d time.Duration) error {
	s.holds[s.last] += d
	return nil
}
func (s *recordSink) Blank() error { return nil }
func (s *recordSink) Close() error { return nil }

func testDriver(cfg Config, fb *FrameBuffer, sink *recordSink) *Driver {
	d := NewDriver(cfg, fb, sink, zerolog.Nop())
	// Virtual clock: sleeps advance time instantly, scanning takes zero.
	now := time.Unix(0, 0)
	d.now = func() time.Time { return now }
	d.sleep = func(dur time.Duration) { now = now.Add(dur) }
	return d
}

func encodeFrame(t *testing.T, cfg Config, val uint8) *BitPlaneSet {
	t.Helper()
	q := &imaging.Quantized{
		W: cfg.Cols(), H: cfg.Height, BitDepth: cfg.BitDepth,
		Pix: make([]uint8, 3*cfg.Cols()*cfg.Height),
	}
	for i := range q.Pix {
		q.Pix[i] = val
	}
	set, err := EncodePlanes(q, cfg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return set
}

func TestDriverIdleBlanksPanel(t *testing.T) {
	cfg := Config{Width: 64, Height: 32, ChainLength: 1, BitDepth: 3, RefreshHz: 100}
	sink := newRecordSink()
	d := testDriver(cfg, NewFrameBuffer(), sink)

	d.renderCycle()
	if sink.rows != 0 {
		t.Fatalf("idle driver shifted %d rows", sink.rows)
	}
}

func TestDriverExposureWeights(t *testing.T) {
	// Within one refresh cycle, plane i must be held 2^i times longer than
	// plane 0: for depth 3 the plane2:plane0 ratio is exactly 4:1.
	cfg := Config{Width: 64, Height: 32, ChainLength: 1, BitDepth: 3, RefreshHz: 100}
	fb := NewFrameBuffer()
	fb.WriteBack(encodeFrame(t, cfg, 5))
	fb.RequestSwap()

	sink := newRecordSink()
	d := testDriver(cfg, fb, sink)
	d.renderCycle()

	h0, h1, h2 := sink.holds[0], sink.holds[1], sink.holds[2]
	if h0 <= 0 {
		t.Fatalf("plane 0 was never held")
	}
	if h1 != 2*h0 {
		t.Fatalf("plane 1 hold %v, want 2x plane 0 (%v)", h1, h0)
	}
	if h2 != 4*h0 {
		t.Fatalf("plane 2 hold %v, want 4x plane 0 (%v)", h2, h0)
	}
}

func TestDriverSwapsOnlyAtCycleStart(t *testing.T) {
	cfg := Config{Width: 32, Height: 16, ChainLength: 1, BitDepth: 2, RefreshHz: 100}
	fb := NewFrameBuffer()
	sink := newRecordSink()
	d := testDriver(cfg, fb, sink)

	a := encodeFrame(t, cfg, 1)
	fb.WriteBack(a)
	fb.RequestSwap()

	d.renderCycle()
	if fb.Front() != a {
		t.Fatalf("frame not visible after cycle")
	}

	// A swap requested between cycles is picked up only at the next
	// boundary, never observed mid-scan by construction of renderCycle.
	b := encodeFrame(t, cfg, 2)
	fb.WriteBack(b)
	fb.RequestSwap()
	if fb.Front() != a {
		t.Fatalf("pending frame became visible without the driver swapping")
	}
	d.renderCycle()
	if fb.Front() != b {
		t.Fatalf("pending frame not picked up at cycle start")
	}
}

func TestDriverUnderrunIsSoft(t *testing.T) {
	cfg := Config{Width: 32, Height: 16, ChainLength: 1, BitDepth: 2, RefreshHz: 100}
	fb := NewFrameBuffer()
	fb.WriteBack(encodeFrame(t, cfg, 3))
	fb.RequestSwap()

	sink := newRecordSink()
	sink.shiftErr = errors.New("shift register stalled")
	d := testDriver(cfg, fb, sink)

	d.renderCycle()
	if d.Underruns() == 0 {
		t.Fatalf("shift failures should be recorded as underruns")
	}
	// Every row was still attempted; the scan never stops on a bad row.
	want := cfg.ScanRows() * cfg.BitDepth
	if sink.rows != want {
		t.Fatalf("attempted %d rows, want %d", sink.rows, want)
	}
}
