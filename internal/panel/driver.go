package panel

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-matrixgram/internal/led"
)

// Driver is the real-time scan loop. It free-runs at the configured refresh
// rate, regenerating the visible frame with binary code modulation: within
// each cycle every bit-plane is scanned across all rows and held for a
// duration proportional to its significance.
type Driver struct {
	cfg  Config
	fb   *FrameBuffer
	sink led.RowSink
	log  zerolog.Logger

	cycle time.Duration
	unit  time.Duration // exposure of plane 0 per row

	underruns atomic.Uint64

	// timing seams, replaced in tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewDriver wires a driver to a validated config, a frame buffer and a sink.
func NewDriver(cfg Config, fb *FrameBuffer, sink led.RowSink, log zerolog.Logger) *Driver {
	cycle := time.Second / time.Duration(cfg.RefreshHz)
	// The cycle budget splits into scanRows*(2^N-1) exposure units: plane i
	// holds each row for unit<<i, so the most significant plane owns about
	// half the cycle and plane 0 the shortest sliver.
	slots := cfg.ScanRows() * ((1 << cfg.BitDepth) - 1)
	unit := cycle / time.Duration(slots)
	if unit <= 0 {
		unit = time.Microsecond
	}
	return &Driver{
		cfg:   cfg,
		fb:    fb,
		sink:  sink,
		log:   log,
		cycle: cycle,
		unit:  unit,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Underruns reports how many scan deadlines have been missed so far.
func (d *Driver) Underruns() uint64 { return d.underruns.Load() }

// Run scans until the context is cancelled. It never returns on scan errors:
// a missed row is logged and the next one goes out regardless.
func (d *Driver) Run(ctx context.Context) error {
	// The scan loop owns its OS thread so decode work elsewhere cannot
	// preempt a hold window mid-plane.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer d.sink.Blank()

	d.log.Info().
		Int("width", d.cfg.Cols()).
		Int("height", d.cfg.Height).
		Int("bit_depth", d.cfg.BitDepth).
		Int("refresh_hz", d.cfg.RefreshHz).
		Dur("cycle", d.cycle).
		Msg("panel driver scanning")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		d.renderCycle()
	}
}

// renderCycle emits one full refresh: swap at the safe point, then scan
// planes 0..N-1 in order across every row.
func (d *Driver) renderCycle() {
	start := d.now()
	d.fb.SwapIfPending()

	front := d.fb.Front()
	if front == nil {
		// Idle: nothing to show yet, keep the panel dark but hold cadence.
		_ = d.sink.Blank()
		d.sleep(d.cycle)
		return
	}

	for plane := 0; plane < front.Depth; plane++ {
		hold := d.unit << plane
		for row := 0; row < front.Rows; row++ {
			if err := d.sink.ShiftRow(plane, row, front.Row(plane, row)); err != nil {
				d.noteUnderrun(plane, row, err)
				continue
			}
			if err := d.sink.Latch(row); err != nil {
				d.noteUnderrun(plane, row, err)
				continue
			}
			_ = d.sink.Hold(hold)
		}
	}

	elapsed := d.now().Sub(start)
	if elapsed > d.cycle {
		d.noteUnderrun(-1, -1, nil)
		return
	}
	d.sleep(d.cycle - elapsed)
}

// noteUnderrun records a soft timing/signaling failure. A single glitched
// row beats halting the whole panel, so scanning always continues.
func (d *Driver) noteUnderrun(plane, row int, err error) {
	n := d.underruns.Add(1)
	// Log sparsely; a struggling panel would otherwise drown the output.
	if n == 1 || n%1000 == 0 {
		d.log.Warn().
			Uint64("underruns", n).
			Int("plane", plane).
			Int("row", row).
			Err(err).
			Msg("scan deadline missed")
	}
}
