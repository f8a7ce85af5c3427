package panel

import "sync/atomic"

// FrameBuffer hands completed frames from the image pipeline to the driver.
//
// Discipline: the pipeline goroutine is the sole caller of WriteBack and
// RequestSwap; the driver goroutine is the sole caller of SwapIfPending and
// Front. A BitPlaneSet is never mutated after WriteBack, so publishing whole
// pointers makes the swap atomic without locking the scan path. Writing a
// new back frame before the previous swap was consumed simply replaces it:
// latest wins, nothing queues.
type FrameBuffer struct {
	front   atomic.Pointer[BitPlaneSet]
	back    atomic.Pointer[BitPlaneSet]
	pending atomic.Bool
}

func NewFrameBuffer() *FrameBuffer { return &FrameBuffer{} }

// WriteBack stores a completed frame in the non-visible slot.
func (f *FrameBuffer) WriteBack(s *BitPlaneSet) {
	f.back.Store(s)
}

// RequestSwap marks the back frame ready to become visible.
func (f *FrameBuffer) RequestSwap() {
	f.pending.Store(true)
}

// SwapIfPending makes the back frame visible if a swap was requested.
// Called only by the driver at a refresh-cycle boundary, never mid-scan.
func (f *FrameBuffer) SwapIfPending() bool {
	if !f.pending.CompareAndSwap(true, false) {
		return false
	}
	if s := f.back.Load(); s != nil {
		f.front.Store(s)
	}
	return true
}

// Front returns the visible frame, nil before the first swap.
func (f *FrameBuffer) Front() *BitPlaneSet {
	return f.front.Load()
}
