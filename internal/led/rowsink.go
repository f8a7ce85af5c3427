package led

import "time"

// Packed row byte layout shared by the encoder and every sink. Each byte
// carries the six HUB75 data-line bits for one column: the upper-half pixel
// on R1/G1/B1 and the lower-half pixel on R2/G2/B2.
const (
	BitR1 = 1 << 5
	BitG1 = 1 << 4
	BitB1 = 1 << 3
	BitR2 = 1 << 2
	BitG2 = 1 << 1
	BitB2 = 1 << 0
)

// RowSink is the hardware signaling boundary of the panel driver. One scan
// line goes out as ShiftRow (bit-serial data), Latch (row address select +
// latch pulse, output gated off), then Hold (output enabled for the
// bit-plane's time weight).
type RowSink interface {
	ShiftRow(plane, row int, bits []byte) error
	Latch(row int) error
	Hold(d time.Duration) error
	// Blank gates the output off, leaving the panel dark.
	Blank() error
	Close() error
}

// Tee duplicates sink calls, e.g. hardware plus preview.
type Tee struct {
	A, B RowSink
}

func (t Tee) ShiftRow(plane, row int, bits []byte) error {
	err := t.A.ShiftRow(plane, row, bits)
	if err2 := t.B.ShiftRow(plane, row, bits); err == nil {
		err = err2
	}
	return err
}

func (t Tee) Latch(row int) error {
	err := t.A.Latch(row)
	if err2 := t.B.Latch(row); err == nil {
		err = err2
	}
	return err
}

func (t Tee) Hold(d time.Duration) error {
	err := t.A.Hold(d)
	if err2 := t.B.Hold(d); err == nil {
		err = err2
	}
	return err
}

func (t Tee) Blank() error {
	err := t.A.Blank()
	if err2 := t.B.Blank(); err == nil {
		err = err2
	}
	return err
}

func (t Tee) Close() error {
	err := t.A.Close()
	if err2 := t.B.Close(); err == nil {
		err = err2
	}
	return err
}
