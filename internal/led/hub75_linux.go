//go:build linux

package led

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// HUB75 bit-bangs the row-scanned panel protocol through periph.io GPIO.
// Callers must run host.Init() before constructing one.
type HUB75 struct {
	r1, g1, b1 gpio.PinOut
	r2, g2, b2 gpio.PinOut
	addr       [5]gpio.PinOut // A..E row select
	clk        gpio.PinOut
	lat        gpio.PinOut
	oe         gpio.PinOut // active low
}

// NewHUB75 resolves and initializes all pins to the blanked state.
func NewHUB75(p HUB75Pins) (*HUB75, error) {
	h := &HUB75{}
	resolve := func(name string, dst *gpio.PinOut, level gpio.Level) error {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return fmt.Errorf("hub75: no such pin %q", name)
		}
		if err := pin.Out(level); err != nil {
			return fmt.Errorf("hub75: init %q: %w", name, err)
		}
		*dst = pin
		return nil
	}

	for _, it := range []struct {
		name  string
		dst   *gpio.PinOut
		level gpio.Level
	}{
		{p.R1, &h.r1, gpio.Low},
		{p.G1, &h.g1, gpio.Low},
		{p.B1, &h.b1, gpio.Low},
		{p.R2, &h.r2, gpio.Low},
		{p.G2, &h.g2, gpio.Low},
		{p.B2, &h.b2, gpio.Low},
		{p.A, &h.addr[0], gpio.Low},
		{p.B, &h.addr[1], gpio.Low},
		{p.C, &h.addr[2], gpio.Low},
		{p.D, &h.addr[3], gpio.Low},
		{p.E, &h.addr[4], gpio.Low},
		{p.Clk, &h.clk, gpio.Low},
		{p.Lat, &h.lat, gpio.Low},
		{p.OE, &h.oe, gpio.High}, // output disabled until first Hold
	} {
		if err := resolve(it.name, it.dst, it.level); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// ShiftRow clocks one packed scan row onto the data lines, MSB column first.
func (h *HUB75) ShiftRow(plane, row int, bits []byte) error {
	for _, v := range bits {
		if err := h.setData(v); err != nil {
			return err
		}
		if err := h.clk.Out(gpio.High); err != nil {
			return err
		}
		if err := h.clk.Out(gpio.Low); err != nil {
			return err
		}
	}
	return nil
}

func (h *HUB75) setData(v byte) error {
	if err := h.r1.Out(gpio.Level(v&BitR1 != 0)); err != nil {
		return err
	}
	if err := h.g1.Out(gpio.Level(v&BitG1 != 0)); err != nil {
		return err
	}
	if err := h.b1.Out(gpio.Level(v&BitB1 != 0)); err != nil {
		return err
	}
	if err := h.r2.Out(gpio.Level(v&BitR2 != 0)); err != nil {
		return err
	}
	if err := h.g2.Out(gpio.Level(v&BitG2 != 0)); err != nil {
		return err
	}
	return h.b2.Out(gpio.Level(v&BitB2 != 0))
}

// Latch gates the output off, pulses LAT to move the shifted bits to the
// output stage, and selects the row address.
func (h *HUB75) Latch(row int) error {
	if err := h.oe.Out(gpio.High); err != nil {
		return err
	}
	if err := h.lat.Out(gpio.High); err != nil {
		return err
	}
	if err := h.lat.Out(gpio.Low); err != nil {
		return err
	}
	for i, pin := range h.addr {
		if err := pin.Out(gpio.Level(row&(1<<i) != 0)); err != nil {
			return err
		}
	}
	return nil
}

// Hold enables the output for exactly d. The wait blocks only on the
// monotonic clock: a coarse sleep covers the bulk, a spin covers the tail,
// keeping exposure windows accurate well below scheduler granularity.
func (h *HUB75) Hold(d time.Duration) error {
	if err := h.oe.Out(gpio.Low); err != nil {
		return err
	}
	deadline := time.Now().Add(d)
	if d > 500*time.Microsecond {
		time.Sleep(d - 200*time.Microsecond)
	}
	for time.Now().Before(deadline) {
	}
	return h.oe.Out(gpio.High)
}

func (h *HUB75) Blank() error {
	return h.oe.Out(gpio.High)
}

func (h *HUB75) Close() error {
	return h.Blank()
}
