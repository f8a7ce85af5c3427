//go:build !linux

package led

import (
	"fmt"
	"time"
)

type HUB75 struct{}

func NewHUB75(p HUB75Pins) (*HUB75, error) {
	return nil, fmt.Errorf("hub75 gpio driver not supported on this platform")
}

func (h *HUB75) ShiftRow(plane, row int, bits []byte) error { return nil }
func (h *HUB75) Latch(row int) error                        { return nil }
func (h *HUB75) Hold(d time.Duration) error                 { return nil }
func (h *HUB75) Blank() error                               { return nil }
func (h *HUB75) Close() error                               { return nil }
