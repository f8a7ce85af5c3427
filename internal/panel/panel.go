package panel

import (
	"fmt"

	"github.com/coreman2200/funtimes-matrixgram/internal/imaging"
)

// Config describes the physical panel. It is built once at startup,
// validated, and treated as read-only by every consumer.
type Config struct {
	Width       int // pixels per panel
	Height      int // pixels, must be even (two halves scan together)
	ChainLength int // daisy-chained panels extending the columns
	BitDepth    int // bits per channel reproduced by BCM
	RefreshHz   int // full refresh cycles per second
}

// Cols is the total shifted columns across the chain.
func (c Config) Cols() int { return c.Width * c.ChainLength }

// ScanRows is the number of addressable rows; each drives two physical rows.
func (c Config) ScanRows() int { return c.Height / 2 }

// Validate enforces the startup invariants. A config that fails here must
// never reach the driver.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.ChainLength <= 0 {
		return fmt.Errorf("panel %dx%d chain %d: %w", c.Width, c.Height, c.ChainLength, imaging.ErrInvalidDimensions)
	}
	if c.Height%2 != 0 {
		return fmt.Errorf("panel height %d must be even: %w", c.Height, imaging.ErrInvalidDimensions)
	}
	if c.BitDepth < 1 || c.BitDepth > 8 {
		return fmt.Errorf("bit depth %d out of range 1..8", c.BitDepth)
	}
	if c.RefreshHz <= 0 {
		return fmt.Errorf("refresh rate %d must be positive", c.RefreshHz)
	}
	return nil
}
