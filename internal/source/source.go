// Package source delivers raw image payloads to the rendering pipeline.
package source

import (
	"context"

	"github.com/coreman2200/funtimes-matrixgram/internal/imaging"
)

// Payload is one image as received from the outside world.
type Payload struct {
	Data    []byte
	Format  imaging.Format
	Caption string
}

// Source yields payloads as they arrive. Next blocks until a payload is
// available or the context ends; implementations decide how messages are
// fetched (long polling, push, ...).
type Source interface {
	Next(ctx context.Context) (Payload, error)
}
