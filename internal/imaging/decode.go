package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/webp"
)

// Format identifies a supported compressed image container.
type Format int

const (
	FormatWebP Format = iota
	FormatJPEG
)

func (f Format) String() string {
	switch f {
	case FormatWebP:
		return "webp"
	case FormatJPEG:
		return "jpeg"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// MaxImageDim bounds decoded source dimensions so a hostile payload cannot
// make us allocate an arbitrarily large raster.
const MaxImageDim = 4096

// DecodeError reports a payload that could not be turned into a bitmap.
type DecodeError struct {
	Format Format
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Format, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode turns a compressed payload into a Bitmap sized to the source image.
// The header is parsed first so oversized images are rejected before any
// pixel storage is allocated.
func Decode(data []byte, hint Format) (*Bitmap, error) {
	var (
		cfg image.Config
		err error
	)
	switch hint {
	case FormatWebP:
		cfg, err = webp.DecodeConfig(bytes.NewReader(data))
	case FormatJPEG:
		cfg, err = jpeg.DecodeConfig(bytes.NewReader(data))
	default:
		return nil, &DecodeError{Format: hint, Reason: "unsupported format"}
	}
	if err != nil {
		return nil, &DecodeError{Format: hint, Reason: "malformed header", Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &DecodeError{Format: hint, Reason: "zero-area image"}
	}
	if cfg.Width > MaxImageDim || cfg.Height > MaxImageDim {
		return nil, &DecodeError{
			Format: hint,
			Reason: fmt.Sprintf("image %dx%d exceeds limit of %d", cfg.Width, cfg.Height, MaxImageDim),
		}
	}

	var img image.Image
	switch hint {
	case FormatWebP:
		img, err = webp.Decode(bytes.NewReader(data))
	case FormatJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, &DecodeError{Format: hint, Reason: "truncated or corrupt payload", Err: err}
	}
	return FromImage(img), nil
}
