// Package pipeline turns incoming payloads into visible frames: decode,
// resample, quantize, slice into bit-planes, publish to the frame buffer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-matrixgram/internal/imaging"
	"github.com/coreman2200/funtimes-matrixgram/internal/panel"
	"github.com/coreman2200/funtimes-matrixgram/internal/source"
)

// Options tunes per-frame processing.
type Options struct {
	// Gamma applies perceptual correction before quantizing. On by default
	// in the daemon; tests turn it off for exact-value assertions.
	Gamma bool
}

// Pipeline is the single writer of the frame buffer. It runs one payload at
// a time to completion; if payloads arrive faster than they process, the
// frame buffer's latest-wins handoff drops the stale ones.
type Pipeline struct {
	cfg  panel.Config
	fb   *panel.FrameBuffer
	src  source.Source
	log  zerolog.Logger
	opts Options

	shown    atomic.Uint64
	rejected atomic.Uint64
}

func New(cfg panel.Config, fb *panel.FrameBuffer, src source.Source, opts Options, log zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, fb: fb, src: src, log: log, opts: opts}
}

// Shown counts frames that reached the frame buffer.
func (p *Pipeline) Shown() uint64 { return p.shown.Load() }

// Rejected counts payloads dropped by decode or geometry errors.
func (p *Pipeline) Rejected() uint64 { return p.rejected.Load() }

// Run pulls payloads until the context ends or the source closes. A failed
// payload never disturbs the currently visible frame.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.src == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		payload, err := p.src.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("message source: %w", err)
		}
		if err := p.Process(payload); err != nil {
			p.rejected.Add(1)
			p.log.Warn().Err(err).Msg("payload rejected, keeping previous frame")
		}
	}
}

// Process runs one payload through the full pipeline.
func (p *Pipeline) Process(payload source.Payload) error {
	bm, err := imaging.Decode(payload.Data, payload.Format)
	if err != nil {
		return err
	}
	return p.Show(bm)
}

// Show adapts a decoded bitmap to the panel and makes it the next visible
// frame. Also used directly for the startup image.
func (p *Pipeline) Show(bm *imaging.Bitmap) error {
	scaled, err := imaging.Resample(bm, p.cfg.Cols(), p.cfg.Height)
	if err != nil {
		return err
	}
	q, err := imaging.Quantize(scaled, p.cfg.BitDepth, imaging.QuantizeOptions{Gamma: p.opts.Gamma})
	if err != nil {
		return err
	}
	set, err := panel.EncodePlanes(q, p.cfg)
	if err != nil {
		return err
	}
	p.fb.WriteBack(set)
	p.fb.RequestSwap()
	p.shown.Add(1)
	p.log.Info().
		Int("src_w", bm.W).Int("src_h", bm.H).
		Int("panel_w", p.cfg.Cols()).Int("panel_h", p.cfg.Height).
		Msg("frame published")
	return nil
}
