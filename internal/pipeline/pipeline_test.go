package pipeline_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-matrixgram/internal/imaging"
	"github.com/coreman2200/funtimes-matrixgram/internal/panel"
	"github.com/coreman2200/funtimes-matrixgram/internal/pipeline"
	"github.com/coreman2200/funtimes-matrixgram/internal/source"
)

var testCfg = panel.Config{Width: 64, Height: 32, ChainLength: 1, BitDepth: 4, RefreshHz: 60}

func jpegPayload(t *testing.T, c color.RGBA) source.Payload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return source.Payload{Data: buf.Bytes(), Format: imaging.FormatJPEG}
}

func TestProcessPublishesFrame(t *testing.T) {
	fb := panel.NewFrameBuffer()
	p := pipeline.New(testCfg, fb, nil, pipeline.Options{}, zerolog.Nop())

	require.NoError(t, p.Process(jpegPayload(t, color.RGBA{R: 250, A: 255})))
	assert.EqualValues(t, 1, p.Shown())

	require.True(t, fb.SwapIfPending(), "a processed payload must request a swap")
	front := fb.Front()
	require.NotNil(t, front)
	assert.Equal(t, testCfg.BitDepth, front.Depth)
	r, _, _ := front.At(32, 16)
	assert.Greater(t, int(r), 10, "red content should reach the frame")
}

func TestCorruptPayloadLeavesFrameBufferUntouched(t *testing.T) {
	fb := panel.NewFrameBuffer()
	p := pipeline.New(testCfg, fb, nil, pipeline.Options{}, zerolog.Nop())

	// Put a good frame up first.
	require.NoError(t, p.Process(jpegPayload(t, color.RGBA{G: 200, A: 255})))
	require.True(t, fb.SwapIfPending())
	before := fb.Front()

	err := p.Process(source.Payload{Data: []byte("not an image"), Format: imaging.FormatWebP})
	var de *imaging.DecodeError
	require.ErrorAs(t, err, &de)
	assert.EqualValues(t, 1, p.Shown())

	assert.False(t, fb.SwapIfPending(), "rejected payload must not request a swap")
	assert.Same(t, before, fb.Front(), "previous frame stays visible")
}

// queueSource yields canned payloads then blocks until the context ends.
type queueSource struct {
	payloads []source.Payload
}

func (q *queueSource) Next(ctx context.Context) (source.Payload, error) {
	if len(q.payloads) > 0 {
		p := q.payloads[0]
		q.payloads = q.payloads[1:]
		return p, nil
	}
	<-ctx.Done()
	return source.Payload{}, ctx.Err()
}

func TestRunDrainsSourceAndStopsOnCancel(t *testing.T) {
	fb := panel.NewFrameBuffer()
	src := &queueSource{payloads: []source.Payload{
		jpegPayload(t, color.RGBA{B: 180, A: 255}),
		{Data: []byte("junk"), Format: imaging.FormatJPEG},
		jpegPayload(t, color.RGBA{R: 90, G: 90, A: 255}),
	}}
	p := pipeline.New(testCfg, fb, src, pipeline.Options{Gamma: true}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return p.Shown() == 2 && p.Rejected() == 1 },
		time.Second, 5*time.Millisecond)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}
