package render

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"os"

	"github.com/san-kum/hypersurf/internal/frame"
	"github.com/san-kum/hypersurf/internal/surface"
)

// GIFEncoder collects frames as paletted images and writes one looping GIF
// when finalized.
type GIFEncoder struct {
	path      string
	opts      Options
	frames    []*image.Paletted
	delays    []int
	finalized bool
}

// NewGIFEncoder returns an encoder that writes to path on Finalize.
func NewGIFEncoder(path string, opts Options) *GIFEncoder {
	return &GIFEncoder{path: path, opts: opts}
}

func (e *GIFEncoder) Path() string { return e.path }

// Len is the number of frames collected so far.
func (e *GIFEncoder) Len() int { return len(e.frames) }

// RenderFrame draws s into fb and keeps a paletted copy.
func (e *GIFEncoder) RenderFrame(fb *FrameBuffer, s frame.Sample, cfg *surface.Config) error {
	if e.finalized {
		return ErrFinalized
	}
	if err := DrawFrame(fb, s, cfg, e.opts); err != nil {
		return err
	}
	img, err := fb.Image()
	if err != nil {
		return err
	}
	e.Add(img)
	return nil
}

// Add appends an already drawn image.
func (e *GIFEncoder) Add(img image.Image) {
	b := img.Bounds()
	p := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(p, p.Bounds(), img, b.Min)
	e.frames = append(e.frames, p)
	e.delays = append(e.delays, e.opts.Delay)
}

// Encode writes the collected frames to w.
func (e *GIFEncoder) Encode(w io.Writer) error {
	if len(e.frames) == 0 {
		return ErrNoFrames
	}
	anim := &gif.GIF{Image: e.frames, Delay: e.delays, LoopCount: 0}
	return gif.EncodeAll(w, anim)
}

// Finalize writes the GIF file once. With no frames nothing is written and
// ErrNoFrames is returned.
func (e *GIFEncoder) Finalize() error {
	if e.finalized {
		return ErrFinalized
	}
	e.finalized = true
	if len(e.frames) == 0 {
		return ErrNoFrames
	}

	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("render: create gif: %w", err)
	}
	if err := e.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("render: encode gif: %w", err)
	}
	return f.Close()
}
