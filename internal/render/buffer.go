package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
)

var (
	ErrClosed     = errors.New("render: frame buffer is closed")
	ErrBufferSize = errors.New("render: frame buffer size must be positive")
	ErrNoFrames   = errors.New("render: no frames to encode")
	ErrFinalized  = errors.New("render: renderer already finalized")
)

// FrameBuffer is the single image a run paints every frame into. It is
// acquired once per run and released with Close.
type FrameBuffer struct {
	img    *image.RGBA
	pool   *BufferPool
	closed bool
}

// NewFrameBuffer allocates a w x h buffer outside any pool.
func NewFrameBuffer(w, h int) (*FrameBuffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBufferSize, w, h)
	}
	return &FrameBuffer{img: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
}

// Image returns the backing image. It fails once the buffer is closed.
func (fb *FrameBuffer) Image() (*image.RGBA, error) {
	if fb.closed {
		return nil, ErrClosed
	}
	return fb.img, nil
}

func (fb *FrameBuffer) Bounds() image.Rectangle { return fb.img.Bounds() }

// Reset fills the buffer with bg.
func (fb *FrameBuffer) Reset(bg color.Color) error {
	if fb.closed {
		return ErrClosed
	}
	draw.Draw(fb.img, fb.img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	return nil
}

// Close releases the buffer, returning it to its pool if it has one. Closing
// twice is a no-op.
func (fb *FrameBuffer) Close() error {
	if fb.closed {
		return nil
	}
	fb.closed = true
	if fb.pool != nil {
		fb.pool.put(fb.img)
	}
	return nil
}

// BufferPool recycles frame images of one size between runs, so repeated
// previews and renders do not reallocate.
type BufferPool struct {
	pool   sync.Pool
	width  int
	height int
}

func NewBufferPool(w, h int) (*BufferPool, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBufferSize, w, h)
	}
	return &BufferPool{
		width:  w,
		height: h,
		pool: sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(image.Rect(0, 0, w, h))
			},
		},
	}, nil
}

// Get acquires a buffer. The caller must Close it.
func (p *BufferPool) Get() *FrameBuffer {
	return &FrameBuffer{img: p.pool.Get().(*image.RGBA), pool: p}
}

func (p *BufferPool) Size() (w, h int) { return p.width, p.height }

func (p *BufferPool) put(img *image.RGBA) {
	if b := img.Bounds(); b.Dx() == p.width && b.Dy() == p.height {
		p.pool.Put(img)
	}
}
