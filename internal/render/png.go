package render

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/san-kum/hypersurf/internal/frame"
	"github.com/san-kum/hypersurf/internal/surface"
)

// PNGRenderer writes every frame as frame_NNNN.png into a directory.
type PNGRenderer struct {
	dir     string
	opts    Options
	written int
}

func NewPNGRenderer(dir string, opts Options) (*PNGRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: create png dir: %w", err)
	}
	return &PNGRenderer{dir: dir, opts: opts}, nil
}

func FramePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%04d.png", index))
}

func (r *PNGRenderer) RenderFrame(fb *FrameBuffer, s frame.Sample, cfg *surface.Config) error {
	if err := DrawFrame(fb, s, cfg, r.opts); err != nil {
		return err
	}
	img, err := fb.Image()
	if err != nil {
		return err
	}

	f, err := os.Create(FramePath(r.dir, s.Index))
	if err != nil {
		return fmt.Errorf("render: create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("render: encode png: %w", err)
	}
	r.written++
	return f.Close()
}

// Finalize reports ErrNoFrames when nothing was written.
func (r *PNGRenderer) Finalize() error {
	if r.written == 0 {
		return ErrNoFrames
	}
	return nil
}

func (r *PNGRenderer) Written() int { return r.written }
