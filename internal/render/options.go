package render

import (
	"fmt"

	"github.com/san-kum/hypersurf/internal/viz"
)

// Options controls how frames are drawn and encoded.
type Options struct {
	Width     int     `yaml:"width" json:"width"`
	Height    int     `yaml:"height" json:"height"`
	Delay     int     `yaml:"delay" json:"delay"` // GIF frame delay, 100ths of a second
	Theme     string  `yaml:"theme" json:"theme"`
	Elev      float64 `yaml:"elev" json:"elev"`
	Azim      float64 `yaml:"azim" json:"azim"`
	Zoom      float64 `yaml:"zoom" json:"zoom"`
	MeshLines int     `yaml:"mesh_lines" json:"mesh_lines"`
}

func DefaultOptions() Options {
	return Options{
		Width:     640,
		Height:    480,
		Delay:     2,
		Theme:     "ocean",
		Elev:      viz.DefaultElev,
		Azim:      viz.DefaultAzim,
		Zoom:      1.0,
		MeshLines: 40,
	}
}

func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrBufferSize, o.Width, o.Height)
	}
	if o.Delay < 0 {
		return fmt.Errorf("render: negative frame delay %d", o.Delay)
	}
	if o.Zoom <= 0 {
		return fmt.Errorf("render: zoom must be positive, got %g", o.Zoom)
	}
	return nil
}

// Camera returns a camera placed at the configured angles.
func (o Options) Camera() *viz.Camera {
	cam := viz.NewCamera()
	cam.Elev, cam.Azim = o.Elev, o.Azim
	if o.Zoom > 0 {
		cam.Zoom = o.Zoom
	}
	return cam
}
