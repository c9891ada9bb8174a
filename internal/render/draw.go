package render

import (
	"fmt"
	stddraw "image/draw"

	"github.com/san-kum/hypersurf/internal/frame"
	"github.com/san-kum/hypersurf/internal/surface"
	"github.com/san-kum/hypersurf/internal/viz"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DrawFrame paints sample into fb. The z axis uses the sample's bounds, so a
// dynamic window moves with the surface.
func DrawFrame(fb *FrameBuffer, s frame.Sample, cfg *surface.Config, opts Options) error {
	img, err := fb.Image()
	if err != nil {
		return err
	}
	if s.Z == nil {
		return fmt.Errorf("render: frame %d has no surface", s.Index)
	}

	theme := viz.GetTheme(opts.Theme)
	mesh := viz.NewSurfaceMesh(cfg.Grid.XValues(), cfg.Grid.YValues(), s.Z, cfg.XBounds, cfg.YBounds, s.ZBounds)

	sp := NewSurfacePlot(mesh, opts.Camera(), theme)
	if mesh.Rows*mesh.Cols > opts.MeshLines*opts.MeshLines && opts.MeshLines > 0 {
		sp.Edges.Width = 0
	}

	p := plot.New()
	p.HideAxes()
	p.BackgroundColor = viz.RGBA(theme.Background)
	p.Title.Text = fmt.Sprintf("%s   z %s", s, s.ZBounds)
	p.Title.TextStyle.Color = viz.RGBA(theme.Text)
	p.Add(sp)

	// vgimg draws into a copy of img
	vc := vgimg.NewWith(vgimg.UseImage(img))
	p.Draw(draw.New(vc))
	stddraw.Draw(img, img.Bounds(), vc.Image(), img.Bounds().Min, stddraw.Src)
	return nil
}
