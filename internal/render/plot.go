package render

import (
	"image/color"
	"sort"

	"github.com/san-kum/hypersurf/internal/viz"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// projected corners of the unit cube stay inside this radius at zoom 1
const extent = 1.8

var light = viz.Vec3{X: 0.3, Y: -0.5, Z: 0.8}.Normalize()

// SurfacePlot is a plot.Plotter that paints a surface mesh as shaded quads,
// farthest first, inside the axis box.
type SurfacePlot struct {
	Mesh   *viz.SurfaceMesh
	Camera *viz.Camera
	Theme  viz.Theme

	// Edges outlines every quad when its width is non-zero.
	Edges draw.LineStyle
	Box   draw.LineStyle
}

func NewSurfacePlot(mesh *viz.SurfaceMesh, cam *viz.Camera, theme viz.Theme) *SurfacePlot {
	return &SurfacePlot{
		Mesh:   mesh,
		Camera: cam,
		Theme:  theme,
		Edges:  draw.LineStyle{Color: viz.RGBA(theme.Background), Width: vg.Points(0.3)},
		Box:    draw.LineStyle{Color: viz.RGBA(theme.Muted), Width: vg.Points(0.8)},
	}
}

type quad struct {
	pts   [4]viz.Vec3
	depth float64
	fill  color.RGBA
}

// DataRange fixes both axes to the projection extent.
func (sp *SurfacePlot) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -extent, extent, -extent, extent
}

func (sp *SurfacePlot) Plot(c draw.Canvas, _ *plot.Plot) {
	center := c.Center()
	size := min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y)
	scale := size / (2 * extent)
	toPoint := func(p viz.Vec3) (vg.Point, float64, bool) {
		x, y, d, ok := sp.Camera.ProjectUnit(p)
		return vg.Point{X: center.X + vg.Length(x)*scale, Y: center.Y + vg.Length(y)*scale}, d, ok
	}
	line := func(sty draw.LineStyle, a, b viz.Vec3) {
		pa, _, okA := toPoint(a)
		pb, _, okB := toPoint(b)
		if okA && okB {
			c.StrokeLines(sty, c.ClipLinesXY([]vg.Point{pa, pb})...)
		}
	}

	box := viz.BoxWireframe()
	for _, e := range box.Edges {
		line(sp.Box, e.Start, e.End)
	}

	m := sp.Mesh
	if m.Rows < 2 || m.Cols < 2 {
		// a single row or column has no area to fill
		for _, e := range m.Wireframe(0).Edges {
			line(draw.LineStyle{Color: sp.Theme.Colormap(1), Width: vg.Points(1)}, e.Start, e.End)
		}
		return
	}

	quads := make([]quad, 0, (m.Rows-1)*(m.Cols-1))
	for i := 0; i+1 < m.Rows; i++ {
		for j := 0; j+1 < m.Cols; j++ {
			q := quad{pts: [4]viz.Vec3{m.At(i, j), m.At(i, j+1), m.At(i+1, j+1), m.At(i+1, j)}}
			h := (m.Height(i, j) + m.Height(i, j+1) + m.Height(i+1, j+1) + m.Height(i+1, j)) / 4
			q.fill = shade(sp.Theme.Colormap(h), q.pts)
			for _, p := range q.pts {
				q.depth += sp.Camera.View(p).Z / 4
			}
			quads = append(quads, q)
		}
	}
	sort.Slice(quads, func(a, b int) bool { return quads[a].depth < quads[b].depth })

	for _, q := range quads {
		poly := make([]vg.Point, 0, 4)
		visible := true
		for _, p := range q.pts {
			pt, _, ok := toPoint(p)
			visible = visible && ok
			poly = append(poly, pt)
		}
		if !visible {
			continue
		}
		c.FillPolygon(q.fill, c.ClipPolygonXY(poly))
		if sp.Edges.Width > 0 {
			c.StrokeLines(sp.Edges, c.ClipLinesXY(append(poly, poly[0]))...)
		}
	}
}

// shade darkens c by how far the quad faces away from the light.
func shade(c color.RGBA, pts [4]viz.Vec3) color.RGBA {
	n := pts[2].Sub(pts[0]).Cross(pts[3].Sub(pts[1])).Normalize()
	d := n.Dot(light)
	if d < 0 {
		d = -d
	}
	k := 0.55 + 0.45*d
	return color.RGBA{
		R: uint8(float64(c.R) * k),
		G: uint8(float64(c.G) * k),
		B: uint8(float64(c.B) * k),
		A: c.A,
	}
}
