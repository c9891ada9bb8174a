package viz

import (
	"math"
	"sort"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Camera looks at the origin from +Z in view space. World points use the
// plotting convention: X and Y span the floor, Z points up.
type Camera struct {
	Distance float64
	Near     float64
	Elev     float64 // tilt above the floor, radians
	Azim     float64 // spin about the vertical axis, radians
	Roll     float64
	Zoom     float64
}

const (
	DefaultElev = 0.5
	DefaultAzim = -0.6
)

func NewCamera() *Camera {
	return &Camera{Distance: 50, Near: 0.1, Elev: DefaultElev, Azim: DefaultAzim, Zoom: 1.0}
}

func (c *Camera) Tilt(a float64)   { c.Elev += a }
func (c *Camera) Spin(a float64)   { c.Azim += a }
func (c *Camera) RollBy(a float64) { c.Roll += a }
func (c *Camera) ZoomIn()          { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()         { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// View maps a world point into view space: spin about Z, lay the floor flat,
// tilt by Elev, then roll.
func (c *Camera) View(p Vec3) Vec3 {
	ca, sa := math.Cos(c.Azim), math.Sin(c.Azim)
	p.X, p.Y = p.X*ca-p.Y*sa, p.X*sa+p.Y*ca

	// floor depth becomes view depth, up becomes screen up
	p = Vec3{p.X, p.Z, -p.Y}

	ce, se := math.Cos(c.Elev), math.Sin(c.Elev)
	p.Y, p.Z = p.Y*ce-p.Z*se, p.Y*se+p.Z*ce

	cr, sr := math.Cos(c.Roll), math.Sin(c.Roll)
	p.X, p.Y = p.X*cr-p.Y*sr, p.X*sr+p.Y*cr
	return p
}

// ProjectUnit returns perspective-corrected coordinates around the origin
// (about [-1.7, 1.7] for the unit cube at zoom 1) and the view depth. Larger
// depth is closer to the viewer.
func (c *Camera) ProjectUnit(p Vec3) (x, y, depth float64, ok bool) {
	v := c.View(p).Scale(c.Zoom)
	if v.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	s := c.Distance / (c.Distance - v.Z)
	return v.X * s, v.Y * s, v.Z, true
}

// Project converts world coordinates to screen pixels with y growing down.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	ux, uy, depth, ok := c.ProjectUnit(p)
	if !ok {
		return 0, 0, 0, false
	}
	minDim := float64(min(sw, sh))
	pScale := minDim / 3.5
	sx := int(ux*pScale) + sw/2
	sy := int(-uy*pScale) + sh/2
	return sx, sy, depth, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe          { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e Vec3)  { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) Clear()             { w.Edges = w.Edges[:0] }
func (w *Wireframe) Merge(o *Wireframe) { w.Edges = append(w.Edges, o.Edges...) }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.SubWidth(), c.SubHeight()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// BoxWireframe is the edge set of the axis box [-1, 1]^3.
func BoxWireframe() *Wireframe {
	w := NewWireframe()
	v := []Vec3{{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1}, {-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}}
	ei := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	for _, e := range ei {
		w.AddEdge(v[e[0]], v[e[1]])
	}
	return w
}
