package viz

import (
	"github.com/san-kum/hypersurf/internal/surface"
	"gonum.org/v1/gonum/mat"
)

// SurfaceMesh is a sampled surface mapped into the cube [-1, 1]^3. Heights
// outside the z bounds are clamped to the box.
type SurfaceMesh struct {
	Rows, Cols int
	Points     []Vec3 // row-major, Rows*Cols
	Heights    []float64
	Clipped    int
}

// NewSurfaceMesh normalizes z (shape len(ys) x len(xs)) against the bounds.
// A zero-width range is treated as a unit range centered on its value.
func NewSurfaceMesh(xs, ys []float64, z *mat.Dense, xb, yb, zb surface.AxisBounds) *SurfaceMesh {
	rows, cols := z.Dims()
	m := &SurfaceMesh{
		Rows:    rows,
		Cols:    cols,
		Points:  make([]Vec3, 0, rows*cols),
		Heights: make([]float64, 0, rows*cols),
	}
	nx, ny, nz := normalizer(xb), normalizer(yb), normalizer(zb)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			h := nz(z.At(i, j))
			if h < -1 || h > 1 {
				m.Clipped++
				h = max(-1, min(1, h))
			}
			m.Points = append(m.Points, Vec3{nx(xs[j]), ny(ys[i]), h})
			m.Heights = append(m.Heights, (h+1)/2)
		}
	}
	return m
}

func normalizer(b surface.AxisBounds) func(float64) float64 {
	lo, span := b.Low, b.Span()
	if span == 0 {
		lo, span = b.Low-0.5, 1
	}
	return func(v float64) float64 { return 2*(v-lo)/span - 1 }
}

// At returns the point in row i, column j.
func (m *SurfaceMesh) At(i, j int) Vec3 { return m.Points[i*m.Cols+j] }

// Height returns the normalized height in [0, 1] of row i, column j.
func (m *SurfaceMesh) Height(i, j int) float64 { return m.Heights[i*m.Cols+j] }

// Wireframe connects neighbouring samples along rows and columns, skipping
// lines so that at most maxLines are drawn per direction.
func (m *SurfaceMesh) Wireframe(maxLines int) *Wireframe {
	w := NewWireframe()
	rs, cs := stride(m.Rows, maxLines), stride(m.Cols, maxLines)
	for i := 0; i < m.Rows; i += rs {
		for j := 0; j+cs < m.Cols; j += cs {
			w.AddEdge(m.At(i, j), m.At(i, j+cs))
		}
	}
	for j := 0; j < m.Cols; j += cs {
		for i := 0; i+rs < m.Rows; i += rs {
			w.AddEdge(m.At(i, j), m.At(i+rs, j))
		}
	}
	return w
}

func stride(n, limit int) int {
	if limit <= 0 || n <= limit {
		return 1
	}
	return (n + limit - 1) / limit
}
