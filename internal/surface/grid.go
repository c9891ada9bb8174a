package surface

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DefaultStep is the sampling interval of the spatial grid.
const DefaultStep = 0.1

// Grid is a pair of same-shaped coordinate matrices in meshgrid layout:
// row i holds the i-th y sample, column j the j-th x sample. A Grid is
// shared read-only across frames; callers must not write to X or Y.
type Grid struct {
	X, Y *mat.Dense
	xs   []float64
	ys   []float64
	step float64
}

// Arange returns lo, lo+step, ... strictly below hi.
func Arange(lo, hi, step float64) []float64 {
	if step <= 0 || hi <= lo {
		return nil
	}
	n := int(math.Ceil((hi-lo)/step - 1e-9))
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// NewGrid samples the x and y bounds at step.
func NewGrid(xb, yb AxisBounds, step float64) (*Grid, error) {
	if err := xb.Validate("x"); err != nil {
		return nil, err
	}
	if err := yb.Validate("y"); err != nil {
		return nil, err
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, configErr("step", "must be positive and finite, got %g", step)
	}
	xs := Arange(xb.Low, xb.High, step)
	if len(xs) == 0 {
		return nil, configErr("x", "bounds %s span no samples at step %g", xb, step)
	}
	ys := Arange(yb.Low, yb.High, step)
	if len(ys) == 0 {
		return nil, configErr("y", "bounds %s span no samples at step %g", yb, step)
	}

	nx, ny := len(xs), len(ys)
	xd := make([]float64, nx*ny)
	yd := make([]float64, nx*ny)
	for i, y := range ys {
		copy(xd[i*nx:(i+1)*nx], xs)
		for j := 0; j < nx; j++ {
			yd[i*nx+j] = y
		}
	}
	return &Grid{
		X:    mat.NewDense(ny, nx, xd),
		Y:    mat.NewDense(ny, nx, yd),
		xs:   xs,
		ys:   ys,
		step: step,
	}, nil
}

// Dims returns (rows, cols) = (len(ys), len(xs)).
func (g *Grid) Dims() (int, int) { return g.X.Dims() }

// XValues returns a copy of the x samples.
func (g *Grid) XValues() []float64 { return append([]float64(nil), g.xs...) }

// YValues returns a copy of the y samples.
func (g *Grid) YValues() []float64 { return append([]float64(nil), g.ys...) }

func (g *Grid) Step() float64 { return g.step }
