package expr

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Value is either a scalar or a grid of samples.
type Value struct {
	scalar float64
	grid   *mat.Dense
}

// Scalar wraps a single number.
func Scalar(v float64) Value { return Value{scalar: v} }

// Grid wraps a matrix of samples. The matrix is read, never written.
func Grid(m *mat.Dense) Value { return Value{grid: m} }

func (v Value) IsGrid() bool { return v.grid != nil }

// Float returns the scalar payload; it is zero for grids.
func (v Value) Float() float64 { return v.scalar }

// Dense returns the grid payload, or nil for scalars.
func (v Value) Dense() *mat.Dense { return v.grid }

// Dims reports the grid shape; scalars are 1x1.
func (v Value) Dims() (r, c int) {
	if v.grid == nil {
		return 1, 1
	}
	return v.grid.Dims()
}

// Broadcast returns v as an r x c grid, copying scalars into every cell.
func (v Value) Broadcast(r, c int) (*mat.Dense, error) {
	if v.grid != nil {
		gr, gc := v.grid.Dims()
		if gr != r || gc != c {
			return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrShape, gr, gc, r, c)
		}
		return v.grid, nil
	}
	data := make([]float64, r*c)
	for i := range data {
		data[i] = v.scalar
	}
	return mat.NewDense(r, c, data), nil
}

func (v Value) String() string {
	if v.grid == nil {
		return fmt.Sprintf("%g", v.scalar)
	}
	r, c := v.grid.Dims()
	return fmt.Sprintf("grid(%dx%d)", r, c)
}

// kernel1 and kernel2 compute one element; a non-nil error is a domain fault.
type (
	kernel1 func(x float64) (float64, error)
	kernel2 func(x, y float64) (float64, error)
)

// elemFault records which element of a grid failed.
type elemFault struct {
	index int
	err   error
}

func (e *elemFault) Error() string { return e.err.Error() }

func apply1(v Value, fn kernel1) (Value, error) {
	if v.grid == nil {
		r, err := fn(v.scalar)
		if err != nil {
			return Value{}, &elemFault{index: -1, err: err}
		}
		return Scalar(r), nil
	}
	rows, cols := v.grid.Dims()
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			r, err := fn(v.grid.At(i, j))
			if err != nil {
				return Value{}, &elemFault{index: i*cols + j, err: err}
			}
			out[i*cols+j] = r
		}
	}
	return Grid(mat.NewDense(rows, cols, out)), nil
}

func apply2(a, b Value, fn kernel2) (Value, error) {
	if a.grid == nil && b.grid == nil {
		r, err := fn(a.scalar, b.scalar)
		if err != nil {
			return Value{}, &elemFault{index: -1, err: err}
		}
		return Scalar(r), nil
	}
	rows, cols := a.Dims()
	if a.grid == nil {
		rows, cols = b.Dims()
	}
	if a.grid != nil && b.grid != nil {
		br, bc := b.Dims()
		if br != rows || bc != cols {
			return Value{}, fmt.Errorf("%w: %dx%d vs %dx%d", ErrShape, rows, cols, br, bc)
		}
	}
	at := func(v Value, i, j int) float64 {
		if v.grid == nil {
			return v.scalar
		}
		return v.grid.At(i, j)
	}
	out := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			r, err := fn(at(a, i, j), at(b, i, j))
			if err != nil {
				return Value{}, &elemFault{index: i*cols + j, err: err}
			}
			out[i*cols+j] = r
		}
	}
	return Grid(mat.NewDense(rows, cols, out)), nil
}
