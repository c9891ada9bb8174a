// Package frame evaluates one animation frame: the surface sampled over the
// configured grid and the z bounds it should be drawn in.
package frame

import (
	"fmt"
	"math"

	"github.com/san-kum/hypersurf/internal/expr"
	"github.com/san-kum/hypersurf/internal/schedule"
	"github.com/san-kum/hypersurf/internal/surface"
	"gonum.org/v1/gonum/mat"
)

// Sample is one evaluated frame. Z has the grid's shape.
type Sample struct {
	Index      int
	Assignment schedule.Assignment
	Z          *mat.Dense
	ZBounds    surface.AxisBounds
}

// Param returns the sweep value shared by the higher parameters, and false
// when the function has none.
func (s Sample) Param() (float64, bool) {
	for _, v := range s.Assignment {
		return v, true
	}
	return 0, false
}

func (s Sample) String() string {
	if len(s.Assignment) == 0 {
		return fmt.Sprintf("frame %d", s.Index)
	}
	return fmt.Sprintf("frame %d  %s", s.Index, s.Assignment)
}

// DynamicBounds is the z window used when the configuration asks for
// dynamic bounds: symmetric around zero at twice |v|. A |v| too large to
// double is an arithmetic domain error.
func DynamicBounds(v float64) (surface.AxisBounds, error) {
	b := surface.Symmetric(v)
	if math.IsInf(b.High, 0) || math.IsNaN(b.High) {
		return surface.AxisBounds{}, &expr.EvalError{
			Op:     "dynamic z bounds",
			Index:  -1,
			Reason: fmt.Sprintf("2|%g| is not finite", v),
			Err:    expr.ErrArithmeticDomain,
		}
	}
	return b, nil
}

// Evaluator is stateless; the zero value is ready to use.
type Evaluator struct{}

func NewEvaluator() *Evaluator { return &Evaluator{} }

// Evaluate computes the z bounds and the sampled surface for assignment a.
// On error no sample is returned.
func (e *Evaluator) Evaluate(cfg *surface.Config, a schedule.Assignment) (Sample, error) {
	zb := cfg.ZBounds
	if cfg.DynamicZ {
		v, err := e.Point(cfg, cfg.XBounds.Low, cfg.YBounds.Low, a)
		if err != nil {
			return Sample{}, fmt.Errorf("dynamic z bounds: %w", err)
		}
		if zb, err = DynamicBounds(v); err != nil {
			return Sample{}, err
		}
	}

	env := bind(cfg, a, expr.Grid(cfg.Grid.X), expr.Grid(cfg.Grid.Y))
	v, err := cfg.Program().Eval(env)
	if err != nil {
		return Sample{}, err
	}
	z, err := v.Broadcast(cfg.Grid.Dims())
	if err != nil {
		return Sample{}, err
	}
	// a result aliasing an input grid (f = x) must not share storage with it
	if z == cfg.Grid.X || z == cfg.Grid.Y {
		z = mat.DenseCopyOf(z)
	}

	return Sample{Assignment: a, Z: z, ZBounds: zb}, nil
}

// Point evaluates the function at a single (x, y).
func (e *Evaluator) Point(cfg *surface.Config, x, y float64, a schedule.Assignment) (float64, error) {
	env := bind(cfg, a, expr.Scalar(x), expr.Scalar(y))
	v, err := cfg.Program().Eval(env)
	if err != nil {
		return 0, err
	}
	return v.Float(), nil
}

// bind builds the evaluation environment. x and y always name the spatial
// axes; the declared spatial names are bound as well and win over a higher
// parameter of the same name.
func bind(cfg *surface.Config, a schedule.Assignment, xv, yv expr.Value) expr.Env {
	env := make(expr.Env, len(a)+4)
	env["x"], env["y"] = xv, yv
	for k, v := range a {
		env[k] = expr.Scalar(v)
	}
	xn, yn := cfg.Variables.Spatial()
	env[xn], env[yn] = xv, yv
	return env
}
