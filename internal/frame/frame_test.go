package frame

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/hypersurf/internal/expr"
	"github.com/san-kum/hypersurf/internal/schedule"
	"github.com/san-kum/hypersurf/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newConfig(t *testing.T, fn string, vars surface.VariableSet, dynamic bool) *surface.Config {
	t.Helper()
	cfg, err := surface.NewConfig(surface.Spec{
		Variables: vars,
		XBounds:   surface.AxisBounds{Low: -1, High: 1},
		YBounds:   surface.AxisBounds{Low: -1, High: 1},
		ZBounds:   surface.AxisBounds{Low: -10, High: 10},
		DynamicZ:  dynamic,
		Step:      0.5,
		Function:  fn,
	})
	require.NoError(t, err)
	return cfg
}

func TestPointPrimitive(t *testing.T) {
	cfg := newConfig(t, "a*sin(x)+y", surface.VariableSet{"x", "y", "a"}, false)
	v, err := NewEvaluator().Point(cfg, 0, 3, schedule.Assignment{"a": 2})
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestConstantFunctionDynamicBounds(t *testing.T) {
	for _, c := range []float64{3, -3, 0.25} {
		cfg := newConfig(t, "c", surface.VariableSet{"x", "y", "c"}, true)
		s, err := NewEvaluator().Evaluate(cfg, schedule.Assignment{"c": c})
		require.NoError(t, err)
		assert.Equal(t, surface.AxisBounds{Low: -2 * math.Abs(c), High: 2 * math.Abs(c)}, s.ZBounds)

		r, cols := cfg.Grid.Dims()
		zr, zc := s.Z.Dims()
		assert.Equal(t, r, zr)
		assert.Equal(t, cols, zc)
		assert.Equal(t, c, s.Z.At(r-1, cols-1))
	}
}

func TestZeroReferenceGivesDegenerateBounds(t *testing.T) {
	cfg := newConfig(t, "x*y*a", surface.VariableSet{"x", "y", "a"}, true)
	s, err := NewEvaluator().Evaluate(cfg, schedule.Assignment{"a": 0})
	require.NoError(t, err)
	assert.Equal(t, surface.AxisBounds{}, s.ZBounds)
}

func TestDynamicBoundsFromLowerCorner(t *testing.T) {
	// f(-1, -1) = -2 + a
	cfg := newConfig(t, "x + y + a", surface.VariableSet{"x", "y", "a"}, true)
	s, err := NewEvaluator().Evaluate(cfg, schedule.Assignment{"a": 0.5})
	require.NoError(t, err)
	assert.InDelta(t, -3.0, s.ZBounds.Low, 1e-12)
	assert.InDelta(t, 3.0, s.ZBounds.High, 1e-12)
}

func TestFixedBounds(t *testing.T) {
	cfg := newConfig(t, "x + y", surface.VariableSet{"x", "y"}, false)
	s, err := NewEvaluator().Evaluate(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.ZBounds, s.ZBounds)
}

func TestSurfaceMatchesGrid(t *testing.T) {
	cfg := newConfig(t, "x + y", surface.VariableSet{"x", "y"}, false)
	s, err := NewEvaluator().Evaluate(cfg, nil)
	require.NoError(t, err)

	var want mat.Dense
	want.Add(cfg.Grid.X, cfg.Grid.Y)
	assert.True(t, mat.EqualApprox(&want, s.Z, 1e-12))
}

func TestDeclaredSpatialNames(t *testing.T) {
	cfg := newConfig(t, "u - v", surface.VariableSet{"u", "v"}, false)
	s, err := NewEvaluator().Evaluate(cfg, nil)
	require.NoError(t, err)

	var want mat.Dense
	want.Sub(cfg.Grid.X, cfg.Grid.Y)
	assert.True(t, mat.EqualApprox(&want, s.Z, 1e-12))
}

func TestLiteralAxesWithDeclaredNames(t *testing.T) {
	cfg := newConfig(t, "x + y", surface.VariableSet{"u", "v"}, true)
	s, err := NewEvaluator().Evaluate(cfg, nil)
	require.NoError(t, err)

	var want mat.Dense
	want.Add(cfg.Grid.X, cfg.Grid.Y)
	assert.True(t, mat.Equal(&want, s.Z))
	assert.Equal(t, surface.AxisBounds{Low: -4, High: 4}, s.ZBounds)

	v, err := NewEvaluator().Point(cfg, 2, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestUnitGridSumEveryFrame(t *testing.T) {
	cfg, err := surface.NewConfig(surface.Spec{
		Variables: surface.VariableSet{"x", "y", "a"},
		XBounds:   surface.AxisBounds{Low: 0, High: 1},
		YBounds:   surface.AxisBounds{Low: 0, High: 1},
		ZBounds:   surface.AxisBounds{Low: -10, High: 10},
		Step:      0.1,
		Function:  "x + y",
	})
	require.NoError(t, err)
	rows, cols := cfg.Grid.Dims()
	require.Equal(t, 10, rows)
	require.Equal(t, 10, cols)

	var want mat.Dense
	want.Add(cfg.Grid.X, cfg.Grid.Y)

	sweep := schedule.Sweep{Length: 100, Scale: 10}
	ev := NewEvaluator()
	for _, n := range []int{0, 57, 100, 199} {
		s, err := ev.Evaluate(cfg, sweep.At(n, cfg.Variables.Higher()))
		require.NoError(t, err, "frame %d", n)
		assert.True(t, mat.Equal(&want, s.Z), "frame %d", n)
		assert.Equal(t, cfg.ZBounds, s.ZBounds, "frame %d", n)
	}
}

func TestDynamicBoundsOverflow(t *testing.T) {
	cfg := newConfig(t, "1e308", surface.VariableSet{"x", "y"}, true)
	s, err := NewEvaluator().Evaluate(cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, expr.ErrArithmeticDomain)
	var ee *expr.EvalError
	assert.True(t, errors.As(err, &ee))
	assert.Nil(t, s.Z)

	b, err := DynamicBounds(-2.5)
	require.NoError(t, err)
	assert.Equal(t, surface.AxisBounds{Low: -5, High: 5}, b)
	assert.NoError(t, b.Validate("z"))
}

func TestIdentitySurfaceDoesNotAliasGrid(t *testing.T) {
	cfg := newConfig(t, "x", surface.VariableSet{"x", "y"}, false)
	s, err := NewEvaluator().Evaluate(cfg, nil)
	require.NoError(t, err)
	assert.NotSame(t, cfg.Grid.X, s.Z)

	s.Z.Set(0, 0, 99)
	assert.NotEqual(t, 99.0, cfg.Grid.X.At(0, 0))
}

func TestDomainErrorHasNoPartialResult(t *testing.T) {
	// the x samples include 0
	cfg := newConfig(t, "1/x", surface.VariableSet{"x", "y"}, false)
	s, err := NewEvaluator().Evaluate(cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, expr.ErrArithmeticDomain))
	assert.Nil(t, s.Z)
}

func TestDynamicBoundsFailure(t *testing.T) {
	cfg := newConfig(t, "log(x + 1)", surface.VariableSet{"x", "y"}, true)
	_, err := NewEvaluator().Evaluate(cfg, nil)
	assert.ErrorIs(t, err, expr.ErrArithmeticDomain)
}

func TestLookupFailures(t *testing.T) {
	cfg := newConfig(t, "x + q", surface.VariableSet{"x", "y"}, false)
	_, err := NewEvaluator().Evaluate(cfg, nil)
	assert.ErrorIs(t, err, expr.ErrUndefinedVariable)

	cfg = newConfig(t, "foo(x)", surface.VariableSet{"x", "y"}, false)
	_, err = NewEvaluator().Evaluate(cfg, nil)
	assert.ErrorIs(t, err, expr.ErrUnknownFunction)
}

func TestEvaluateIsPure(t *testing.T) {
	cfg := newConfig(t, "a*sin(x)*cos(y)", surface.VariableSet{"x", "y", "a"}, true)
	ev := NewEvaluator()
	a := schedule.Assignment{"a": 1.7}

	s1, err := ev.Evaluate(cfg, a)
	require.NoError(t, err)
	s2, err := ev.Evaluate(cfg, a)
	require.NoError(t, err)

	assert.Equal(t, s1.ZBounds, s2.ZBounds)
	assert.Equal(t, s1.Z.RawMatrix().Data, s2.Z.RawMatrix().Data)
	assert.Equal(t, 1.7, a["a"])
}

func TestSampleString(t *testing.T) {
	s := Sample{Index: 4, Assignment: schedule.Assignment{"a": 0.4}}
	assert.Equal(t, "frame 4  a = 0.4", s.String())
	p, ok := s.Param()
	assert.True(t, ok)
	assert.Equal(t, 0.4, p)

	_, ok = Sample{}.Param()
	assert.False(t, ok)
}
