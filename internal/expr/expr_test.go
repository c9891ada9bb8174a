package expr

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func evalScalar(t *testing.T, src string, vars map[string]float64) float64 {
	t.Helper()
	p, err := Compile(src)
	require.NoError(t, err)
	v, err := p.EvalFloat(vars)
	require.NoError(t, err)
	return v
}

func TestScalarArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		vars map[string]float64
		want float64
	}{
		{"a*sin(x)+y", map[string]float64{"a": 2, "x": 0, "y": 3}, 3},
		{"1 + 2 * 3", nil, 7},
		{"(1 + 2) * 3", nil, 9},
		{"-x^2", map[string]float64{"x": 3}, -9},
		{"-2**2", nil, -4},
		{"2^3^2", nil, 512},
		{"2**-1", nil, 0.5},
		{"7 % -3", nil, -2},
		{"-7 % 3", nil, 2},
		{"fmod(-7, 3)", nil, -1},
		{"10 - 4 - 3", nil, 3},
		{"12 / 4 / 3", nil, 1},
		{".5 + 5. + 1e1", nil, 15.5},
		{"+x", map[string]float64{"x": 4}, 4},
		{"atan2(1, 1) * 4", nil, math.Pi},
		{"hypot(3, 4)", nil, 5},
		{"max(a, b) - min(a, b)", map[string]float64{"a": 2, "b": 7}, 5},
		{"sqrt(16) + abs(-2) + sign(-3)", nil, 5},
		{"round(2.5) + round(3.5)", nil, 6},
		{"pi", nil, math.Pi},
		{"tau / 2", nil, math.Pi},
		{"log(e)", nil, 1},
		{"exp(0) + cos(0)", nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.InDelta(t, tt.want, evalScalar(t, tt.src, tt.vars), 1e-12)
		})
	}
}

func TestBindingsShadowConstants(t *testing.T) {
	assert.Equal(t, 1.0, evalScalar(t, "e", map[string]float64{"e": 1}))
}

func TestGridEvaluation(t *testing.T) {
	x := mat.NewDense(2, 3, []float64{0, 1, 2, 0, 1, 2})
	y := mat.NewDense(2, 3, []float64{0, 0, 0, 5, 5, 5})

	p, err := Compile("x + y*a")
	require.NoError(t, err)

	v, err := p.Eval(Env{"x": Grid(x), "y": Grid(y), "a": Scalar(2)})
	require.NoError(t, err)
	require.True(t, v.IsGrid())

	want := mat.NewDense(2, 3, []float64{0, 1, 2, 10, 11, 12})
	assert.True(t, mat.Equal(want, v.Dense()), "got %v", mat.Formatted(v.Dense()))

	// inputs are untouched
	assert.Equal(t, 2.0, x.At(0, 2))
}

func TestGridShapeMismatch(t *testing.T) {
	p := MustCompile("x + y")
	_, err := p.Eval(Env{
		"x": Grid(mat.NewDense(2, 2, nil)),
		"y": Grid(mat.NewDense(3, 2, nil)),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestDivisionByZeroOnGrid(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{0.5, 1, 0, 2})
	p := MustCompile("1/x")

	v, err := p.Eval(Env{"x": Grid(x)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArithmeticDomain))
	assert.Nil(t, v.Dense(), "no partial grid on failure")

	var ee *EvalError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "/", ee.Op)
	assert.Equal(t, 2, ee.Index)
	assert.Equal(t, 2, ee.Pos)
}

func TestDomainErrors(t *testing.T) {
	tests := []string{
		"1/0",
		"5 % 0",
		"log(0)",
		"log(-1)",
		"log10(-2)",
		"sqrt(-1)",
		"arcsin(2)",
		"acos(-1.5)",
		"arccosh(0.5)",
		"atanh(1)",
		"0^-1",
		"(-8)^(1/3)",
		"exp(1000)",
		"10^400",
		"fmod(1, 0)",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := MustCompile(src).EvalFloat(nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrArithmeticDomain)
		})
	}
}

func TestLookupErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
		name string
	}{
		{"x + q", ErrUndefinedVariable, "q"},
		{"sin", ErrUndefinedVariable, "sin"},
		{"foo(x)", ErrUnknownFunction, "foo"},
		{"eval(x)", ErrUnknownFunction, "eval"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := MustCompile(tt.src).EvalFloat(map[string]float64{"x": 1})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var ee *EvalError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.name, ee.Name)
		})
	}
}

func TestArity(t *testing.T) {
	for _, src := range []string{"atan2(1)", "sin(1, 2)", "cos()"} {
		_, err := MustCompile(src).EvalFloat(nil)
		assert.ErrorIs(t, err, ErrArity, src)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		src string
		pos int
	}{
		{"", 1},
		{"a*", 3},
		{"(1+2", 5},
		{"2 $ 3", 3},
		{"1 2", 3},
		{"sin(x,)", 7},
		{")", 1},
		{"x..1", 2},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Compile(tt.src)
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.pos, se.Pos, se.Error())
		})
	}
}

func TestSnippet(t *testing.T) {
	_, err := Compile("a*")
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Snippet("a*"), "  a*\n    ^")
}

func TestProgramIntrospection(t *testing.T) {
	p := MustCompile("a*sin(x) + y + pi - cos(b*x)")
	assert.Equal(t, []string{"a", "b", "pi", "x", "y"}, p.FreeNames())
	assert.Equal(t, []string{"cos", "sin"}, p.Calls())
	assert.Equal(t, "a*sin(x) + y + pi - cos(b*x)", p.Source())
	assert.Equal(t, "(1 + (2 * 3))", MustCompile("1+2*3").String())
	assert.Equal(t, "(-(x ^ 2))", MustCompile("-x^2").String())
}

func TestProgramIsPure(t *testing.T) {
	x := mat.NewDense(3, 3, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	p := MustCompile("sin(x)*a")
	env := Env{"x": Grid(x), "a": Scalar(1.5)}

	v1, err := p.Eval(env)
	require.NoError(t, err)
	v2, err := p.Eval(env)
	require.NoError(t, err)
	assert.Equal(t, v1.Dense().RawMatrix().Data, v2.Dense().RawMatrix().Data)
}

func TestLibraryTables(t *testing.T) {
	assert.True(t, IsFunction("sin"))
	assert.True(t, IsFunction("arctan2"))
	assert.False(t, IsFunction("pi"))
	assert.True(t, IsConstant("pi"))
	assert.Equal(t, 2, Arity("hypot"))
	assert.Equal(t, 1, Arity("exp"))
	assert.Equal(t, 0, Arity("nope"))
	assert.Contains(t, Functions(), "log10")
	assert.Equal(t, []string{"e", "pi", "tau"}, Constants())
}
