package surface

import (
	"github.com/san-kum/hypersurf/internal/expr"
)

// Config is the immutable animation configuration shared by every frame.
type Config struct {
	Variables VariableSet
	XBounds   AxisBounds
	YBounds   AxisBounds
	ZBounds   AxisBounds
	DynamicZ  bool
	Grid      *Grid
	Function  string

	program *expr.Program
}

// Spec carries the inputs of NewConfig.
type Spec struct {
	Variables VariableSet
	XBounds   AxisBounds
	YBounds   AxisBounds
	ZBounds   AxisBounds
	DynamicZ  bool
	Step      float64
	Function  string
}

// NewConfig validates spec, samples the grid and compiles the function.
func NewConfig(spec Spec) (*Config, error) {
	if err := spec.Variables.Validate(); err != nil {
		return nil, err
	}
	if err := spec.ZBounds.Validate("z"); err != nil {
		return nil, err
	}
	step := spec.Step
	if step == 0 {
		step = DefaultStep
	}
	grid, err := NewGrid(spec.XBounds, spec.YBounds, step)
	if err != nil {
		return nil, err
	}
	prog, err := expr.Compile(spec.Function)
	if err != nil {
		return nil, &ConfigError{Field: "function", Message: "cannot parse", Wrapped: err}
	}
	return &Config{
		Variables: append(VariableSet(nil), spec.Variables...),
		XBounds:   spec.XBounds,
		YBounds:   spec.YBounds,
		ZBounds:   spec.ZBounds,
		DynamicZ:  spec.DynamicZ,
		Grid:      grid,
		Function:  spec.Function,
		program:   prog,
	}, nil
}

// Program returns the compiled function.
func (c *Config) Program() *expr.Program { return c.program }

// UnboundNames lists names the function uses that neither the variable set,
// the x and y axes nor the library constants provide. Evaluation will fail on
// any of them.
func (c *Config) UnboundNames() []string {
	var out []string
	for _, n := range c.program.FreeNames() {
		if n == "x" || n == "y" {
			continue
		}
		if !c.Variables.Contains(n) && !expr.IsConstant(n) {
			out = append(out, n)
		}
	}
	return out
}

// UnknownFunctions lists called names missing from the function library.
func (c *Config) UnknownFunctions() []string {
	var out []string
	for _, n := range c.program.Calls() {
		if !expr.IsFunction(n) {
			out = append(out, n)
		}
	}
	return out
}
