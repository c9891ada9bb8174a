package config

import (
	"fmt"
	"os"

	"github.com/san-kum/hypersurf/internal/anim"
	"github.com/san-kum/hypersurf/internal/render"
	"github.com/san-kum/hypersurf/internal/schedule"
	"github.com/san-kum/hypersurf/internal/surface"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFunction = "a*sin(x) + y"
	DefaultOutput   = "surface.gif"
	DefaultBound    = 5.0
	// DefaultZBound is also the placeholder window when z is dynamic.
	DefaultZBound   = 10.0
)

// Config is the on-disk description of one animation run.
type Config struct {
	Function  string             `yaml:"function"`
	Variables []string           `yaml:"variables"`
	X         surface.AxisBounds `yaml:"x"`
	Y         surface.AxisBounds `yaml:"y"`
	Z         surface.AxisBounds `yaml:"z"`
	DynamicZ  bool               `yaml:"dynamic_z"`
	Step      float64            `yaml:"step"`
	Sweep     schedule.Sweep     `yaml:"sweep"`
	Render    render.Options     `yaml:"render"`
	Output    string             `yaml:"output"`
	OnError   string             `yaml:"on_error"`
	Verbose   bool               `yaml:"verbose"`
}

func DefaultConfig() *Config {
	return &Config{
		Function:  DefaultFunction,
		Variables: []string{"x", "y", "a"},
		X:         surface.AxisBounds{Low: -DefaultBound, High: DefaultBound},
		Y:         surface.AxisBounds{Low: -DefaultBound, High: DefaultBound},
		Z:         surface.AxisBounds{Low: -DefaultZBound, High: DefaultZBound},
		DynamicZ:  true,
		Step:      surface.DefaultStep,
		Sweep:     schedule.DefaultSweep(),
		Render:    render.DefaultOptions(),
		Output:    DefaultOutput,
		OnError:   string(anim.Abort),
	}
}

// Load reads a yaml file over the defaults, so a file may set only the
// fields it cares about.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Variables = append([]string(nil), c.Variables...)
	return &cp
}

// SetVariables replaces the variable set from text such as "x, y, a".
func (c *Config) SetVariables(text string) {
	c.Variables = surface.ParseVariables(text)
}

func (c *Config) Policy() (anim.FailurePolicy, error) {
	return anim.ParsePolicy(c.OnError)
}

// Build validates the run file and produces the immutable animation
// configuration and the sweep.
func (c *Config) Build() (*surface.Config, schedule.Sweep, error) {
	if err := c.Sweep.Validate(); err != nil {
		return nil, schedule.Sweep{}, err
	}
	if err := c.Render.Validate(); err != nil {
		return nil, schedule.Sweep{}, &surface.ConfigError{Field: "render", Message: "invalid options", Wrapped: err}
	}
	if _, err := c.Policy(); err != nil {
		return nil, schedule.Sweep{}, &surface.ConfigError{Field: "on_error", Message: "invalid policy", Wrapped: err}
	}
	sc, err := surface.NewConfig(surface.Spec{
		Variables: surface.VariableSet(c.Variables),
		XBounds:   c.X,
		YBounds:   c.Y,
		ZBounds:   c.Z,
		DynamicZ:  c.DynamicZ,
		Step:      c.Step,
		Function:  c.Function,
	})
	if err != nil {
		return nil, schedule.Sweep{}, err
	}
	return sc, c.Sweep, nil
}
