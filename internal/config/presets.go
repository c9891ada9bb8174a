package config

import (
	"sort"

	"github.com/san-kum/hypersurf/internal/surface"
)

type preset struct {
	function string
	vars     []string
	xy       float64
	z        float64
	dynamic  bool
	about    string
}

var presets = map[string]preset{
	"tilt":     {"a*sin(x) + y", []string{"x", "y", "a"}, 5, 10, true, "sine ridge on a tilted plane"},
	"ripple":   {"sin(sqrt(x^2 + y^2) * a / 5)", []string{"x", "y", "a"}, 5, 1.5, false, "radial waves tightening with a"},
	"saddle":   {"a*(x^2 - y^2)", []string{"x", "y", "a"}, 2, 40, false, "hyperbolic paraboloid"},
	"gaussian": {"a*exp(-(x^2 + y^2))", []string{"x", "y", "a"}, 3, 10, false, "growing bump"},
	"wave":     {"sin(x + a) * cos(y - a)", []string{"x", "y", "a"}, 3, 1.2, false, "travelling egg-crate"},
	"constant": {"c", []string{"x", "y", "c"}, 1, 10, true, "flat plane, dynamic window"},
	"twin":     {"sin(a*x/4) + cos(b*y/4)", []string{"x", "y", "a", "b"}, 4, 2.5, false, "two parameters in lockstep"},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Function = p.function
	cfg.Variables = append([]string(nil), p.vars...)
	cfg.X = surface.AxisBounds{Low: -p.xy, High: p.xy}
	cfg.Y = cfg.X
	cfg.Z = surface.AxisBounds{Low: -p.z, High: p.z}
	cfg.DynamicZ = p.dynamic
	cfg.Output = name + ".gif"
	return cfg
}

// Describe returns the one-line description of a preset.
func Describe(name string) string { return presets[name].about }

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
