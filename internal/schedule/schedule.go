// Package schedule maps frame indices to parameter assignments.
//
// The sweep is a triangular (ping-pong) waveform: every higher parameter
// ramps up linearly from 0 over Length frames, then back down over the next
// Length frames. All parameters share one value per frame.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/hypersurf/internal/surface"
)

const (
	DefaultLength = 100
	DefaultScale  = 10.0
)

// ErrInvalidSweep indicates a sweep with a non-positive length or a zero or
// non-finite scale factor. Validate reports it inside a *surface.ConfigError.
var ErrInvalidSweep = errors.New("schedule: invalid sweep")

// Assignment maps each higher parameter to its value for one frame.
type Assignment map[string]float64

// String renders "a = 0.5, b = 0.5" in name order.
func (a Assignment) String() string {
	names := a.Names()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s = %g", n, a[n])
	}
	return strings.Join(parts, ", ")
}

// Names returns the parameter names in sorted order.
func (a Assignment) Names() []string {
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Value returns the sweep value for frame: frame/scale on the way up,
// (length-(frame-length))/scale on the way down.
func Value(frame, length int, scale float64) float64 {
	if frame < length {
		return float64(frame) / scale
	}
	return float64(length-(frame-length)) / scale
}

// Schedule assigns the sweep value for frame to every name.
func Schedule(frame, length int, scale float64, higher []string) Assignment {
	v := Value(frame, length, scale)
	a := make(Assignment, len(higher))
	for _, name := range higher {
		a[name] = v
	}
	return a
}

// Sweep is a configured triangular sweep.
type Sweep struct {
	Length int     `yaml:"length" json:"length"`
	Scale  float64 `yaml:"scale" json:"scale"`
}

func DefaultSweep() Sweep {
	return Sweep{Length: DefaultLength, Scale: DefaultScale}
}

func (s Sweep) Validate() error {
	if s.Length <= 0 {
		return &surface.ConfigError{Field: "sweep", Message: fmt.Sprintf("length must be positive, got %d", s.Length), Wrapped: ErrInvalidSweep}
	}
	if s.Scale == 0 || math.IsNaN(s.Scale) || math.IsInf(s.Scale, 0) {
		return &surface.ConfigError{Field: "sweep", Message: fmt.Sprintf("scale must be finite and non-zero, got %g", s.Scale), Wrapped: ErrInvalidSweep}
	}
	return nil
}

// Frames is the number of frames in one full sweep, up and back down.
func (s Sweep) Frames() int { return 2 * s.Length }

func (s Sweep) Value(frame int) float64 { return Value(frame, s.Length, s.Scale) }

func (s Sweep) At(frame int, higher []string) Assignment {
	return Schedule(frame, s.Length, s.Scale, higher)
}

// Values returns the waveform over every frame of the sweep.
func (s Sweep) Values() []float64 {
	out := make([]float64, s.Frames())
	for i := range out {
		out[i] = s.Value(i)
	}
	return out
}

// Peak is the value at the turning point, frame Length. It is the extreme of
// the waveform: the maximum for a positive Scale, the minimum for a negative one.
func (s Sweep) Peak() float64 { return s.Value(s.Length) }
