package metrics

import (
	"github.com/san-kum/hypersurf/internal/frame"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ZRange tracks the widest spread of z values seen in any single frame.
type ZRange struct {
	name    string
	span    float64
	samples int
}

func NewZRange() *ZRange {
	return &ZRange{name: "z_range"}
}

func (z *ZRange) Name() string { return z.name }

func (z *ZRange) Observe(s frame.Sample) {
	data := samples(s)
	if len(data) == 0 {
		return
	}
	if span := floats.Max(data) - floats.Min(data); z.samples == 0 || span > z.span {
		z.span = span
	}
	z.samples++
}

func (z *ZRange) Value() float64 { return z.span }

func (z *ZRange) Reset() {
	z.span = 0
	z.samples = 0
}

// ZMean is the mean over frames of each frame's mean height.
type ZMean struct {
	name  string
	means []float64
}

func NewZMean() *ZMean {
	return &ZMean{name: "z_mean"}
}

func (z *ZMean) Name() string { return z.name }

func (z *ZMean) Observe(s frame.Sample) {
	if data := samples(s); len(data) > 0 {
		z.means = append(z.means, stat.Mean(data, nil))
	}
}

func (z *ZMean) Value() float64 {
	if len(z.means) == 0 {
		return 0
	}
	return stat.Mean(z.means, nil)
}

func (z *ZMean) Reset() { z.means = z.means[:0] }

func samples(s frame.Sample) []float64 {
	if s.Z == nil {
		return nil
	}
	r, c := s.Z.Dims()
	raw := s.Z.RawMatrix()
	if raw.Stride == c {
		return raw.Data[:r*c]
	}
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, raw.Data[i*raw.Stride:i*raw.Stride+c]...)
	}
	return out
}
