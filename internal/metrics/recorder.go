package metrics

import (
	"github.com/san-kum/hypersurf/internal/frame"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FrameStat summarizes one rendered frame.
type FrameStat struct {
	Index int     `json:"index"`
	Param float64 `json:"param"`
	ZLow  float64 `json:"z_low"`
	ZHigh float64 `json:"z_high"`
	ZMin  float64 `json:"z_min"`
	ZMax  float64 `json:"z_max"`
	ZMean float64 `json:"z_mean"`
}

// Summarize computes the statistics of s.
func Summarize(s frame.Sample) FrameStat {
	p, _ := s.Param()
	st := FrameStat{Index: s.Index, Param: p, ZLow: s.ZBounds.Low, ZHigh: s.ZBounds.High}
	if data := samples(s); len(data) > 0 {
		st.ZMin = floats.Min(data)
		st.ZMax = floats.Max(data)
		st.ZMean = stat.Mean(data, nil)
	}
	return st
}

// Recorder is a frame observer that keeps a FrameStat per frame.
type Recorder struct {
	stats []FrameStat
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) OnFrame(s frame.Sample) { r.stats = append(r.stats, Summarize(s)) }

func (r *Recorder) Stats() []FrameStat { return r.stats }

// ZMeans returns the per-frame mean heights in frame order.
func (r *Recorder) ZMeans() []float64 {
	out := make([]float64, len(r.stats))
	for i, s := range r.stats {
		out[i] = s.ZMean
	}
	return out
}
