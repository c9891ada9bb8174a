package anim

import (
	"fmt"

	"github.com/san-kum/hypersurf/internal/frame"
	"github.com/san-kum/hypersurf/internal/schedule"
	"github.com/san-kum/hypersurf/internal/surface"
)

// Engine turns a frame index into an evaluated sample: the scheduler picks
// the parameter values, the evaluator samples the surface.
type Engine struct {
	cfg    *surface.Config
	sweep  schedule.Sweep
	eval   *frame.Evaluator
	higher []string
}

func NewEngine(cfg *surface.Config, sweep schedule.Sweep) (*Engine, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := sweep.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		sweep:  sweep,
		eval:   frame.NewEvaluator(),
		higher: cfg.Variables.Higher(),
	}, nil
}

func (e *Engine) Config() *surface.Config { return e.cfg }
func (e *Engine) Sweep() schedule.Sweep   { return e.sweep }

// Frames is the length of one full sweep.
func (e *Engine) Frames() int { return e.sweep.Frames() }

// Assignment returns the parameter values for frame i.
func (e *Engine) Assignment(i int) schedule.Assignment {
	return e.sweep.At(i, e.higher)
}

// Frame evaluates frame i.
func (e *Engine) Frame(i int) (frame.Sample, error) {
	if i < 0 || i >= e.Frames() {
		return frame.Sample{}, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameRange, i, e.Frames())
	}
	s, err := e.eval.Evaluate(e.cfg, e.Assignment(i))
	if err != nil {
		return frame.Sample{}, err
	}
	s.Index = i
	return s, nil
}
