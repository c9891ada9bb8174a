package anim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/hypersurf/internal/frame"
	"github.com/san-kum/hypersurf/internal/monitoring"
	"github.com/san-kum/hypersurf/internal/render"
	"github.com/san-kum/hypersurf/internal/surface"
)

// Renderer consumes frames in order. Finalize is called exactly once per run,
// including runs that stop early.
type Renderer interface {
	RenderFrame(fb *render.FrameBuffer, s frame.Sample, cfg *surface.Config) error
	Finalize() error
}

type Observer interface {
	OnFrame(s frame.Sample)
}

type Metric interface {
	Name() string
	Observe(s frame.Sample)
	Value() float64
	Reset()
}

// FailurePolicy decides what a frame failure does to the run.
type FailurePolicy string

const (
	Abort FailurePolicy = "abort"
	Skip  FailurePolicy = "skip"
)

func ParsePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case Abort, Skip:
		return p, nil
	case "":
		return Abort, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

type Options struct {
	Policy  FailurePolicy
	Verbose bool
	Width   int
	Height  int
	// Pool, when set, supplies the run's frame buffer instead of Width x Height.
	Pool *render.BufferPool
}

// Result summarizes a run.
type Result struct {
	Rendered int
	Indices  []int
	Skipped  []int
	Stopped  bool
	ZBounds  []surface.AxisBounds
	Metrics  map[string]float64
	Elapsed  time.Duration
}

// Driver runs the frames of an engine through a renderer, one at a time.
type Driver struct {
	engine    *Engine
	opts      Options
	metrics   []Metric
	observers []Observer
}

func NewDriver(engine *Engine, opts Options) *Driver {
	if opts.Policy == "" {
		opts.Policy = Abort
	}
	return &Driver{
		engine:    engine,
		opts:      opts,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Driver) acquire() (*render.FrameBuffer, error) {
	if d.opts.Pool != nil {
		return d.opts.Pool.Get(), nil
	}
	return render.NewFrameBuffer(d.opts.Width, d.opts.Height)
}

// Run renders frames 0 through Frames()-1. Cancelling ctx stops between
// frames. However the run ends, the renderer is finalized and the frame
// buffer released before Run returns.
func (d *Driver) Run(ctx context.Context, r Renderer) (*Result, error) {
	switch d.opts.Policy {
	case Abort, Skip:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, d.opts.Policy)
	}

	fb, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer fb.Close()

	for _, m := range d.metrics {
		m.Reset()
	}

	cfg := d.engine.Config()
	n := d.engine.Frames()
	result := &Result{
		Indices: make([]int, 0, n),
		Skipped: make([]int, 0),
		ZBounds: make([]surface.AxisBounds, 0, n),
		Metrics: make(map[string]float64),
	}
	start := time.Now()

	var runErr error
loop:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			result.Stopped = true
			runErr = ctx.Err()
			break loop
		default:
		}

		s, err := d.engine.Frame(i)
		if err == nil {
			err = r.RenderFrame(fb, s, cfg)
		}
		if err != nil {
			if d.opts.Policy == Skip {
				monitoring.Logf("Frame: %d skipped: %v", i, err)
				result.Skipped = append(result.Skipped, i)
				continue
			}
			result.Stopped = true
			runErr = &FrameError{Index: i, Err: err}
			break
		}

		if d.opts.Verbose {
			monitoring.Logf("Frame: %d  %s", i, s.Assignment)
		}
		result.Rendered++
		result.Indices = append(result.Indices, i)
		result.ZBounds = append(result.ZBounds, s.ZBounds)

		for _, m := range d.metrics {
			m.Observe(s)
		}
		for _, o := range d.observers {
			o.OnFrame(s)
		}
	}

	result.Elapsed = time.Since(start)
	for _, m := range d.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	if err := r.Finalize(); err != nil {
		// an empty stopped run has nothing to encode; the stop reason wins
		if !(runErr != nil && errors.Is(err, render.ErrNoFrames)) {
			runErr = errors.Join(runErr, fmt.Errorf("finalize: %w", err))
		}
	}
	return result, runErr
}
