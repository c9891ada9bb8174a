package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/hypersurf/internal/anim"
	"github.com/san-kum/hypersurf/internal/config"
	"github.com/san-kum/hypersurf/internal/metrics"
	"github.com/san-kum/hypersurf/internal/monitoring"
	"github.com/san-kum/hypersurf/internal/render"
	"github.com/san-kum/hypersurf/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of renders.
type Scenario struct {
	Name            string `yaml:"name"`
	Description     string `yaml:"description"`
	ContinueOnError bool   `yaml:"continue_on_error"`
	Steps           []Step `yaml:"steps"`
}

// Step is one render. Its fields are those of a run file, layered over the
// named preset or the defaults.
type Step struct {
	Name   string
	Preset string
	Config *config.Config
}

func (s *Step) UnmarshalYAML(n *yaml.Node) error {
	var head struct {
		Name   string `yaml:"name"`
		Preset string `yaml:"preset"`
	}
	if err := n.Decode(&head); err != nil {
		return err
	}
	cfg := config.DefaultConfig()
	if head.Preset != "" {
		if cfg = config.GetPreset(head.Preset); cfg == nil {
			return fmt.Errorf("line %d: unknown preset %q", n.Line, head.Preset)
		}
	}
	if err := n.Decode(cfg); err != nil {
		return err
	}
	s.Name, s.Preset, s.Config = head.Name, head.Preset, cfg
	if s.Name == "" {
		s.Name = cfg.Output
	}
	return nil
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("automation: parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("automation: %s has no steps", path)
	}
	return &scenario, nil
}

// Outcome reports one finished (or failed) render.
type Outcome struct {
	Name   string
	RunID  string
	Output string
	Result *anim.Result
	Err    error
}

// Render animates cfg through r. When st is non-nil the run is recorded in
// it, including runs that stopped early. The outcome's Err is the run's error.
func Render(ctx context.Context, cfg *config.Config, r anim.Renderer, target string, st *storage.Store) Outcome {
	out := Outcome{Name: cfg.Output, Output: target}

	sc, sweep, err := cfg.Build()
	if err != nil {
		out.Err = err
		return out
	}
	policy, err := cfg.Policy()
	if err != nil {
		out.Err = err
		return out
	}
	engine, err := anim.NewEngine(sc, sweep)
	if err != nil {
		out.Err = err
		return out
	}
	pool, err := render.NewBufferPool(cfg.Render.Width, cfg.Render.Height)
	if err != nil {
		out.Err = err
		return out
	}

	driver := anim.NewDriver(engine, anim.Options{Policy: policy, Verbose: cfg.Verbose, Pool: pool})
	driver.AddMetric(metrics.NewZRange())
	driver.AddMetric(metrics.NewZMean())
	driver.AddMetric(metrics.NewClipped())
	rec := metrics.NewRecorder()
	driver.AddObserver(rec)

	out.Result, out.Err = driver.Run(ctx, r)
	if out.Result == nil || st == nil {
		return out
	}

	if err := st.Init(); err != nil {
		out.Err = errors.Join(out.Err, err)
		return out
	}
	out.RunID, err = st.Save(storage.NewMetadata(sc, sweep, out.Result, target), rec.Stats())
	if err != nil {
		out.Err = errors.Join(out.Err, err)
	}
	return out
}

// RunScenario renders every step to its GIF output. It stops at the first
// failure unless the scenario continues on error, and always stops when ctx
// is cancelled.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(scenario.Steps))
	var errs []error

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return outcomes, errors.Join(append(errs, err)...)
		}
		monitoring.Logf("Running step %d/%d: %s", i+1, len(scenario.Steps), step.Name)

		cfg := step.Config
		out := Render(ctx, cfg, render.NewGIFEncoder(cfg.Output, cfg.Render), cfg.Output, st)
		out.Name = step.Name
		outcomes = append(outcomes, out)

		if out.Err != nil {
			err := fmt.Errorf("step %d (%s): %w", i+1, step.Name, out.Err)
			if !scenario.ContinueOnError || ctx.Err() != nil {
				return outcomes, errors.Join(append(errs, err)...)
			}
			monitoring.Logf("%v", err)
			errs = append(errs, err)
		}
	}

	return outcomes, errors.Join(errs...)
}
