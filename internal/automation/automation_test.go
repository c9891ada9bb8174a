package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/hypersurf/internal/config"
	"github.com/san-kum/hypersurf/internal/monitoring"
	"github.com/san-kum/hypersurf/internal/render"
	"github.com/san-kum/hypersurf/internal/storage"
	"github.com/san-kum/hypersurf/internal/surface"
)

const scenarioYAML = `
name: demo
description: two small renders
continue_on_error: %v
steps:
  - name: saddle
    preset: saddle
    step: 0.5
    sweep: {length: 2, scale: 1}
    render: {width: 64, height: 48}
    output: %s
  - name: broken
    function: "x +"
    output: %s
  - name: plane
    function: "a*x"
    x: {low: -1, high: 1}
    y: {low: -1, high: 1}
    step: 0.5
    sweep: {length: 1, scale: 2}
    render: {width: 64, height: 48}
    output: %s
`

func writeScenario(t *testing.T, cont bool) (string, string) {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(scenarioYAML, cont,
		filepath.Join(dir, "saddle.gif"),
		filepath.Join(dir, "broken.gif"),
		filepath.Join(dir, "plane.gif"))
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path, dir
}

func TestLoadScenarioLayersPresets(t *testing.T) {
	path, _ := writeScenario(t, false)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if sc.Name != "demo" || len(sc.Steps) != 3 {
		t.Fatalf("unexpected scenario: %+v", sc)
	}

	saddle := sc.Steps[0].Config
	if saddle.Function != config.GetPreset("saddle").Function {
		t.Errorf("preset function lost: %q", saddle.Function)
	}
	if saddle.Step != 0.5 || saddle.Sweep.Length != 2 || saddle.Render.Width != 64 {
		t.Errorf("step overrides not applied: %+v", saddle)
	}
	if saddle.Render.Theme != "ocean" {
		t.Errorf("unset render fields should keep defaults, theme = %q", saddle.Render.Theme)
	}

	plane := sc.Steps[2].Config
	if plane.X.Low != -1 || plane.Function != "a*x" {
		t.Errorf("plain step not decoded: %+v", plane)
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty.yaml":  "name: nothing\n",
		"preset.yaml": "steps:\n  - preset: nope\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadScenario(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRunScenarioStopsAtFirstFailure(t *testing.T) {
	monitoring.SetLogger(nil)
	defer monitoring.SetOutput(os.Stderr)

	path, dir := writeScenario(t, false)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(filepath.Join(dir, "runs"))

	outcomes, err := RunScenario(context.Background(), sc, st)
	if !errors.Is(err, surface.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	if outcomes[0].Err != nil || outcomes[0].RunID == "" || outcomes[0].Result.Rendered != 4 {
		t.Errorf("first step: %+v", outcomes[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "saddle.gif")); err != nil {
		t.Errorf("saddle.gif not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "plane.gif")); !os.IsNotExist(err) {
		t.Error("steps after the failure should not run")
	}
}

func TestRunScenarioContinueOnError(t *testing.T) {
	monitoring.SetLogger(nil)
	defer monitoring.SetOutput(os.Stderr)

	path, dir := writeScenario(t, true)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	st := storage.New(filepath.Join(dir, "runs"))

	outcomes, err := RunScenario(context.Background(), sc, st)
	if err == nil {
		t.Fatal("the broken step should still be reported")
	}
	if len(outcomes) != 3 || outcomes[2].Err != nil {
		t.Fatalf("outcomes: %+v", outcomes)
	}
	if outcomes[2].Result.Rendered != 2 {
		t.Errorf("plane rendered %d frames, want 2", outcomes[2].Result.Rendered)
	}

	runs, err := st.List()
	if err != nil || len(runs) != 2 {
		t.Errorf("store holds %d runs (%v), want 2", len(runs), err)
	}
}

func TestRunScenarioCancelled(t *testing.T) {
	path, _ := writeScenario(t, true)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := RunScenario(ctx, sc, nil)
	if !errors.Is(err, context.Canceled) || len(outcomes) != 0 {
		t.Errorf("cancelled scenario: %d outcomes, err %v", len(outcomes), err)
	}
}

func TestRenderWithoutStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Step = 1
	cfg.Sweep.Length = 1
	cfg.Render.Width, cfg.Render.Height = 48, 32
	path := filepath.Join(t.TempDir(), "one.gif")

	out := Render(context.Background(), cfg, render.NewGIFEncoder(path, cfg.Render), path, nil)
	if out.Err != nil {
		t.Fatalf("Render: %v", out.Err)
	}
	if out.RunID != "" || out.Result.Rendered != 2 {
		t.Errorf("unexpected outcome %+v", out)
	}
}
