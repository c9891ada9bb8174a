package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/hypersurf/internal/anim"
	"github.com/san-kum/hypersurf/internal/automation"
	"github.com/san-kum/hypersurf/internal/config"
	"github.com/san-kum/hypersurf/internal/export"
	"github.com/san-kum/hypersurf/internal/expr"
	"github.com/san-kum/hypersurf/internal/metrics"
	"github.com/san-kum/hypersurf/internal/monitoring"
	"github.com/san-kum/hypersurf/internal/render"
	"github.com/san-kum/hypersurf/internal/storage"
	"github.com/san-kum/hypersurf/internal/surface"
	"github.com/san-kum/hypersurf/internal/tui"
	"github.com/san-kum/hypersurf/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	function  string
	variables string
	xLow      float64
	xHigh     float64
	yLow      float64
	yHigh     float64
	zLow      float64
	zHigh     float64
	dynamicZ  bool
	step      float64
	length    int
	scale     float64
	onError   string
	theme     string
	imgWidth  int
	imgHeight int
	delay     int

	output     string
	recordPath string
	jsonOut    string
	htmlOut    string
	pngDir     string
	noSave     bool
	frameRate  int
	at         string
	svgPath    string
	htmlPath   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hypersurf",
		Short:         "animate f(x, y, ...) as a sweeping 3D surface",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hypersurf", "run store directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every frame")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render the animation to a GIF (or a PNG sequence)",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	addSurfaceFlags(renderCmd)
	renderCmd.Flags().StringVarP(&output, "output", "o", config.DefaultOutput, "output GIF path")
	renderCmd.Flags().StringVar(&pngDir, "png-dir", "", "write numbered PNG frames to this directory instead of a GIF")
	renderCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run in the store")

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "play the animation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runPreview,
	}
	addSurfaceFlags(previewCmd)
	previewCmd.Flags().IntVar(&frameRate, "fps", 20, "frame rate")
	previewCmd.Flags().StringVarP(&recordPath, "output", "o", "preview.gif", "base path for recordings")

	evalCmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "evaluate an expression at one point",
		Args:  cobra.ExactArgs(1),
		RunE:  runEval,
	}
	evalCmd.Flags().StringVar(&at, "at", "", "bindings, e.g. x=0,y=3,a=2")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "plot the parameter sweep",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSurfaceFlags(sweepCmd)

	frameCmd := &cobra.Command{
		Use:   "frame [n]",
		Short: "evaluate a single frame",
		Args:  cobra.ExactArgs(1),
		RunE:  runFrame,
	}
	addSurfaceFlags(frameCmd)
	frameCmd.Flags().StringVar(&svgPath, "svg", "", "write a wireframe SVG of the frame")
	frameCmd.Flags().StringVar(&htmlPath, "html", "", "write an interactive 3D chart of the frame")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFUNCTION\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, config.GetPreset(name).Function, config.Describe(name))
			}
			w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInit,
	}
	addSurfaceFlags(initCmd)

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "render every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the runs in the store")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "output", "o", "-", "output path, - for stdout")

	exportHTMLCmd := &cobra.Command{
		Use:   "export-html [run_id]",
		Short: "export a run as an interactive chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportHTML,
	}
	exportHTMLCmd.Flags().StringVarP(&htmlOut, "output", "o", "", "output path (default <run_id>.html)")

	rootCmd.AddCommand(renderCmd, batchCmd, previewCmd, evalCmd, sweepCmd, frameCmd, presetsCmd, initCmd, listCmd, showCmd, exportJSONCmd, exportHTMLCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.StatusError.Render("error:"), err)
		if errors.Is(err, surface.ErrConfiguration) {
			fmt.Fprintln(os.Stderr, viz.Subtle.Render("check the function, variables, bounds and sweep settings"))
		}
		os.Exit(1)
	}
}

// addSurfaceFlags registers the flags that shape the animation. They only
// override the preset or config file when set explicitly.
func addSurfaceFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVarP(&function, "function", "f", def.Function, "surface expression")
	f.StringVar(&variables, "vars", strings.Join(def.Variables, ","), "variables: two spatial names, then swept parameters")
	f.Float64Var(&xLow, "xlow", def.X.Low, "x lower bound")
	f.Float64Var(&xHigh, "xhigh", def.X.High, "x upper bound")
	f.Float64Var(&yLow, "ylow", def.Y.Low, "y lower bound")
	f.Float64Var(&yHigh, "yhigh", def.Y.High, "y upper bound")
	f.Float64Var(&zLow, "zlow", def.Z.Low, "z lower bound (static window)")
	f.Float64Var(&zHigh, "zhigh", def.Z.High, "z upper bound (static window)")
	f.BoolVar(&dynamicZ, "dynamic-z", def.DynamicZ, "derive the z window from f at the lower corner")
	f.Float64Var(&step, "step", def.Step, "grid spacing")
	f.IntVar(&length, "length", def.Sweep.Length, "frames per half sweep")
	f.Float64Var(&scale, "scale", def.Sweep.Scale, "parameter value at the peak")
	f.StringVar(&onError, "on-error", def.OnError, "frame failure policy: abort or skip")
	f.StringVar(&theme, "theme", def.Render.Theme, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	f.IntVar(&imgWidth, "width", def.Render.Width, "frame width in pixels")
	f.IntVar(&imgHeight, "height", def.Render.Height, "frame height in pixels")
	f.IntVar(&delay, "delay", def.Render.Delay, "GIF frame delay in 100ths of a second")
}

// loadConfig layers defaults, preset, config file and explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("function") {
		cfg.Function = function
	}
	if changed("vars") {
		cfg.SetVariables(variables)
	}
	if changed("xlow") {
		cfg.X.Low = xLow
	}
	if changed("xhigh") {
		cfg.X.High = xHigh
	}
	if changed("ylow") {
		cfg.Y.Low = yLow
	}
	if changed("yhigh") {
		cfg.Y.High = yHigh
	}
	if changed("zlow") {
		cfg.Z.Low = zLow
	}
	if changed("zhigh") {
		cfg.Z.High = zHigh
	}
	if changed("dynamic-z") {
		cfg.DynamicZ = dynamicZ
	}
	if changed("step") {
		cfg.Step = step
	}
	if changed("length") {
		cfg.Sweep.Length = length
	}
	if changed("scale") {
		cfg.Sweep.Scale = scale
	}
	if changed("on-error") {
		cfg.OnError = onError
	}
	if changed("theme") {
		cfg.Render.Theme = theme
	}
	if changed("width") {
		cfg.Render.Width = imgWidth
	}
	if changed("height") {
		cfg.Render.Height = imgHeight
	}
	if changed("delay") {
		cfg.Render.Delay = delay
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func buildEngine(cmd *cobra.Command) (*config.Config, *anim.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	sc, sweep, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	for _, name := range sc.UnknownFunctions() {
		monitoring.Logf("warning: %q is not a known function", name)
	}
	for _, name := range sc.UnboundNames() {
		monitoring.Logf("warning: %q is not a declared variable", name)
	}
	engine, err := anim.NewEngine(sc, sweep)
	if err != nil {
		return nil, nil, err
	}
	return cfg, engine, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, engine, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = output
	}

	var (
		renderer anim.Renderer
		target   string
	)
	if pngDir != "" {
		pr, err := render.NewPNGRenderer(pngDir, cfg.Render)
		if err != nil {
			return err
		}
		renderer, target = pr, pngDir
	} else {
		renderer, target = render.NewGIFEncoder(cfg.Output, cfg.Render), cfg.Output
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("rendering %d frames of %s...\n", engine.Frames(), viz.Title.Render(cfg.Function))
	out := automation.Render(ctx, cfg, renderer, target, st)
	if out.Result == nil {
		return out.Err
	}
	if out.RunID != "" {
		fmt.Printf("run id: %s\n", out.RunID)
	}
	printResult(out.Result, target)
	return out.Err
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
	}
	if verbose {
		for _, step := range scenario.Steps {
			step.Config.Verbose = true
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("%s: %d steps\n", viz.Title.Render(scenario.Name), len(scenario.Steps))
	outcomes, runErr := automation.RunScenario(ctx, scenario, st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tOUTPUT\tFRAMES\tRUN\tSTATUS")
	for _, o := range outcomes {
		frames, status := 0, "ok"
		if o.Result != nil {
			frames = o.Result.Rendered
		}
		if o.Err != nil {
			status = o.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", o.Name, o.Output, frames, o.RunID, status)
	}
	w.Flush()
	return runErr
}

func printResult(result *anim.Result, target string) {
	status := viz.StatusRunning.Render("completed")
	if result.Stopped {
		status = viz.StatusError.Render("stopped")
	}
	fmt.Printf("%s in %v\n", status, result.Elapsed.Round(time.Millisecond))
	fmt.Printf("frames: %d rendered, %d skipped -> %s\n", result.Rendered, len(result.Skipped), target)
	fmt.Println("\nmetrics:")
	for _, name := range []string{"z_range", "z_mean", "clipped"} {
		if v, ok := result.Metrics[name]; ok {
			fmt.Printf("  %s%s\n", viz.MetricLabel.Render(name), viz.MetricValue.Render(fmt.Sprintf("%.6f", v)))
		}
	}
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, engine, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	// the alternate screen owns the terminal until the program exits
	monitoring.SetLogger(nil)
	final, err := tui.Run(engine, tui.Options{
		FPS:        frameRate,
		Policy:     policy,
		Render:     cfg.Render,
		RecordPath: recordPath,
	})
	monitoring.SetOutput(os.Stderr)

	for _, path := range final.Recorded() {
		fmt.Printf("recorded %s\n", path)
	}
	if err != nil {
		return err
	}
	return final.Err()
}

// parseBindings reads "x=0, y=3,a=2".
func parseBindings(text string) (map[string]float64, error) {
	vars := make(map[string]float64)
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' }) {
		name, val, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("binding %q: want name=value", part)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", part, err)
		}
		vars[name] = v
	}
	return vars, nil
}

func runEval(cmd *cobra.Command, args []string) error {
	prog, err := expr.Compile(args[0])
	if err != nil {
		var se *expr.SyntaxError
		if errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, se.Snippet(args[0]))
		}
		return err
	}
	vars, err := parseBindings(at)
	if err != nil {
		return err
	}
	v, err := prog.EvalFloat(vars)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Printf("%s = ", prog)
	}
	fmt.Println(strconv.FormatFloat(v, 'g', -1, 64))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	_, engine, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	sweep := engine.Sweep()
	higher := engine.Config().Variables.Higher()
	if len(higher) == 0 {
		fmt.Println("no swept parameters: every frame is identical")
	}

	graph := asciigraph.Plot(sweep.Values(),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s over %d frames (peak %g)", strings.Join(higher, ", "), sweep.Frames(), sweep.Peak())),
	)
	fmt.Println(graph)
	return nil
}

func runFrame(cmd *cobra.Command, args []string) error {
	cfg, engine, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("frame index %q: %w", args[0], err)
	}
	s, err := engine.Frame(n)
	if err != nil {
		return &anim.FrameError{Index: n, Err: err}
	}

	st := metrics.Summarize(s)
	rows, cols := s.Z.Dims()
	fmt.Println(viz.Title.Render(s.String()))
	fmt.Printf("%s%s\n", viz.MetricLabel.Render("grid"), viz.MetricValue.Render(fmt.Sprintf("%d x %d", cols, rows)))
	fmt.Printf("%s%s\n", viz.MetricLabel.Render("z window"), viz.MetricValue.Render(s.ZBounds.String()))
	fmt.Printf("%s%s\n", viz.MetricLabel.Render("z min"), viz.MetricValue.Render(fmt.Sprintf("%.6f", st.ZMin)))
	fmt.Printf("%s%s\n", viz.MetricLabel.Render("z max"), viz.MetricValue.Render(fmt.Sprintf("%.6f", st.ZMax)))
	fmt.Printf("%s%s\n", viz.MetricLabel.Render("z mean"), viz.MetricValue.Render(fmt.Sprintf("%.6f", st.ZMean)))

	if svgPath != "" {
		doc, err := export.SampleSVG(s, engine.Config(), cfg.Render.Camera(), viz.GetTheme(cfg.Render.Theme), cfg.Render.Width, cfg.Render.Height)
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgPath, []byte(doc), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if htmlPath != "" {
		if err := writeFile(htmlPath, func(f *os.File) error { return export.SurfaceHTML(f, s, engine.Config()) }); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", htmlPath)
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, _, err := cfg.Build(); err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tFUNCTION\tFRAMES\tSKIPPED\tSTATUS")
	for _, run := range runs {
		status := "done"
		if run.Stopped {
			status = "stopped"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Function,
			run.Rendered,
			len(run.Skipped),
			status,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("function: %s\n", meta.Function)
	fmt.Printf("variables: %s\n", strings.Join(meta.Variables, ", "))
	fmt.Printf("x %s  y %s  step %g\n", meta.X, meta.Y, meta.Step)
	fmt.Printf("frames: %d rendered, %d skipped\n\n", meta.Rendered, len(meta.Skipped))

	if len(frames) < 2 {
		return nil
	}
	param := make([]float64, len(frames))
	low := make([]float64, len(frames))
	high := make([]float64, len(frames))
	for i, f := range frames {
		param[i], low[i], high[i] = f.Param, f.ZLow, f.ZHigh
	}
	fmt.Println(asciigraph.Plot(param, asciigraph.Height(8), asciigraph.Width(80), asciigraph.Caption("parameter")))
	fmt.Println()
	fmt.Println(asciigraph.PlotMany([][]float64{low, high},
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.Caption("z window"),
	))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	return export.JSONFile(jsonOut, *meta, frames)
}

func exportHTML(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	path := htmlOut
	if path == "" {
		path = meta.ID + ".html"
	}
	if err := writeFile(path, func(f *os.File) error { return export.HTML(f, *meta, frames) }); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
