package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/san-kum/hypersurf/internal/frame"
	"github.com/san-kum/hypersurf/internal/metrics"
	"github.com/san-kum/hypersurf/internal/storage"
	"github.com/san-kum/hypersurf/internal/surface"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// HTML renders the per-frame parameter value, z window and surface range of
// a run as an interactive line chart.
func HTML(w io.Writer, meta storage.RunMetadata, frames []metrics.FrameStat) error {
	x := make([]int, len(frames))
	param := make([]opts.LineData, len(frames))
	zLow := make([]opts.LineData, len(frames))
	zHigh := make([]opts.LineData, len(frames))
	zMin := make([]opts.LineData, len(frames))
	zMax := make([]opts.LineData, len(frames))
	zMean := make([]opts.LineData, len(frames))
	for i, f := range frames {
		x[i] = f.Index
		param[i] = opts.LineData{Value: f.Param}
		zLow[i] = opts.LineData{Value: f.ZLow}
		zHigh[i] = opts.LineData{Value: f.ZHigh}
		zMin[i] = opts.LineData{Value: f.ZMin}
		zMax[i] = opts.LineData{Value: f.ZMax}
		zMean[i] = opts.LineData{Value: f.ZMean}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "hypersurf " + meta.ID, Theme: "dark", Width: "1000px", Height: "560px"}),
		charts.WithTitleOpts(opts.Title{Title: "f = " + meta.Function, Subtitle: fmt.Sprintf("run=%s frames=%d skipped=%d", meta.ID, meta.Rendered, len(meta.Skipped))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value", NameLocation: "middle", NameGap: 30}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	plain := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
	line.SetXAxis(x).
		AddSeries("param", param, plain).
		AddSeries("z_low", zLow, plain).
		AddSeries("z_high", zHigh, plain).
		AddSeries("z_min", zMin, plain).
		AddSeries("z_max", zMax, plain).
		AddSeries("z_mean", zMean, plain)

	return line.Render(w)
}

// SurfaceHTML renders one frame as a rotatable 3D surface.
func SurfaceHTML(w io.Writer, s frame.Sample, cfg *surface.Config) error {
	if s.Z == nil {
		return fmt.Errorf("export: frame %d has no surface", s.Index)
	}
	xs, ys := cfg.Grid.XValues(), cfg.Grid.YValues()
	data := make([]opts.Chart3DData, 0, len(xs)*len(ys))
	for i, y := range ys {
		for j, x := range xs {
			data = append(data, opts.Chart3DData{Value: []interface{}{x, y, s.Z.At(i, j)}})
		}
	}

	chart := charts.NewSurface3D()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "hypersurf frame", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "f = " + cfg.Function, Subtitle: fmt.Sprintf("%s   z %s", s, s.ZBounds)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "x", Min: cfg.XBounds.Low, Max: cfg.XBounds.High}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "y", Min: cfg.YBounds.Low, Max: cfg.YBounds.High}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "z", Min: s.ZBounds.Low, Max: s.ZBounds.High}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Dimension:  "2",
			Min:        float32(s.ZBounds.Low),
			Max:        float32(s.ZBounds.High),
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	chart.AddSeries("surface", data)

	return chart.Render(w)
}
