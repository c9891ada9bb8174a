package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/hypersurf/internal/frame"
	"github.com/san-kum/hypersurf/internal/metrics"
	"github.com/san-kum/hypersurf/internal/surface"
	"github.com/san-kum/hypersurf/internal/viz"
)

// CanvasToSVG converts a braille canvas to dots, scale pixels per sub-pixel.
func CanvasToSVG(canvas *viz.Canvas, scale float64, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	writeHeader(&sb, width, height, theme)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", theme.Primary)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height float64, theme viz.Theme) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, theme.Background)
}

type svgLine struct {
	x1, y1, x2, y2 int
	depth          float64
	color          string
}

// SampleSVG draws one frame as a wireframe seen through cam. Lines are colored
// by height and emitted back to front.
func SampleSVG(s frame.Sample, cfg *surface.Config, cam *viz.Camera, theme viz.Theme, width, height int) (string, error) {
	if s.Z == nil {
		return "", fmt.Errorf("export: frame %d has no surface", s.Index)
	}
	mesh := viz.NewSurfaceMesh(cfg.Grid.XValues(), cfg.Grid.YValues(), s.Z, cfg.XBounds, cfg.YBounds, s.ZBounds)

	lines := make([]svgLine, 0)
	add := func(e viz.Edge, c string) {
		x1, y1, d1, v1 := cam.Project(e.Start, width, height)
		x2, y2, d2, v2 := cam.Project(e.End, width, height)
		if v1 || v2 {
			lines = append(lines, svgLine{x1, y1, x2, y2, (d1 + d2) / 2, c})
		}
	}
	for _, e := range viz.BoxWireframe().Edges {
		add(e, string(theme.Muted))
	}
	for _, e := range mesh.Wireframe(40).Edges {
		c := theme.Colormap(((e.Start.Z+e.End.Z)/2 + 1) / 2)
		add(e, hex(c.R, c.G, c.B))
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].depth < lines[j].depth })

	var sb strings.Builder
	writeHeader(&sb, float64(width), float64(height), theme)
	fmt.Fprintf(&sb, "<text x=\"8\" y=\"18\" fill=\"%s\" font-family=\"monospace\" font-size=\"13\">%s   z %s</text>\n",
		theme.Text, escape(s.String()), s.ZBounds)
	sb.WriteString("<g fill=\"none\" stroke-width=\"1\">\n")
	for _, l := range lines {
		fmt.Fprintf(&sb, "<line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\" stroke=\"%s\"/>\n", l.x1, l.y1, l.x2, l.y2, l.color)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String(), nil
}

// ParamTraceSVG plots the swept parameter against frame index.
func ParamTraceSVG(stats []metrics.FrameStat, width, height int, strokeColor string) string {
	if len(stats) < 2 {
		return ""
	}

	minX, maxX := float64(stats[0].Index), float64(stats[0].Index)
	minY, maxY := stats[0].Param, stats[0].Param
	for _, s := range stats {
		minX = min(minX, float64(s.Index))
		maxX = max(maxX, float64(s.Index))
		minY = min(minY, s.Param)
		maxY = max(maxY, s.Param)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, s := range stats {
		x := (float64(s.Index) - minX) / rangeX * float64(width)
		y := float64(height) - (s.Param-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func hex(r, g, b uint8) string { return fmt.Sprintf("#%02x%02x%02x", r, g, b) }

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }
