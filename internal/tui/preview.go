package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/hypersurf/internal/anim"
	"github.com/san-kum/hypersurf/internal/frame"
	"github.com/san-kum/hypersurf/internal/monitoring"
	"github.com/san-kum/hypersurf/internal/render"
	"github.com/san-kum/hypersurf/internal/viz"
)

const (
	canvasWidth     = 64
	canvasHeight    = 22
	historyCapacity = 120
	meshLines       = 24
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(44)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = viz.KeyHint.MarginTop(1)
)

type TickMsg time.Time

// Options configures a preview session.
type Options struct {
	FPS        int
	Policy     anim.FailurePolicy
	Render     render.Options
	RecordPath string
}

// Model plays the frames of an engine in the terminal, looping over the
// sweep, and optionally records what it shows to GIF files.
type Model struct {
	engine *anim.Engine
	opts   Options
	canvas *viz.Canvas
	camera *viz.Camera
	theme  viz.Theme

	next     int
	current  frame.Sample
	hasFrame bool
	running  bool
	showHelp bool
	history  []float64
	params   []float64
	skipped  int
	err      error

	pool      *render.BufferPool
	recorder  *render.GIFEncoder
	takes     int
	recorded  []string
	recordErr error
}

// NewModel prepares a preview of engine. The first frame is evaluated on the
// first tick.
func NewModel(engine *anim.Engine, opts Options) (Model, error) {
	if opts.FPS <= 0 {
		opts.FPS = 20
	}
	if opts.Policy == "" {
		opts.Policy = anim.Abort
	}
	if opts.RecordPath == "" {
		opts.RecordPath = "preview.gif"
	}
	if err := opts.Render.Validate(); err != nil {
		return Model{}, err
	}
	pool, err := render.NewBufferPool(opts.Render.Width, opts.Render.Height)
	if err != nil {
		return Model{}, err
	}
	return Model{
		engine:  engine,
		opts:    opts,
		canvas:  viz.NewCanvas(canvasWidth, canvasHeight),
		camera:  opts.Render.Camera(),
		theme:   viz.GetTheme(opts.Render.Theme),
		running: true,
		history: make([]float64, 0, historyCapacity),
		params:  make([]float64, 0, historyCapacity),
		pool:    pool,
	}, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Update handles keys and advances one frame per tick while running.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.stopRecording()
			return m, tea.Quit
		case " ":
			m.running = !m.running
			if m.running {
				m.err = nil
			}
		case "r":
			m.next = 0
			m.history = m.history[:0]
			m.params = m.params[:0]
		case "[":
			m.running = false
			m.seek(-1)
		case "]":
			m.running = false
			m.seek(1)
		case "g":
			if m.recorder != nil {
				m.stopRecording()
			} else {
				m.startRecording()
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			m.theme = viz.NextTheme(m.theme.Name)
		case "x":
			m.camera.Tilt(0.1)
		case "X":
			m.camera.Tilt(-0.1)
		case "y":
			m.camera.Spin(0.1)
		case "Y":
			m.camera.Spin(-0.1)
		case "z":
			m.camera.RollBy(0.1)
		case "Z":
			m.camera.RollBy(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

// seek shows the frame dir steps away from the current one.
func (m *Model) seek(dir int) {
	n := m.engine.Frames()
	if m.hasFrame {
		m.next = ((m.current.Index+dir)%n + n) % n
	}
	m.advance()
}

// advance evaluates the next frame. A failing frame is skipped or pauses the
// preview depending on the failure policy.
func (m *Model) advance() {
	i := m.next
	m.next = (i + 1) % m.engine.Frames()

	s, err := m.engine.Frame(i)
	if err != nil {
		if m.opts.Policy == anim.Skip {
			monitoring.Logf("Frame: %d skipped: %v", i, err)
			m.skipped++
			return
		}
		m.err = &anim.FrameError{Index: i, Err: err}
		m.running = false
		return
	}

	m.current, m.hasFrame = s, true
	m.history = appendCapped(m.history, s.ZBounds.High)
	if p, ok := s.Param(); ok {
		m.params = appendCapped(m.params, p)
	}
	if m.recorder != nil {
		m.capture(s)
	}
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) capture(s frame.Sample) {
	fb := m.pool.Get()
	defer fb.Close()
	if err := m.recorder.RenderFrame(fb, s, m.engine.Config()); err != nil {
		m.recordErr = err
	}
}

func (m *Model) startRecording() {
	m.takes++
	ext := filepath.Ext(m.opts.RecordPath)
	path := fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(m.opts.RecordPath, ext), m.takes, ext)
	opts := m.opts.Render
	opts.Theme = m.theme.Name
	m.recorder = render.NewGIFEncoder(path, opts)
	m.recordErr = nil
}

// stopRecording finalizes the current recording, if any.
func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	rec := m.recorder
	m.recorder = nil
	if err := rec.Finalize(); err != nil {
		if !errors.Is(err, render.ErrNoFrames) {
			m.recordErr = err
		}
		return
	}
	m.recorded = append(m.recorded, rec.Path())
	monitoring.Logf("recorded %d frames to %s", rec.Len(), rec.Path())
}

// Err is the frame error that paused the preview, if any.
func (m Model) Err() error { return m.err }

// Recorded lists the GIF files written during the session.
func (m Model) Recorded() []string { return m.recorded }

// Recording reports whether frames are being captured.
func (m Model) Recording() bool { return m.recorder != nil }

func (m Model) draw() {
	m.canvas.Clear()
	if !m.hasFrame {
		return
	}
	cfg := m.engine.Config()
	mesh := viz.NewSurfaceMesh(cfg.Grid.XValues(), cfg.Grid.YValues(), m.current.Z, cfg.XBounds, cfg.YBounds, m.current.ZBounds)
	w := viz.BoxWireframe()
	w.Merge(mesh.Wireframe(meshLines))
	viz.Render3D(m.canvas, w, m.camera)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return viz.StatusError.Render("STOPPED")
	case m.recorder != nil:
		return viz.StatusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Len()))
	case !m.running:
		return viz.StatusPaused.Render("PAUSED")
	}
	return viz.StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(lipgloss.NewStyle().Foreground(m.theme.Primary).Render(m.canvas.String()))

	cfg := m.engine.Config()
	var s strings.Builder
	s.WriteString(viz.GradientText("f = "+cfg.Function, m.theme.Primary, m.theme.Secondary) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(viz.MetricLabel.Render(label) + viz.MetricValue.Render(value) + "\n")
	}
	if m.hasFrame {
		row("Frame", fmt.Sprintf("%d / %d", m.current.Index, m.engine.Frames()))
		for _, name := range m.current.Assignment.Names() {
			row(name, fmt.Sprintf("%.3f", m.current.Assignment[name]))
		}
		row("z", m.current.ZBounds.String())
		s.WriteString(viz.ProgressBar(float64(m.current.Index+1)/float64(m.engine.Frames()), 28) + "\n")
	} else {
		row("Frame", "-")
	}
	row("Theme", m.theme.Name)
	if m.skipped > 0 {
		row("Skipped", fmt.Sprintf("%d", m.skipped))
	}

	if len(m.params) > 1 {
		s.WriteString(viz.Sparkline(m.params, 28) + "\n")
	}
	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("z high"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.err != nil {
		s.WriteString(viz.StatusError.Render(m.err.Error()) + "\n")
	}
	if m.recordErr != nil {
		s.WriteString(viz.StatusError.Render("record: "+m.recordErr.Error()) + "\n")
	}
	if n := len(m.recorded); n > 0 {
		row("Saved", m.recorded[n-1])
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Restart Q:Quit\nT:Theme  G:Record  ?:Help\n[ ]:Step  xyz:Rotate +-:Zoom"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return viz.Panel.Render(strings.Join([]string{
			viz.Title.Render("KEYS"),
			"space   pause / resume",
			"r       restart the sweep",
			"[ ]     step one frame back / forward",
			"x X     tilt",
			"y Y     spin",
			"z Z     roll",
			"+ -     zoom",
			"t       next theme",
			"g       start / stop GIF recording",
			"q       quit",
		}, "\n")) + "\n\n" + mainView
	}
	return mainView
}

// Run shows the preview until the user quits. An active recording is
// finalized on the way out.
func Run(engine *anim.Engine, opts Options) (Model, error) {
	m, err := NewModel(engine, opts)
	if err != nil {
		return Model{}, err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return finish(final, m, err)
}

// finish finalizes the recording of the last model the program saw, falling
// back to the initial one when the program returned none.
func finish(final tea.Model, initial Model, runErr error) (Model, error) {
	fm, ok := final.(Model)
	if !ok {
		fm = initial
	}
	fm.stopRecording()
	return fm, errors.Join(runErr, fm.recordErr)
}
