package tui

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/hypersurf/internal/anim"
	"github.com/san-kum/hypersurf/internal/expr"
	"github.com/san-kum/hypersurf/internal/monitoring"
	"github.com/san-kum/hypersurf/internal/render"
	"github.com/san-kum/hypersurf/internal/schedule"
	"github.com/san-kum/hypersurf/internal/surface"
)

func newTestModel(t *testing.T, function string, policy anim.FailurePolicy) Model {
	t.Helper()
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })

	cfg, err := surface.NewConfig(surface.Spec{
		Variables: surface.VariableSet{"x", "y", "a"},
		XBounds:   surface.AxisBounds{Low: -1, High: 1},
		YBounds:   surface.AxisBounds{Low: -1, High: 1},
		ZBounds:   surface.AxisBounds{Low: -10, High: 10},
		DynamicZ:  true,
		Step:      0.25,
		Function:  function,
	})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	engine, err := anim.NewEngine(cfg, schedule.Sweep{Length: 2, Scale: 1})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ro := render.DefaultOptions()
	ro.Width, ro.Height = 96, 72
	m, err := NewModel(engine, Options{
		FPS:        30,
		Policy:     policy,
		Render:     ro,
		RecordPath: filepath.Join(t.TempDir(), "take.gif"),
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func tick() TickMsg { return TickMsg(time.Now()) }

func TestTickAdvancesAndLoops(t *testing.T) {
	m := newTestModel(t, "a*x + y", anim.Abort)

	var cmd tea.Cmd
	for i := 0; i < 5; i++ {
		m, cmd = update(t, m, tick())
		if cmd == nil {
			t.Fatal("tick should schedule the next tick")
		}
	}
	// 4 frames per sweep, so the fifth tick wraps to frame 0
	if !m.hasFrame || m.current.Index != 0 {
		t.Errorf("current frame = %d, want 0 after wrapping", m.current.Index)
	}
	if len(m.history) != 5 {
		t.Errorf("history has %d entries, want 5", len(m.history))
	}
	if v := m.View(); !strings.Contains(v, "Frame") || !strings.Contains(v, "a*x + y") {
		t.Errorf("view lacks the frame panel:\n%s", v)
	}
}

func TestPauseAndStep(t *testing.T) {
	m := newTestModel(t, "a*x + y", anim.Abort)
	m, _ = update(t, m, tick())
	m, _ = update(t, m, key(" "))
	if m.running {
		t.Fatal("space should pause")
	}
	m, _ = update(t, m, tick())
	if m.current.Index != 0 {
		t.Errorf("paused preview advanced to frame %d", m.current.Index)
	}

	m, _ = update(t, m, key("]"))
	if m.current.Index != 1 {
		t.Errorf("] moved to frame %d, want 1", m.current.Index)
	}
	m, _ = update(t, m, key("["))
	m, _ = update(t, m, key("["))
	if m.current.Index != 3 {
		t.Errorf("[ should wrap backwards to frame 3, got %d", m.current.Index)
	}
}

func TestCameraKeys(t *testing.T) {
	m := newTestModel(t, "x + y", anim.Abort)
	elev, azim, zoom := m.camera.Elev, m.camera.Azim, m.camera.Zoom

	m, _ = update(t, m, key("x"))
	m, _ = update(t, m, key("Y"))
	m, _ = update(t, m, key("+"))
	if m.camera.Elev <= elev || m.camera.Azim >= azim || m.camera.Zoom <= zoom {
		t.Errorf("camera did not move: %+v", *m.camera)
	}

	name := m.theme.Name
	m, _ = update(t, m, key("t"))
	if m.theme.Name == name {
		t.Error("t should switch theme")
	}
}

func TestAbortPolicyStopsPreview(t *testing.T) {
	m := newTestModel(t, "x / a", anim.Abort)
	m, _ = update(t, m, tick())

	if m.running {
		t.Error("a failing frame should pause the preview")
	}
	var fe *anim.FrameError
	if !errors.As(m.Err(), &fe) || fe.Index != 0 {
		t.Fatalf("Err() = %v, want frame 0 error", m.Err())
	}
	if !errors.Is(m.Err(), expr.ErrArithmeticDomain) {
		t.Errorf("Err() = %v, want arithmetic domain error", m.Err())
	}
	if !strings.Contains(m.View(), "STOPPED") {
		t.Error("view should report the stop")
	}
}

func TestSkipPolicyMovesOn(t *testing.T) {
	m := newTestModel(t, "x / a", anim.Skip)
	m, _ = update(t, m, tick())
	m, _ = update(t, m, tick())

	if m.skipped != 1 || m.Err() != nil {
		t.Errorf("skipped = %d, err = %v", m.skipped, m.Err())
	}
	if !m.hasFrame || m.current.Index != 1 {
		t.Errorf("current frame = %d, want 1", m.current.Index)
	}
}

func TestRecordingWritesGIF(t *testing.T) {
	m := newTestModel(t, "a*x*y", anim.Abort)

	m, _ = update(t, m, key("g"))
	if !m.Recording() {
		t.Fatal("g should start recording")
	}
	for i := 0; i < 3; i++ {
		m, _ = update(t, m, tick())
	}
	m, _ = update(t, m, key("g"))
	if m.Recording() {
		t.Fatal("second g should stop recording")
	}

	if len(m.Recorded()) != 1 {
		t.Fatalf("Recorded() = %v", m.Recorded())
	}
	path := m.Recorded()[0]
	if !strings.HasSuffix(path, "take_001.gif") {
		t.Errorf("unexpected recording path %s", path)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("recording not written: %v", err)
	}
}

func TestQuitFinalizesRecording(t *testing.T) {
	m := newTestModel(t, "a*x*y", anim.Abort)
	m, _ = update(t, m, key("g"))
	m, _ = update(t, m, tick())

	m, cmd := update(t, m, key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not return tea.Quit")
	}
	if m.Recording() || len(m.Recorded()) != 1 {
		t.Errorf("quit left recording open: recording=%v recorded=%v", m.Recording(), m.Recorded())
	}
}

func TestEmptyRecordingWritesNothing(t *testing.T) {
	m := newTestModel(t, "a*x*y", anim.Abort)
	m, _ = update(t, m, key(" "))
	m, _ = update(t, m, key("g"))
	m, _ = update(t, m, key("g"))

	if len(m.Recorded()) != 0 || m.recordErr != nil {
		t.Errorf("empty take: recorded=%v err=%v", m.Recorded(), m.recordErr)
	}
}

func TestFinishFinalizesFinalModelOnError(t *testing.T) {
	initial := newTestModel(t, "a*x*y", anim.Abort)
	m, _ := update(t, initial, key("g"))
	m, _ = update(t, m, tick())

	boom := errors.New("terminal went away")
	fm, err := finish(m, initial, boom)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want the program error", err)
	}
	if fm.Recording() || len(fm.Recorded()) != 1 {
		t.Fatalf("recording not finalized: recording=%v recorded=%v", fm.Recording(), fm.Recorded())
	}
	if _, err := os.Stat(fm.Recorded()[0]); err != nil {
		t.Errorf("recording not written: %v", err)
	}

	if fm, err := finish(nil, initial, nil); err != nil || len(fm.Recorded()) != 0 {
		t.Errorf("nil final model: recorded=%v err=%v", fm.Recorded(), err)
	}
}

func TestParamHistorySparkline(t *testing.T) {
	m := newTestModel(t, "a*x + y", anim.Abort)
	for i := 0; i < 3; i++ {
		m, _ = update(t, m, tick())
	}
	if len(m.params) != 3 || m.params[2] != 2 {
		t.Fatalf("params = %v, want [0 1 2]", m.params)
	}
	if !strings.Contains(m.View(), "▁") {
		t.Error("view lacks the parameter sparkline")
	}

	m, _ = update(t, m, key("r"))
	if len(m.params) != 0 || len(m.history) != 0 {
		t.Errorf("restart kept history: params=%v history=%v", m.params, m.history)
	}
}
