package anim_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hypersurf/internal/anim"
	"github.com/san-kum/hypersurf/internal/expr"
	"github.com/san-kum/hypersurf/internal/frame"
	"github.com/san-kum/hypersurf/internal/monitoring"
	"github.com/san-kum/hypersurf/internal/render"
	"github.com/san-kum/hypersurf/internal/schedule"
	"github.com/san-kum/hypersurf/internal/surface"
)

type recorder struct {
	frames    []int
	bounds    []surface.AxisBounds
	finalized int
	failAt    int
}

func (r *recorder) RenderFrame(fb *render.FrameBuffer, s frame.Sample, _ *surface.Config) error {
	if _, err := fb.Image(); err != nil {
		return err
	}
	if s.Index == r.failAt {
		return errors.New("disk full")
	}
	r.frames = append(r.frames, s.Index)
	r.bounds = append(r.bounds, s.ZBounds)
	return nil
}

func (r *recorder) Finalize() error {
	r.finalized++
	if len(r.frames) == 0 {
		return render.ErrNoFrames
	}
	return nil
}

type observerFunc func(frame.Sample)

func (f observerFunc) OnFrame(s frame.Sample) { f(s) }

type countMetric struct{ n int }

func (c *countMetric) Name() string         { return "count" }
func (c *countMetric) Observe(frame.Sample) { c.n++ }
func (c *countMetric) Value() float64       { return float64(c.n) }
func (c *countMetric) Reset()               { c.n = 0 }

func newEngine(fn string, dynamic bool, sweep schedule.Sweep) *anim.Engine {
	cfg, err := surface.NewConfig(surface.Spec{
		Variables: surface.VariableSet{"x", "y", "a"},
		XBounds:   surface.AxisBounds{Low: 0, High: 1},
		YBounds:   surface.AxisBounds{Low: 0, High: 1},
		ZBounds:   surface.AxisBounds{Low: -10, High: 10},
		DynamicZ:  dynamic,
		Step:      0.5,
		Function:  fn,
	})
	Expect(err).NotTo(HaveOccurred())
	e, err := anim.NewEngine(cfg, sweep)
	Expect(err).NotTo(HaveOccurred())
	return e
}

var _ = Describe("Engine", func() {
	It("schedules then evaluates each frame", func() {
		e := newEngine("a + x*0", false, schedule.Sweep{Length: 4, Scale: 2})
		Expect(e.Frames()).To(Equal(8))

		s, err := e.Frame(5)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Index).To(Equal(5))
		Expect(s.Assignment).To(Equal(schedule.Assignment{"a": 1.5}))
		Expect(s.Z.At(0, 0)).To(Equal(1.5))
	})

	It("rejects frames outside the sweep", func() {
		e := newEngine("a", false, schedule.Sweep{Length: 2, Scale: 1})
		_, err := e.Frame(4)
		Expect(err).To(MatchError(anim.ErrFrameRange))
		_, err = e.Frame(-1)
		Expect(err).To(MatchError(anim.ErrFrameRange))
	})

	It("validates the sweep at setup", func() {
		cfg, err := surface.NewConfig(surface.Spec{
			Variables: surface.VariableSet{"x", "y"},
			XBounds:   surface.AxisBounds{Low: 0, High: 1},
			YBounds:   surface.AxisBounds{Low: 0, High: 1},
			Function:  "x",
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = anim.NewEngine(cfg, schedule.Sweep{Length: 0, Scale: 10})
		Expect(err).To(MatchError(surface.ErrConfiguration))
		_, err = anim.NewEngine(nil, schedule.DefaultSweep())
		Expect(err).To(MatchError(anim.ErrNilConfig))
	})
})

var _ = Describe("Driver", func() {
	var (
		sweep schedule.Sweep
		rec   *recorder
	)

	BeforeEach(func() {
		monitoring.SetLogger(nil)
		sweep = schedule.Sweep{Length: 4, Scale: 1}
		rec = &recorder{failAt: -1}
	})

	It("renders every frame in order and finalizes once", func() {
		d := anim.NewDriver(newEngine("a*x + y", true, sweep), anim.Options{Width: 8, Height: 8})
		m := &countMetric{}
		d.AddMetric(m)

		res, err := d.Run(context.Background(), rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.frames).To(Equal([]int{0, 1, 2, 3, 4, 5, 6, 7}))
		Expect(rec.finalized).To(Equal(1))
		Expect(res.Rendered).To(Equal(8))
		Expect(res.Stopped).To(BeFalse())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 8.0))
		Expect(res.ZBounds).To(HaveLen(8))
	})

	It("replaces the z bounds every frame", func() {
		// f(0, 0) = a, so the window tracks the sweep value
		d := anim.NewDriver(newEngine("a + x + y", true, sweep), anim.Options{Width: 8, Height: 8})
		_, err := d.Run(context.Background(), rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.bounds[0]).To(Equal(surface.AxisBounds{}))
		Expect(rec.bounds[4]).To(Equal(surface.AxisBounds{Low: -8, High: 8}))
		Expect(rec.bounds[7]).To(Equal(surface.AxisBounds{Low: -2, High: 2}))
	})

	It("aborts on the first failing frame but still finalizes", func() {
		// a = 2 at frames 2 and 6
		d := anim.NewDriver(newEngine("x + 1/(a - 2)", false, sweep), anim.Options{Width: 8, Height: 8})
		res, err := d.Run(context.Background(), rec)

		var fe *anim.FrameError
		Expect(errors.As(err, &fe)).To(BeTrue())
		Expect(fe.Index).To(Equal(2))
		Expect(err).To(MatchError(expr.ErrArithmeticDomain))
		Expect(res.Rendered).To(Equal(2))
		Expect(res.Stopped).To(BeTrue())
		Expect(rec.finalized).To(Equal(1))
	})

	It("skips failing frames under the skip policy", func() {
		d := anim.NewDriver(newEngine("x + 1/(a - 2)", false, sweep), anim.Options{Policy: anim.Skip, Width: 8, Height: 8})
		res, err := d.Run(context.Background(), rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Skipped).To(Equal([]int{2, 6}))
		Expect(rec.frames).To(Equal([]int{0, 1, 3, 4, 5, 7}))
		Expect(res.Indices).To(Equal(rec.frames))
	})

	It("treats renderer failures like evaluation failures", func() {
		rec.failAt = 3
		d := anim.NewDriver(newEngine("x", false, sweep), anim.Options{Width: 8, Height: 8})
		_, err := d.Run(context.Background(), rec)
		Expect(err).To(MatchError(ContainSubstring("frame 3: disk full")))
	})

	It("stops between frames when cancelled and finalizes what it has", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		d := anim.NewDriver(newEngine("a*x", false, sweep), anim.Options{Width: 8, Height: 8})
		d.AddObserver(observerFunc(func(s frame.Sample) {
			if s.Index == 1 {
				cancel()
			}
		}))
		res, err := d.Run(ctx, rec)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Stopped).To(BeTrue())
		Expect(rec.frames).To(Equal([]int{0, 1}))
		Expect(rec.finalized).To(Equal(1))
	})

	It("reports the stop reason rather than an empty encode", func() {
		rec.failAt = 0
		d := anim.NewDriver(newEngine("x", false, sweep), anim.Options{Width: 8, Height: 8})
		_, err := d.Run(context.Background(), rec)
		Expect(err).NotTo(MatchError(render.ErrNoFrames))
		Expect(err).To(MatchError(ContainSubstring("frame 0")))
	})

	It("logs each frame when verbose", func() {
		var lines []string
		monitoring.SetLogger(func(format string, v ...interface{}) {
			lines = append(lines, fmt.Sprintf(format, v...))
		})
		d := anim.NewDriver(newEngine("a", false, schedule.Sweep{Length: 1, Scale: 10}), anim.Options{Verbose: true, Width: 8, Height: 8})
		_, err := d.Run(context.Background(), rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(Equal([]string{"Frame: 0  a = 0", "Frame: 1  a = 0.1"}))
	})

	It("takes its buffer from a pool and returns it", func() {
		pool, err := render.NewBufferPool(16, 16)
		Expect(err).NotTo(HaveOccurred())
		d := anim.NewDriver(newEngine("x", false, sweep), anim.Options{Pool: pool})
		_, err = d.Run(context.Background(), rec)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects an unknown policy", func() {
		d := anim.NewDriver(newEngine("x", false, sweep), anim.Options{Policy: "retry", Width: 8, Height: 8})
		_, err := d.Run(context.Background(), rec)
		Expect(err).To(MatchError(anim.ErrUnknownPolicy))
		Expect(rec.finalized).To(Equal(0))
	})

	It("writes a real gif", func() {
		path := filepath.Join(GinkgoT().TempDir(), "out.gif")
		opts := render.DefaultOptions()
		opts.Width, opts.Height = 48, 36
		enc := render.NewGIFEncoder(path, opts)

		d := anim.NewDriver(newEngine("a*x*y", true, schedule.Sweep{Length: 2, Scale: 1}), anim.Options{Width: 48, Height: 36})
		res, err := d.Run(context.Background(), enc)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Rendered).To(Equal(4))
		Expect(enc.Len()).To(Equal(4))
		Expect(path).To(BeARegularFile())
	})
})

var _ = Describe("ParsePolicy", func() {
	DescribeTable("parsing",
		func(in string, want anim.FailurePolicy, ok bool) {
			got, err := anim.ParsePolicy(in)
			if !ok {
				Expect(err).To(MatchError(anim.ErrUnknownPolicy))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("abort", "abort", anim.Abort, true),
		Entry("skip", "skip", anim.Skip, true),
		Entry("default", "", anim.Abort, true),
		Entry("unknown", "retry", anim.FailurePolicy(""), false),
	)
})
