package metrics

import "github.com/san-kum/hypersurf/internal/frame"

// Clipped is the fraction of surface samples that fell outside their frame's
// z bounds, across the whole run.
type Clipped struct {
	name    string
	outside int
	total   int
}

func NewClipped() *Clipped {
	return &Clipped{name: "clipped"}
}

func (c *Clipped) Name() string { return c.name }

func (c *Clipped) Observe(s frame.Sample) {
	for _, v := range samples(s) {
		if !s.ZBounds.Contains(v) {
			c.outside++
		}
		c.total++
	}
}

func (c *Clipped) Value() float64 {
	if c.total == 0 {
		return 0
	}
	return float64(c.outside) / float64(c.total)
}

func (c *Clipped) Reset() {
	c.outside = 0
	c.total = 0
}
