// SPDX-License-Identifier: EPL-2.0

// Package progress reports long running scans and extractions.
package progress

import (
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Counter tracks one unit of work.
type Counter interface {
	IncrBy(n int)
	// Done marks the work finished, even when fewer units than the total
	// were counted.
	Done()
}

// Reporter hands out counters.
type Reporter interface {
	Bar(name string, total int64) Counter
}

// Nop reports nothing.
type Nop struct{}

func (Nop) Bar(string, int64) Counter { return Nop{} }
func (Nop) IncrBy(int)                {}
func (Nop) Done()                     {}

// Or returns r, or Nop when r is nil.
func Or(r Reporter) Reporter {
	if r == nil {
		return Nop{}
	}
	return r
}

// Tracker renders bars with mpb.
type Tracker struct {
	p *mpb.Progress

	mtx  sync.Mutex
	bars []*mpb.Bar
}

// New renders to w.
func New(w io.Writer) *Tracker {
	return &Tracker{
		p: mpb.New(mpb.WithOutput(w), mpb.WithWidth(64)),
	}
}

func (t *Tracker) Bar(name string, total int64) Counter {
	bar := t.p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Elapsed(decor.ET_STYLE_GO),
		),
	)

	t.mtx.Lock()
	t.bars = append(t.bars, bar)
	t.mtx.Unlock()

	return &counter{bar: bar, total: total}
}

// Wait finishes every bar still running and blocks until rendering stops.
func (t *Tracker) Wait() {
	t.mtx.Lock()
	for _, b := range t.bars {
		// no-op on completed bars
		b.Abort(false)
	}
	t.mtx.Unlock()

	t.p.Wait()
}

type counter struct {
	bar   *mpb.Bar
	total int64
	once  sync.Once
}

func (c *counter) IncrBy(n int) { c.bar.IncrBy(n) }

func (c *counter) Done() {
	c.once.Do(func() {
		if c.total > 0 {
			c.bar.SetCurrent(c.total)
			return
		}
		c.bar.SetTotal(-1, true)
	})
}
