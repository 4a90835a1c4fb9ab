package util

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/OFFIS-RIT/wikigraph/pkg/logger"
)

// ProgressCounter counts processed items and logs the running total at most
// once per interval.
type ProgressCounter struct {
	message string
	count   atomic.Int64
	started time.Time
	every   rate.Sometimes
	report  func(message string, keyvals ...any)
}

// NewProgressCounter creates a counter that reports message through the
// global logger at most once per interval.
func NewProgressCounter(message string, interval time.Duration) *ProgressCounter {
	return &ProgressCounter{
		message: message,
		started: time.Now(),
		every:   rate.Sometimes{Interval: interval},
		report:  logger.Info,
	}
}

// Add increases the counter by n and logs if the interval has elapsed.
func (p *ProgressCounter) Add(n int64) {
	total := p.count.Add(n)
	p.every.Do(func() {
		p.report(p.message, "count", total, "elapsed", time.Since(p.started).Round(time.Second))
	})
}

func (p *ProgressCounter) Count() int64 {
	return p.count.Load()
}

// Done logs the final total unconditionally.
func (p *ProgressCounter) Done() {
	p.report(p.message, "count", p.count.Load(), "elapsed", time.Since(p.started).Round(time.Millisecond), "done", true)
}
