package frequency

import (
	"log/slog"
	"time"
)

// Frequency logs how fast something is counted, at most once per Interval.
type Frequency struct {
	Interval time.Duration
	count    int
	total    int
	start    time.Time
	LastTime time.Time
}

func New(interval time.Duration) *Frequency {
	now := time.Now()
	return &Frequency{Interval: interval, start: now, LastTime: now}
}

func (f *Frequency) Add(count int) {
	f.count += count
	f.total += count
}

// Check logs the count since the last report and the average rate since start
// once Interval has elapsed. It reports whether it logged.
func (f *Frequency) Check(log *slog.Logger, msg string) bool {
	now := time.Now()
	if now.Sub(f.LastTime) < f.Interval {
		return false
	}
	log.Info(msg, slog.Int("count", f.count), slog.Int("total", f.total), slog.Float64("average", f.Average(now)))
	f.count = 0
	f.LastTime = now
	return true
}

// Average is the number counted per second since start.
func (f *Frequency) Average(now time.Time) float64 {
	elapsed := now.Sub(f.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(f.total) / elapsed
}

func (f *Frequency) Total() int {
	return f.total
}
