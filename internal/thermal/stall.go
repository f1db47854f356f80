package thermal

import "time"

// StallDetector reports how long the most recent reading has been unchanged.
type StallDetector struct {
	last   int
	since  time.Time
	primed bool
}

// Observe records a reading and returns how long its value has been flat.
// A changed value (or the very first reading) restarts the clock at zero.
func (d *StallDetector) Observe(r Reading) time.Duration {
	if !d.primed || r.Degrees != d.last {
		d.Reset(r)
		return 0
	}
	return r.At.Sub(d.since)
}

// Reset makes r the new baseline.
func (d *StallDetector) Reset(r Reading) {
	d.last = r.Degrees
	d.since = r.At
	d.primed = true
}

// Since returns the flat duration up to now without recording a reading.
// It is zero before the first observation.
func (d *StallDetector) Since(now time.Time) time.Duration {
	if !d.primed {
		return 0
	}
	return now.Sub(d.since)
}
