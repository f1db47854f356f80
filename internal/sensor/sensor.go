// Package sensor provides temperature sources for the control loop.
// The real implementation reads a DS18B20 probe through the Linux one-wire
// sysfs interface; the simulated kettle and the fake allow running and
// testing without hardware.
package sensor

import (
	"context"
	"errors"
)

// ErrSensorFailure wraps every failed poll. Callers treat it as a tick
// without a reading.
var ErrSensorFailure = errors.New("sensor failure")

// Source is polled once per control tick. Each call triggers a fresh
// conversion; nothing is cached.
type Source interface {
	Poll(ctx context.Context) (int, error)
}
