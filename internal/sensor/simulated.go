package sensor

import (
	"context"
	"math"
	"sync"
	"time"
)

// Simulation defaults.
const (
	DefaultAmbientC    = 22.0
	DefaultHeatCPerSec = 0.8  // full kettle with a 2kW element
	DefaultCoolCPerSec = 0.05 // passive cooling towards ambient
	BoilingC           = 100.0
	minSimulationStep  = 10 * time.Millisecond
)

// SimConfig tunes the simulated kettle.
type SimConfig struct {
	AmbientC    float64
	HeatCPerSec float64
	CoolCPerSec float64
	Liquid      bool
}

// SimulatedKettle models water temperature in a kettle. It is both a
// temperature Source and a heater output (Set/Close), so the control loop
// can run end to end without hardware. A dry kettle keeps the probe flat
// while heating, which is what trips the no-liquid cutoff.
type SimulatedKettle struct {
	mu       sync.Mutex
	cfg      SimConfig
	tempC    float64
	heaterOn bool
	updated  time.Time
	now      func() time.Time
}

// NewSimulatedKettle starts at ambient temperature. Zero rates pick the defaults.
func NewSimulatedKettle(cfg SimConfig) *SimulatedKettle {
	if cfg.HeatCPerSec <= 0 {
		cfg.HeatCPerSec = DefaultHeatCPerSec
	}
	if cfg.CoolCPerSec <= 0 {
		cfg.CoolCPerSec = DefaultCoolCPerSec
	}
	return &SimulatedKettle{
		cfg:   cfg,
		tempC: cfg.AmbientC,
		now:   time.Now,
	}
}

// Poll advances the model to now and returns the rounded temperature.
func (k *SimulatedKettle) Poll(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.advance(k.now())
	return int(math.Round(k.tempC)), nil
}

// Set switches the simulated heating element.
func (k *SimulatedKettle) Set(on bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.advance(k.now())
	k.heaterOn = on
	return nil
}

// Close turns the element off.
func (k *SimulatedKettle) Close() error {
	return k.Set(false)
}

// SetLiquid fills or empties the kettle.
func (k *SimulatedKettle) SetLiquid(present bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.advance(k.now())
	k.cfg.Liquid = present
}

// HeaterOn reports the element state.
func (k *SimulatedKettle) HeaterOn() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.heaterOn
}

func (k *SimulatedKettle) advance(now time.Time) {
	if k.updated.IsZero() {
		k.updated = now
		return
	}
	dt := now.Sub(k.updated)
	if dt < minSimulationStep {
		return
	}
	k.updated = now
	elapsed := dt.Seconds()

	switch {
	case k.heaterOn && k.cfg.Liquid:
		k.tempC = math.Min(k.tempC+k.cfg.HeatCPerSec*elapsed, BoilingC)
	case k.heaterOn:
		// dry element: the probe sits in air and does not move
	default:
		k.driftToAmbient(elapsed)
	}
}

func (k *SimulatedKettle) driftToAmbient(elapsed float64) {
	if k.tempC > k.cfg.AmbientC {
		k.tempC = math.Max(k.tempC-k.cfg.CoolCPerSec*elapsed, k.cfg.AmbientC)
	}
}
