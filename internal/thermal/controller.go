package thermal

import "time"

// Input is everything the controller sees on one tick. A non-nil Err marks
// a tick without a usable reading; Degrees and Command are ignored then.
type Input struct {
	Now     time.Time
	Degrees int
	Err     error
	Command *Command
}

// Result is the outcome of one tick. Events carry the post-tick snapshot.
type Result struct {
	State           State
	Events          []Event
	CommandAccepted bool
}

// Controller owns the kettle state. It is not safe for concurrent use: a
// single control loop drives it and hands out State copies.
type Controller struct {
	stallTimeout time.Duration
	state        State
	stall        StallDetector
	testStart    time.Time
	pending      []Event
}

// NewController returns an idle controller. A non-positive stallTimeout
// selects DefaultStallTimeout.
func NewController(stallTimeout time.Duration) *Controller {
	if stallTimeout <= 0 {
		stallTimeout = DefaultStallTimeout
	}
	return &Controller{stallTimeout: stallTimeout}
}

// StallTimeout returns the configured no-liquid window.
func (c *Controller) StallTimeout() time.Duration {
	return c.stallTimeout
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	return c.state
}

// Tick advances the state machine by one control period.
//
// On a good reading the order is: command intake, goal check, stall safety
// check, heater start. Reaching the target always wins over a stall seen in
// the same tick.
func (c *Controller) Tick(in Input) Result {
	c.pending = c.pending[:0]
	accepted := false

	if in.Err != nil {
		c.sensorFailed(in.Now)
	} else {
		accepted = c.observe(in)
	}

	c.state.UpdatedAt = in.Now
	events := make([]Event, len(c.pending))
	for i, e := range c.pending {
		e.At = in.Now
		e.State = c.state
		if e.Kind == EventReading {
			e.Degrees = c.state.LastReading
		}
		events[i] = e
	}
	return Result{State: c.state, Events: events, CommandAccepted: accepted}
}

func (c *Controller) observe(in Input) bool {
	r := Reading{Degrees: in.Degrees, At: in.Now}
	c.state.LastReading = Some(r.Degrees)
	c.state.UnchangedFor = c.stall.Observe(r)
	c.emit(EventReading, "")

	if c.state.SensorFault {
		c.state.SensorFault = false
		c.emit(EventModeChanged, CauseSensorRecovered)
	}

	accepted := false
	if in.Command != nil {
		accepted = c.intake(*in.Command, in.Now)
	}

	switch {
	case c.state.Target.Valid && r.Degrees >= c.state.Target.Degrees:
		c.completeRun(true, in.Now)
	case c.state.HeaterOn && c.state.UnchangedFor > c.stallTimeout:
		c.completeRun(false, in.Now)
	case c.state.Target.Valid && !c.state.HeaterOn:
		c.startHeat(r)
	}
	return accepted
}

// sensorFailed holds heater state and skips commands, but keeps the stall
// clock running so a silent sensor cannot extend a dry boil.
func (c *Controller) sensorFailed(now time.Time) {
	if !c.state.SensorFault {
		c.state.SensorFault = true
		c.emit(EventFault, CauseSensorFailure)
	}
	c.state.UnchangedFor = c.stall.Since(now)
	if c.state.HeaterOn && c.state.UnchangedFor > c.stallTimeout {
		c.emit(EventReading, "")
		c.completeRun(false, now)
	}
}

func (c *Controller) intake(cmd Command, now time.Time) bool {
	if cmd.Validate() != nil || c.state.Mode == ModeTesting {
		return false
	}
	c.state.Target = Some(cmd.Degrees)
	c.state.NoLiquid = false
	c.state.TestFinished = false
	c.state.TestElapsed = 0

	cause := CauseTargetSet
	if cmd.Kind == StartTest {
		c.state.Mode = ModeTesting
		c.testStart = now
		cause = CauseTestStarted
	}
	c.emit(EventModeChanged, cause)
	return true
}

func (c *Controller) startHeat(r Reading) {
	c.state.HeaterOn = true
	if c.state.Mode == ModeIdle {
		c.state.Mode = ModeHeating
	}
	c.stall.Reset(r)
	c.state.UnchangedFor = 0
	c.emit(EventModeChanged, CauseHeatStarted)
}

func (c *Controller) completeRun(success bool, now time.Time) {
	c.state.HeaterOn = false
	c.state.NoLiquid = !success
	c.state.Target = NullDegrees{}

	cause := CauseRunComplete
	if !success {
		cause = CauseNoLiquid
	}
	if c.state.Mode == ModeTesting {
		c.state.TestElapsed = now.Sub(c.testStart)
		c.state.TestFinished = true
		cause = CauseTestFinished
	}
	c.state.Mode = ModeIdle

	if !success {
		c.emit(EventFault, CauseNoLiquid)
	}
	c.emit(EventModeChanged, cause)
}

func (c *Controller) emit(kind EventKind, cause Cause) {
	c.pending = append(c.pending, Event{Kind: kind, Cause: cause})
}
