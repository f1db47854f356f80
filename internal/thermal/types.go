// Package thermal holds the kettle control logic: the stall detector, the
// controller state machine and the status strings derived from its state.
// It has no hardware, network or clock dependencies; time is always passed in.
package thermal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DefaultStallTimeout is how long a reading may stay flat while heating
// before the run is aborted as "no liquid".
const DefaultStallTimeout = 8 * time.Second

// Reading is a single temperature sample.
type Reading struct {
	Degrees int
	At      time.Time
}

// NullDegrees is an optional temperature. The zero value means "absent".
type NullDegrees struct {
	Degrees int
	Valid   bool
}

// Some returns a present temperature.
func Some(degrees int) NullDegrees {
	return NullDegrees{Degrees: degrees, Valid: true}
}

// String renders the value, or "None" when absent.
func (n NullDegrees) String() string {
	if !n.Valid {
		return "None"
	}
	return strconv.Itoa(n.Degrees)
}

// MarshalJSON encodes an absent value as null.
func (n NullDegrees) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Degrees)
}

// UnmarshalJSON accepts a number or null.
func (n *NullDegrees) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullDegrees{}
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}

// Mode is the controller's operating mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModeHeating
	ModeTesting
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeHeating:
		return "HEATING"
	case ModeTesting:
		return "TESTING"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "IDLE":
		*m = ModeIdle
	case "HEATING":
		*m = ModeHeating
	case "TESTING":
		*m = ModeTesting
	default:
		return fmt.Errorf("unknown mode %q", string(b))
	}
	return nil
}

// State is a point-in-time view of the controller. It is a value type:
// copies never alias the controller's own state.
type State struct {
	Target       NullDegrees   `json:"target"`
	HeaterOn     bool          `json:"heater_on"`
	Mode         Mode          `json:"mode"`
	LastReading  NullDegrees   `json:"last_reading"`
	UnchangedFor time.Duration `json:"unchanged_for"`
	NoLiquid     bool          `json:"no_liquid"`
	TestElapsed  time.Duration `json:"test_elapsed"`
	TestFinished bool          `json:"test_finished"`
	SensorFault  bool          `json:"sensor_fault"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// CommandKind selects what a Command does.
type CommandKind int

const (
	SetTarget CommandKind = iota + 1
	StartTest
)

func (k CommandKind) String() string {
	switch k {
	case SetTarget:
		return "SET_TARGET"
	case StartTest:
		return "START_TEST"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// ErrInvalidCommand is returned by Command.Validate.
var ErrInvalidCommand = errors.New("invalid command")

// Command is an external request for the controller.
type Command struct {
	Kind    CommandKind
	Degrees int
}

// Validate checks the command shape. Range limits beyond "positive" belong
// to the caller.
func (c Command) Validate() error {
	if c.Kind != SetTarget && c.Kind != StartTest {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidCommand, int(c.Kind))
	}
	if c.Degrees <= 0 {
		return fmt.Errorf("%w: target must be positive, got %d", ErrInvalidCommand, c.Degrees)
	}
	return nil
}

// EventKind classifies status events.
type EventKind string

const (
	EventReading     EventKind = "reading"
	EventModeChanged EventKind = "mode_changed"
	EventFault       EventKind = "fault"
	EventKeepAlive   EventKind = "keepalive"
)

// Cause names the transition behind a mode_changed or fault event.
type Cause string

const (
	CauseTargetSet       Cause = "target_set"
	CauseTestStarted     Cause = "test_started"
	CauseHeatStarted     Cause = "heat_started"
	CauseRunComplete     Cause = "run_complete"
	CauseNoLiquid        Cause = "no_liquid"
	CauseTestFinished    Cause = "test_finished"
	CauseSensorFailure   Cause = "sensor_failure"
	CauseSensorRecovered Cause = "sensor_recovered"
)

// Event is a status notification. State is the controller snapshot taken
// when the event was emitted.
type Event struct {
	Kind    EventKind   `json:"kind"`
	At      time.Time   `json:"at"`
	Degrees NullDegrees `json:"degrees"`
	Cause   Cause       `json:"cause,omitempty"`
	State   State       `json:"state"`
}
