// Package mqtt mirrors the kettle's status stream to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	"smart_kettle/internal/thermal"
)

// DefaultTopic is the base topic when none is configured.
const DefaultTopic = "home/kettle"

// Publisher publishes kettle events to MQTT.
type Publisher interface {
	// Publish sends one status event to <topic>/events.
	Publish(event thermal.Event) error

	// PublishState sends the retained controller snapshot to <topic>/state.
	PublishState(state thermal.State) error

	// Close disconnects from the broker.
	Close() error
}

// EventsTopic returns the topic carrying the event stream.
func EventsTopic(base string) string {
	return strings.TrimRight(base, "/") + "/events"
}

// StateTopic returns the topic carrying the retained snapshot.
func StateTopic(base string) string {
	return strings.TrimRight(base, "/") + "/state"
}

// AvailabilityTopic returns the topic carrying online/offline (last will).
func AvailabilityTopic(base string) string {
	return strings.TrimRight(base, "/") + "/availability"
}

// Payload is the JSON body of an event message.
type Payload struct {
	Kettle KettlePayload `json:"kettle"`
}

// KettlePayload contains the event details.
type KettlePayload struct {
	Timestamp   string              `json:"timestamp"`
	Event       string              `json:"event"`
	Cause       string              `json:"cause,omitempty"`
	Temperature thermal.NullDegrees `json:"temperature"`
	Target      thermal.NullDegrees `json:"target"`
	Mode        string              `json:"mode"`
	HeaterOn    bool                `json:"heater_on"`
	NoLiquid    bool                `json:"no_liquid"`
	SensorFault bool                `json:"sensor_fault"`
}

// FormatPayload creates the JSON payload for an event.
func FormatPayload(event thermal.Event) ([]byte, error) {
	temp := event.Degrees
	if event.Kind != thermal.EventReading {
		temp = event.State.LastReading
	}
	payload := Payload{
		Kettle: KettlePayload{
			Timestamp:   event.At.UTC().Format(time.RFC3339),
			Event:       string(event.Kind),
			Cause:       string(event.Cause),
			Temperature: temp,
			Target:      event.State.Target,
			Mode:        event.State.Mode.String(),
			HeaterOn:    event.State.HeaterOn,
			NoLiquid:    event.State.NoLiquid,
			SensorFault: event.State.SensorFault,
		},
	}
	return json.Marshal(payload)
}

// StatePayload is the retained snapshot body.
type StatePayload struct {
	Timestamp     string              `json:"timestamp"`
	Mode          string              `json:"mode"`
	Temperature   thermal.NullDegrees `json:"temperature"`
	Target        thermal.NullDegrees `json:"target"`
	HeaterOn      bool                `json:"heater_on"`
	NoLiquid      bool                `json:"no_liquid"`
	SensorFault   bool                `json:"sensor_fault"`
	TestFinished  bool                `json:"test_finished"`
	TestElapsedMS int64               `json:"test_elapsed_ms"`
}

// FormatState creates the JSON payload for the retained snapshot.
func FormatState(state thermal.State) ([]byte, error) {
	return json.Marshal(StatePayload{
		Timestamp:     state.UpdatedAt.UTC().Format(time.RFC3339),
		Mode:          state.Mode.String(),
		Temperature:   state.LastReading,
		Target:        state.Target,
		HeaterOn:      state.HeaterOn,
		NoLiquid:      state.NoLiquid,
		SensorFault:   state.SensorFault,
		TestFinished:  state.TestFinished,
		TestElapsedMS: state.TestElapsed.Milliseconds(),
	})
}
