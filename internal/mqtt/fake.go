package mqtt

import (
	"sync"

	"smart_kettle/internal/thermal"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Events contains all events that were published.
	Events []thermal.Event

	// Payloads contains the JSON payloads for Events.
	Payloads [][]byte

	// States contains all snapshots that were published.
	States []thermal.State

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the event.
func (f *FakePublisher) Publish(event thermal.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishState records the snapshot.
func (f *FakePublisher) PublishState(state thermal.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.States = append(f.States, state)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Snapshot returns copies of the recorded events and states.
func (f *FakePublisher) Snapshot() ([]thermal.Event, []thermal.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]thermal.Event(nil), f.Events...), append([]thermal.State(nil), f.States...)
}
