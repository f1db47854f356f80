package repository

import (
	"context"
	"sync"

	"smart_kettle/internal/thermal"
)

// StateMemory keeps the snapshot in memory. Controller state is not
// persisted: a restart always comes up idle with the heater off.
type StateMemory struct {
	mu    sync.RWMutex
	state thermal.State
}

func NewStateMemory() *StateMemory {
	return &StateMemory{}
}

// Save replaces the snapshot.
func (r *StateMemory) Save(ctx context.Context, s thermal.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
	return nil
}

// Load returns the snapshot, the zero (idle) state before the first Save.
func (r *StateMemory) Load(ctx context.Context) (thermal.State, error) {
	if err := ctx.Err(); err != nil {
		return thermal.State{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, nil
}
