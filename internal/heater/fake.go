package heater

import "sync"

// Fake records the commanded element state for test assertions.
type Fake struct {
	mu sync.Mutex

	// Calls holds every value passed to Set, in order.
	Calls []bool

	// SetError, if set, is returned by Set after recording the call.
	SetError error

	on     bool
	closed bool
}

// NewFake returns an element that starts off.
func NewFake() *Fake {
	return &Fake{}
}

// Set records the command.
func (f *Fake) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, on)
	if f.SetError != nil {
		return f.SetError
	}
	f.on = on
	return nil
}

// Close switches off and marks the element closed.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.on = false
	f.closed = true
	return nil
}

// On reports the last successfully applied state.
func (f *Fake) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Last returns the most recent Set argument and whether Set was called at all.
func (f *Fake) Last() (bool, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return false, false
	}
	return f.Calls[len(f.Calls)-1], true
}
