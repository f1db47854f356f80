// Package heater drives the kettle's heating element relay.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package heater

// Output switches the heating element.
type Output interface {
	// Set drives the element on or off. It is called every control tick
	// with the desired state, so implementations must be idempotent.
	Set(on bool) error

	// Close switches the element off and releases resources.
	Close() error
}

// Nop discards every command. Used when no relay is wired, e.g. to run the
// web interface against a probe alone.
type Nop struct{}

// Set does nothing.
func (Nop) Set(bool) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }
