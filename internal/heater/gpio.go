//go:build linux

package heater

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIO drives a relay on a single output line.
type GPIO struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewGPIO requests the line as an output, initially off. activeLow suits
// relay boards that energise on a low level.
func NewGPIO(chipName string, offset int, activeLow bool) (*GPIO, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("smart-kettle"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := chip.RequestLine(offset, opts...)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request heater line %d: %w", offset, err)
	}

	return &GPIO{chip: chip, line: line}, nil
}

// Set drives the relay.
func (g *GPIO) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := g.line.SetValue(v); err != nil {
		return fmt.Errorf("set heater line: %w", err)
	}
	return nil
}

// Close drives the relay off, then releases the line and chip.
func (g *GPIO) Close() error {
	var errs []error

	if g.line != nil {
		if err := g.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("switch heater off: %w", err))
		}
		if err := g.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close heater line: %w", err))
		}
	}
	if g.chip != nil {
		if err := g.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
