package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Sample is one scripted poll result.
type Sample struct {
	Degrees int
	Err     error
}

// Fake is a test double that returns scripted samples. Once the script is
// exhausted the last sample repeats.
type Fake struct {
	mu      sync.Mutex
	samples []Sample
	index   int
	Polls   int
}

// NewFake returns a Fake that reads the given temperatures in order.
func NewFake(degrees ...int) *Fake {
	f := &Fake{}
	for _, d := range degrees {
		f.samples = append(f.samples, Sample{Degrees: d})
	}
	return f
}

// Push appends samples to the script.
func (f *Fake) Push(samples ...Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, samples...)
}

// Poll returns the next scripted sample.
func (f *Fake) Poll(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Polls++
	if len(f.samples) == 0 {
		return 0, fmt.Errorf("%w: %v", ErrSensorFailure, errors.New("no samples configured"))
	}
	s := f.samples[f.index]
	if f.index < len(f.samples)-1 {
		f.index++
	}
	if s.Err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSensorFailure, s.Err)
	}
	return s.Degrees, nil
}
