// Package status fans controller events out to any number of observers.
// Every subscription has its own buffer, so a slow observer only loses its
// own oldest events and never stalls the control loop.
package status

import (
	"context"
	"sync"
	"time"

	"smart_kettle/internal/thermal"
)

// DefaultKeepAlive is the keep-alive period used by Run when none is given.
const DefaultKeepAlive = 10 * time.Second

const defaultBufferSize = 32

// Broker is a publish/subscribe hub for thermal events.
type Broker struct {
	mu          sync.RWMutex
	subs        map[uint64]*Subscription
	nextID      uint64
	bufSize     int
	lastReading thermal.Event
	now         func() time.Time
}

// NewBroker creates a broker whose subscriptions buffer bufSize events.
func NewBroker(bufSize int) *Broker {
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	return &Broker{
		subs:        make(map[uint64]*Subscription),
		bufSize:     bufSize,
		lastReading: thermal.Event{Kind: thermal.EventReading},
		now:         time.Now,
	}
}

// Subscription is one observer's view of the event stream.
type Subscription struct {
	id      uint64
	broker  *Broker
	ch      chan thermal.Event
	once    sync.Once
	mu      sync.Mutex
	dropped uint64
}

// Events returns the delivery channel. It is closed by Cancel.
func (s *Subscription) Events() <-chan thermal.Event {
	return s.ch
}

// Dropped returns how many events were discarded because the buffer was full.
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Cancel detaches the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subs, s.id)
		s.broker.mu.Unlock()
		close(s.ch)
	})
}

// deliver never blocks: when the buffer is full the oldest event goes.
func (s *Subscription) deliver(e thermal.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		select {
		case s.ch <- e:
			return
		default:
		}
		select {
		case <-s.ch:
			s.dropped++
		default:
		}
	}
}

// Subscribe attaches a new observer. The first event it receives is the
// latest reading (with null degrees if nothing was read yet).
func (b *Broker) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		broker: b,
		ch:     make(chan thermal.Event, b.bufSize),
	}
	snapshot := b.lastReading
	if snapshot.At.IsZero() {
		snapshot.At = b.now()
	}
	sub.deliver(snapshot)
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers e to every current subscriber.
func (b *Broker) Publish(e thermal.Event) {
	b.mu.Lock()
	if e.Kind == thermal.EventReading {
		b.lastReading = e
	}
	b.mu.Unlock()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		sub.deliver(e)
	}
}

// Subscribers returns the number of attached observers.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Run publishes keep-alive events every interval until ctx is done.
func (b *Broker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultKeepAlive
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			b.Publish(thermal.Event{Kind: thermal.EventKeepAlive, At: now.UTC()})
		}
	}
}
