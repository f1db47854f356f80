package mqtt

import (
	"context"

	"smart_kettle/internal/logger"
	"smart_kettle/internal/status"
	"smart_kettle/internal/thermal"
)

// Bridge forwards a status subscription to a Publisher. Readings are only
// forwarded when the value changes, mode changes also refresh the retained
// snapshot and keep-alives are not forwarded.
type Bridge struct {
	pub  Publisher
	log  *logger.Logger
	last thermal.NullDegrees
}

// NewBridge creates a bridge.
func NewBridge(pub Publisher, log *logger.Logger) *Bridge {
	if log == nil {
		log = logger.Nop()
	}
	return &Bridge{pub: pub, log: log}
}

// Run consumes sub until ctx is cancelled or the subscription closes.
// Publish failures are logged and skipped; the broker connection
// reconnects on its own.
func (b *Bridge) Run(ctx context.Context, sub *status.Subscription) {
	defer sub.Cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			b.handle(e)
		}
	}
}

func (b *Bridge) handle(e thermal.Event) {
	switch e.Kind {
	case thermal.EventKeepAlive:
		return
	case thermal.EventReading:
		if e.Degrees == b.last {
			return
		}
		b.last = e.Degrees
	}

	if err := b.pub.Publish(e); err != nil {
		b.log.Warnw("mqtt_publish_failed", "kind", e.Kind, "err", err)
		return
	}

	if e.Kind == thermal.EventModeChanged {
		if err := b.pub.PublishState(e.State); err != nil {
			b.log.Warnw("mqtt_state_failed", "cause", e.Cause, "err", err)
		}
	}
}
