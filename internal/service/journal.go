package service

import (
	"context"

	"smart_kettle/internal/logger"
	"smart_kettle/internal/models"
	"smart_kettle/internal/repository"
	"smart_kettle/internal/thermal"
)

// JournalService appends mode changes and faults to the run journal. It
// reads from its own status subscription, so slow disk writes only cost it
// dropped events and never delay the control loop.
type JournalService struct {
	eventRepo repository.EventRepo
	feed      StatusFeed
	locale    thermal.Locale
	log       *logger.Logger
}

func NewJournalService(eventRepo repository.EventRepo, feed StatusFeed, locale thermal.Locale, log *logger.Logger) *JournalService {
	if log == nil {
		log = logger.Nop()
	}
	return &JournalService{eventRepo: eventRepo, feed: feed, locale: locale, log: log}
}

func (j *JournalService) Run(ctx context.Context) {
	sub := j.feed.Subscribe()
	defer func() {
		if n := sub.Dropped(); n > 0 {
			j.log.Warnw("journal_events_dropped", "count", n)
		}
		sub.Cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := j.record(ctx, e); err != nil && ctx.Err() == nil {
				j.log.Errorw("journal_append_failed", "cause", e.Cause, "err", err)
			}
		}
	}
}

func (j *JournalService) record(ctx context.Context, e thermal.Event) error {
	var typ string
	switch e.Kind {
	case thermal.EventModeChanged:
		typ = models.EventTypeModeChanged
	case thermal.EventFault:
		typ = models.EventTypeFault
	default:
		return nil
	}

	return j.eventRepo.Append(ctx, models.KettleEvent{
		OccurredAt:  e.At,
		Type:        typ,
		Cause:       string(e.Cause),
		Description: thermal.Describe(e.State, j.locale),
		Metadata: map[string]any{
			"mode":        e.State.Mode,
			"temperature": e.State.LastReading,
			"target":      e.State.Target,
			"heater_on":   e.State.HeaterOn,
		},
	})
}
