package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smart_kettle/internal/models"
	"smart_kettle/internal/status"
	"smart_kettle/internal/thermal"
)

type journalRepoStub struct {
	mu      sync.Mutex
	appends []models.KettleEvent
	err     error
}

func (r *journalRepoStub) Append(ctx context.Context, e models.KettleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.appends = append(r.appends, e)
	return nil
}

func (r *journalRepoStub) List(ctx context.Context, from, to time.Time, typ string) ([]models.KettleEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.KettleEvent(nil), r.appends...), nil
}

func TestJournal_RecordMapsEvents(t *testing.T) {
	repo := &journalRepoStub{}
	j := NewJournalService(repo, nil, thermal.LocaleEN, nil)
	ctx := context.Background()
	when := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)

	events := []thermal.Event{
		{Kind: thermal.EventReading, At: when, Degrees: thermal.Some(40)},
		{Kind: thermal.EventKeepAlive, At: when},
		{Kind: thermal.EventModeChanged, At: when, Cause: thermal.CauseHeatStarted,
			State: thermal.State{Mode: thermal.ModeHeating, Target: thermal.Some(85), HeaterOn: true}},
		{Kind: thermal.EventFault, At: when, Cause: thermal.CauseNoLiquid,
			State: thermal.State{NoLiquid: true}},
	}
	for _, e := range events {
		if err := j.record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	if len(repo.appends) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(repo.appends))
	}
	first := repo.appends[0]
	if first.Type != models.EventTypeModeChanged || first.Cause != "heat_started" || !first.OccurredAt.Equal(when) {
		t.Fatalf("unexpected entry: %+v", first)
	}
	if first.Description != "Heating to 85 degrees" {
		t.Fatalf("unexpected description %q", first.Description)
	}
	second := repo.appends[1]
	if second.Type != models.EventTypeFault || second.Description != "No water in the kettle!" {
		t.Fatalf("unexpected entry: %+v", second)
	}
}

func TestJournal_RecordPropagatesRepoError(t *testing.T) {
	j := NewJournalService(&journalRepoStub{err: errors.New("disk full")}, nil, thermal.LocalePL, nil)
	err := j.record(context.Background(), thermal.Event{Kind: thermal.EventFault, Cause: thermal.CauseSensorFailure})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestJournal_RunConsumesBroker(t *testing.T) {
	repo := &journalRepoStub{}
	broker := status.NewBroker(16)
	j := NewJournalService(repo, broker, thermal.LocalePL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for broker.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("journal never subscribed")
		}
		time.Sleep(time.Millisecond)
	}

	broker.Publish(thermal.Event{Kind: thermal.EventModeChanged, Cause: thermal.CauseTargetSet, At: time.Now()})
	broker.Publish(thermal.Event{Kind: thermal.EventReading, Degrees: thermal.Some(50), At: time.Now()})
	broker.Publish(thermal.Event{Kind: thermal.EventFault, Cause: thermal.CauseSensorFailure, At: time.Now()})

	for {
		got, _ := repo.List(ctx, time.Time{}, time.Time{}, "")
		if len(got) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		time.Sleep(time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("journal did not stop")
	}
	if broker.Subscribers() != 0 {
		t.Fatalf("journal should cancel its subscription")
	}
}
