package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart_kettle/internal/heater"
	"smart_kettle/internal/repository"
	"smart_kettle/internal/sensor"
	"smart_kettle/internal/status"
	"smart_kettle/internal/thermal"
)

type loopFixture struct {
	loop   *ControlLoopService
	kettle *KettleService
	probe  *sensor.Fake
	relay  *heater.Fake
	states *repository.StateMemory
	broker *status.Broker
}

func newLoopFixture(probe *sensor.Fake) *loopFixture {
	box := &thermal.CommandBox{}
	states := repository.NewStateMemory()
	broker := status.NewBroker(64)
	relay := heater.NewFake()
	return &loopFixture{
		loop:   NewControlLoopService(thermal.NewController(8*time.Second), probe, relay, box, states, broker, nil),
		kettle: NewKettleService(box, states, 20, 100, nil),
		probe:  probe,
		relay:  relay,
		states: states,
		broker: broker,
	}
}

var loopT0 = time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return loopT0.Add(time.Duration(ms) * time.Millisecond) }

func drain(sub *status.Subscription) []thermal.Event {
	var out []thermal.Event
	for {
		select {
		case e := <-sub.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func causesOf(events []thermal.Event) []thermal.Cause {
	var out []thermal.Cause
	for _, e := range events {
		if e.Cause != "" {
			out = append(out, e.Cause)
		}
	}
	return out
}

func TestControlLoop_HeatsToTarget(t *testing.T) {
	f := newLoopFixture(sensor.NewFake(20, 22, 25))
	ctx := context.Background()
	sub := f.broker.Subscribe()
	defer sub.Cancel()
	drain(sub)

	if err := f.kettle.SetTarget(ctx, 25); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}

	res := f.loop.step(ctx, at(0))
	if !res.CommandAccepted || !f.relay.On() {
		t.Fatalf("expected command accepted and heater on, got %+v", res.State)
	}

	f.loop.step(ctx, at(200))
	if !f.relay.On() {
		t.Fatalf("heater should stay on below target")
	}

	res = f.loop.step(ctx, at(400))
	if f.relay.On() || res.State.Mode != thermal.ModeIdle || res.State.Target.Valid {
		t.Fatalf("expected idle with heater off after reaching target, got %+v", res.State)
	}

	saved, _ := f.states.Load(ctx)
	if saved != res.State {
		t.Fatalf("snapshot not stored: %+v", saved)
	}

	got := causesOf(drain(sub))
	want := []thermal.Cause{thermal.CauseTargetSet, thermal.CauseHeatStarted, thermal.CauseRunComplete}
	if len(got) != len(want) {
		t.Fatalf("causes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("causes = %v, want %v", got, want)
		}
	}
	if len(f.relay.Calls) != 3 {
		t.Fatalf("heater must be driven every tick, got %d calls", len(f.relay.Calls))
	}
}

func TestControlLoop_NoLiquidCutoff(t *testing.T) {
	f := newLoopFixture(sensor.NewFake(21))
	ctx := context.Background()

	if err := f.kettle.SetTarget(ctx, 90); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}

	for ms := 0; ms <= 8000; ms += 200 {
		f.loop.step(ctx, at(ms))
	}
	if !f.relay.On() {
		t.Fatalf("heater must still be on at exactly the stall timeout")
	}

	res := f.loop.step(ctx, at(8200))
	if f.relay.On() {
		t.Fatalf("heater must be off after the stall timeout")
	}
	if !res.State.NoLiquid || res.State.Mode != thermal.ModeIdle {
		t.Fatalf("expected no-liquid fault, got %+v", res.State)
	}

	st, _ := f.kettle.stateRepo.Load(ctx)
	if got := thermal.Describe(st, thermal.LocalePL); got != "Brak wody w czajniku!" {
		t.Fatalf("unexpected status text %q", got)
	}
}

func TestControlLoop_SensorFailureKeepsCommandPending(t *testing.T) {
	probe := sensor.NewFake()
	probe.Push(sensor.Sample{Err: errors.New("crc")}, sensor.Sample{Degrees: 30})
	f := newLoopFixture(probe)
	ctx := context.Background()

	_ = f.kettle.SetTarget(ctx, 70)

	res := f.loop.step(ctx, at(0))
	if !res.State.SensorFault || res.CommandAccepted || f.relay.On() {
		t.Fatalf("unexpected state on failed poll: %+v", res.State)
	}

	res = f.loop.step(ctx, at(200))
	if res.State.SensorFault || !res.CommandAccepted || !f.relay.On() {
		t.Fatalf("command should apply on the first good reading: %+v", res.State)
	}
	if res.State.LastReading != thermal.Some(30) {
		t.Fatalf("unexpected reading: %v", res.State.LastReading)
	}
}

func TestControlLoop_HeaterErrorIsNotFatal(t *testing.T) {
	f := newLoopFixture(sensor.NewFake(20))
	f.relay.SetError = errors.New("relay stuck")
	ctx := context.Background()

	_ = f.kettle.SetTarget(ctx, 50)
	f.loop.step(ctx, at(0))
	f.loop.step(ctx, at(200))

	st, _ := f.states.Load(ctx)
	if !st.HeaterOn || st.Mode != thermal.ModeHeating {
		t.Fatalf("controller state should still advance: %+v", st)
	}
	if len(f.relay.Calls) != 2 {
		t.Fatalf("expected heater retried every tick, got %d", len(f.relay.Calls))
	}
}

func TestControlLoop_RunStopsAndSwitchesHeaterOff(t *testing.T) {
	f := newLoopFixture(sensor.NewFake(20))
	_ = f.kettle.SetTarget(context.Background(), 90)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.loop.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !f.relay.On() {
		if time.Now().After(deadline) {
			t.Fatalf("heater never switched on")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop")
	}
	if last, _ := f.relay.Last(); last || f.relay.On() {
		t.Fatalf("heater must be off after the loop exits")
	}
}
