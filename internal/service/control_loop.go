package service

import (
	"context"
	"time"

	"smart_kettle/internal/heater"
	"smart_kettle/internal/logger"
	"smart_kettle/internal/repository"
	"smart_kettle/internal/sensor"
	"smart_kettle/internal/thermal"
)

// DefaultTick is the control period.
const DefaultTick = 200 * time.Millisecond

// ControlLoopService is the only goroutine that touches the controller.
type ControlLoopService struct {
	ctrl      *thermal.Controller
	source    sensor.Source
	heater    heater.Output
	box       *thermal.CommandBox
	stateRepo repository.StateRepo
	events    EventPublisher
	log       *logger.Logger

	heaterFailing bool
}

func NewControlLoopService(
	ctrl *thermal.Controller,
	source sensor.Source,
	out heater.Output,
	box *thermal.CommandBox,
	stateRepo repository.StateRepo,
	events EventPublisher,
	log *logger.Logger,
) *ControlLoopService {
	if out == nil {
		out = heater.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ControlLoopService{
		ctrl:      ctrl,
		source:    source,
		heater:    out,
		box:       box,
		stateRepo: stateRepo,
		events:    events,
		log:       log,
	}
}

// Run ticks until ctx is cancelled, then drives the heater off.
func (s *ControlLoopService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultTick
	}
	s.log.Infow("control_loop_started", "tick", tick, "stall_timeout", s.ctrl.StallTimeout())

	t := time.NewTicker(tick)
	defer t.Stop()
	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.step(ctx, now)
		}
	}
}

// step runs one control period: poll, take a pending command, tick the
// controller, drive the heater, store the snapshot, publish events.
func (s *ControlLoopService) step(ctx context.Context, now time.Time) thermal.Result {
	degrees, err := s.source.Poll(ctx)
	in := thermal.Input{Now: now, Degrees: degrees, Err: err}
	if err == nil {
		if cmd, ok := s.box.Take(); ok {
			in.Command = &cmd
		}
	} else {
		s.log.Debugw("sensor_poll_failed", "err", err)
	}

	res := s.ctrl.Tick(in)
	if in.Command != nil && !res.CommandAccepted {
		s.log.Infow("command_ignored", "kind", in.Command.Kind, "degrees", in.Command.Degrees, "mode", res.State.Mode)
	}

	s.drive(res.State.HeaterOn)

	if err := s.stateRepo.Save(ctx, res.State); err != nil && ctx.Err() == nil {
		s.log.Errorw("state_save_failed", "err", err)
	}

	for _, e := range res.Events {
		s.logEvent(e)
		if s.events != nil {
			s.events.Publish(e)
		}
	}
	return res
}

// drive re-asserts the heater level every tick so a missed write is
// corrected on the next period.
func (s *ControlLoopService) drive(on bool) {
	if err := s.heater.Set(on); err != nil {
		if !s.heaterFailing {
			s.log.Errorw("heater_set_failed", "on", on, "err", err)
		}
		s.heaterFailing = true
		return
	}
	if s.heaterFailing {
		s.log.Infow("heater_recovered", "on", on)
	}
	s.heaterFailing = false
}

func (s *ControlLoopService) logEvent(e thermal.Event) {
	switch e.Kind {
	case thermal.EventModeChanged:
		s.log.Infow(string(e.Cause),
			"mode", e.State.Mode,
			"target", e.State.Target,
			"reading", e.State.LastReading,
			"heater_on", e.State.HeaterOn,
		)
	case thermal.EventFault:
		s.log.Warnw(string(e.Cause),
			"reading", e.State.LastReading,
			"unchanged_for", e.State.UnchangedFor,
		)
	}
}

func (s *ControlLoopService) shutdown() {
	if err := s.heater.Set(false); err != nil {
		s.log.Errorw("heater_off_failed", "err", err)
	}
	s.log.Infow("control_loop_stopped")
}
