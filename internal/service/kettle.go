package service

import (
	"context"
	"errors"
	"fmt"

	"smart_kettle/internal/logger"
	"smart_kettle/internal/repository"
	"smart_kettle/internal/thermal"
)

var (
	ErrTargetOutOfRange = errors.New("target temperature out of range")
	ErrTestInProgress   = errors.New("test run in progress")
)

// KettleService validates user commands and hands them to the control loop.
type KettleService struct {
	box       *thermal.CommandBox
	stateRepo repository.StateRepo
	minTarget int
	maxTarget int
	log       *logger.Logger
}

func NewKettleService(box *thermal.CommandBox, stateRepo repository.StateRepo, minTarget, maxTarget int, log *logger.Logger) *KettleService {
	if log == nil {
		log = logger.Nop()
	}
	return &KettleService{
		box:       box,
		stateRepo: stateRepo,
		minTarget: minTarget,
		maxTarget: maxTarget,
		log:       log,
	}
}

// SetTarget requests a plain heating run.
func (s *KettleService) SetTarget(ctx context.Context, degrees int) error {
	return s.submit(ctx, thermal.Command{Kind: thermal.SetTarget, Degrees: degrees})
}

// StartTest requests a timed test run.
func (s *KettleService) StartTest(ctx context.Context, degrees int) error {
	return s.submit(ctx, thermal.Command{Kind: thermal.StartTest, Degrees: degrees})
}

// Limits returns the accepted target range.
func (s *KettleService) Limits() (int, int) {
	return s.minTarget, s.maxTarget
}

func (s *KettleService) submit(ctx context.Context, cmd thermal.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if cmd.Degrees < s.minTarget || cmd.Degrees > s.maxTarget {
		return fmt.Errorf("%w: %d not in %d..%d", ErrTargetOutOfRange, cmd.Degrees, s.minTarget, s.maxTarget)
	}

	// Early answer for callers; the controller applies the same gate on the tick.
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if st.Mode == thermal.ModeTesting {
		return ErrTestInProgress
	}

	if replaced := s.box.Put(cmd); replaced {
		s.log.Debugw("command_replaced", "kind", cmd.Kind, "degrees", cmd.Degrees)
	}
	s.log.Infow("command_queued", "kind", cmd.Kind, "degrees", cmd.Degrees)
	return nil
}
