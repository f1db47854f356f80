package service

import (
	"context"
	"time"

	"smart_kettle/internal/heater"
	"smart_kettle/internal/logger"
	"smart_kettle/internal/models"
	"smart_kettle/internal/repository"
	"smart_kettle/internal/sensor"
	"smart_kettle/internal/status"
	"smart_kettle/internal/thermal"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Kettle accepts user commands. Commands are queued for the control loop,
// so a nil error means "accepted for the next tick", not "applied".
type Kettle interface {
	SetTarget(ctx context.Context, degrees int) error
	StartTest(ctx context.Context, degrees int) error
	Limits() (minTarget, maxTarget int)
}

// Monitoring exposes the latest controller snapshot.
type Monitoring interface {
	GetStatus(ctx context.Context) (models.KettleStatus, error)
}

// EventLog exposes the run journal with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.KettleEvent, error)
}

// StatusFeed hands out status subscriptions to observers.
type StatusFeed interface {
	Subscribe() *status.Subscription
}

// EventPublisher receives every event the controller emits.
type EventPublisher interface {
	Publish(e thermal.Event)
}

// ControlLoop drives the controller. Stop via context cancellation.
type ControlLoop interface {
	Run(ctx context.Context, tick time.Duration)
}

// Journal records mode changes and faults until ctx is cancelled.
type Journal interface {
	Run(ctx context.Context)
}

// Service aggregates the sub-services used by the HTTP layer and main.
type Service struct {
	Kettle
	Monitoring
	EventLog
	Authorization

	Feed    StatusFeed
	Loop    ControlLoop
	Journal Journal
}

// Deps carries the hardware and tuning the services are built from.
type Deps struct {
	Source       sensor.Source
	Heater       heater.Output
	Broker       *status.Broker
	StallTimeout time.Duration
	MinTarget    int
	MaxTarget    int
	Locale       thermal.Locale
	SigningKey   string
	TokenTTL     time.Duration
	Log          *logger.Logger
}

// NewService wires repositories and hardware into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	box := &thermal.CommandBox{}
	return &Service{
		Kettle:        NewKettleService(box, repos.StateRepo, deps.MinTarget, deps.MaxTarget, log.Named("kettle")),
		Monitoring:    NewMonitoringService(repos.StateRepo, deps.Locale),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, deps.SigningKey, deps.TokenTTL),
		Feed:          deps.Broker,
		Loop: NewControlLoopService(
			thermal.NewController(deps.StallTimeout),
			deps.Source, deps.Heater, box, repos.StateRepo, deps.Broker, log.Named("loop"),
		),
		Journal: NewJournalService(repos.EventRepo, deps.Broker, deps.Locale, log.Named("journal")),
	}
}
