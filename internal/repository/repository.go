package repository

import (
	"context"
	"database/sql"
	"time"

	"smart_kettle/internal/models"
	"smart_kettle/internal/thermal"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// StateRepo holds the latest controller snapshot for readers outside the
// control loop.
type StateRepo interface {
	Save(ctx context.Context, s thermal.State) error
	Load(ctx context.Context) (thermal.State, error)
}

// EventRepo is the append-only run journal.
type EventRepo interface {
	Append(ctx context.Context, e models.KettleEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.KettleEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateMemory(),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
