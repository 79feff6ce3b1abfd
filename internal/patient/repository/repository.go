package repository

import (
	"context"
	"errors"
	"time"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

var (
	ErrNotFound = errors.New("patient not found")
)

// Repository is the Record Store backend contract. Implementations assign ids
// that strictly increase and are never reused, and List returns records in
// canonical order (newest first).
type Repository interface {
	List(ctx context.Context) ([]*patient.Patient, error)
	Create(ctx context.Context, f patient.Fields) (*patient.Patient, error)
	Update(ctx context.Context, id int64, f patient.Fields) (*patient.Patient, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	Close() error
}

// now is truncated to milliseconds so every backend (Mongo and Postgres
// included) round-trips the same timestamp.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func clone(p *patient.Patient) *patient.Patient {
	c := *p
	return &c
}
