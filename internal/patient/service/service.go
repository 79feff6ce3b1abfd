package service

import (
	"context"
	"errors"

	"github.com/itakarlapalli/subcentre/internal/patient"
	"github.com/itakarlapalli/subcentre/internal/patient/repository"
	"github.com/itakarlapalli/subcentre/pkg/logger"
	"github.com/itakarlapalli/subcentre/pkg/metrics"
)

// Service defines the Record Store operations used by the handler layer.
// Errors are *patient.ValidationError, *patient.NotFoundError or
// *patient.StorageError.
type Service interface {
	List(ctx context.Context) ([]*patient.Patient, error)
	Create(ctx context.Context, in patient.Input) (*patient.Patient, error)
	Update(ctx context.Context, id int64, in patient.Input) (*patient.Patient, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// New returns a Service on top of any repository backend.
func New(repo repository.Repository) Service {
	return &recordService{repo: repo}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

type recordService struct {
	repo repository.Repository
}

func (s *recordService) List(ctx context.Context) ([]*patient.Patient, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail("list", 0, err)
	}
	metrics.PatientOps.WithLabelValues("list", "ok").Inc()
	return list, nil
}

func (s *recordService) Create(ctx context.Context, in patient.Input) (*patient.Patient, error) {
	f, err := in.Validate()
	if err != nil {
		metrics.PatientOps.WithLabelValues("create", "invalid").Inc()
		return nil, err
	}
	p, err := s.repo.Create(ctx, f)
	if err != nil {
		return nil, s.fail("create", 0, err)
	}
	metrics.PatientOps.WithLabelValues("create", "ok").Inc()
	logger.Infof("patient %d created", p.ID)
	return p, nil
}

func (s *recordService) Update(ctx context.Context, id int64, in patient.Input) (*patient.Patient, error) {
	f, err := in.Validate()
	if err != nil {
		metrics.PatientOps.WithLabelValues("update", "invalid").Inc()
		return nil, err
	}
	p, err := s.repo.Update(ctx, id, f)
	if err != nil {
		return nil, s.fail("update", id, err)
	}
	metrics.PatientOps.WithLabelValues("update", "ok").Inc()
	logger.Infof("patient %d updated", p.ID)
	return p, nil
}

func (s *recordService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail("delete", id, err)
	}
	metrics.PatientOps.WithLabelValues("delete", "ok").Inc()
	logger.Infof("patient %d deleted", id)
	return nil
}

func (s *recordService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return &patient.StorageError{Op: "ping", Err: err}
	}
	return nil
}

// fail maps a repository error onto the domain taxonomy and records it.
func (s *recordService) fail(op string, id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		metrics.PatientOps.WithLabelValues(op, "not_found").Inc()
		return &patient.NotFoundError{ID: id}
	}
	metrics.PatientOps.WithLabelValues(op, "error").Inc()
	logger.Errorf("patient %s failed: %v", op, err)
	return &patient.StorageError{Op: op, Err: err}
}
