package client

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/itakarlapalli/subcentre/internal/patient"
	"github.com/itakarlapalli/subcentre/pkg/logger"
)

// State is the lifecycle of the Draft.
type State int

const (
	Idle State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	}
	return "unknown"
}

// Draft is the in-progress form. Age is kept as typed text and parsed on
// submit. EditTarget is set while an existing record is being edited.
type Draft struct {
	Name       string
	Age        string
	Village    string
	EditTarget *int64
}

// Input converts the draft into the request body sent to the server.
func (d Draft) Input() patient.Input {
	return patient.Input{Name: d.Name, Age: patient.ParseAge(d.Age), Village: d.Village}
}

// Draft field names accepted by SetField.
const (
	FieldName    = "name"
	FieldAge     = "age"
	FieldVillage = "village"
)

const listKey = "list"

// Synchronizer owns the local cache of the record list and the Draft. The
// cache is only ever replaced wholesale by a successful refresh.
type Synchronizer struct {
	api   API
	group singleflight.Group

	mu    sync.Mutex
	cache []*patient.Patient
	draft Draft
	state State
	busy  bool
	err   error
	// issued counts list requests started; applied is the ticket of the
	// response currently in the cache. Responses to tickets below floor were
	// issued before the last confirmed mutation and are discarded.
	issued  uint64
	applied uint64
	floor   uint64
}

func NewSynchronizer(api API) *Synchronizer {
	return &Synchronizer{api: api, cache: []*patient.Patient{}}
}

// Patients returns a copy of the cached list.
func (s *Synchronizer) Patients() []*patient.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*patient.Patient, len(s.cache))
	for i, p := range s.cache {
		cp := *p
		out[i] = &cp
	}
	return out
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err is the last surfaced error; it is cleared by the next success.
func (s *Synchronizer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Synchronizer) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.draft
	if d.EditTarget != nil {
		id := *d.EditTarget
		d.EditTarget = &id
	}
	return d
}

// Busy reports whether a mutation is outstanding.
func (s *Synchronizer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// SetField updates one Draft field and moves the Draft to Editing.
func (s *Synchronizer) SetField(field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrBusy
	}
	switch field {
	case FieldName:
		s.draft.Name = value
	case FieldAge:
		s.draft.Age = value
	case FieldVillage:
		s.draft.Village = value
	default:
		return fmt.Errorf("unknown draft field %q", field)
	}
	s.state = Editing
	return nil
}

// BeginEdit loads the cached record at index into the Draft and marks it as
// the edit target. Nothing is locked on the server.
func (s *Synchronizer) BeginEdit(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrBusy
	}
	if index < 0 || index >= len(s.cache) {
		return fmt.Errorf("no record at position %d", index)
	}
	p := s.cache[index]
	id := p.ID
	s.draft = Draft{Name: p.Name, Age: strconv.Itoa(p.Age), Village: p.Village, EditTarget: &id}
	s.state = Editing
	return nil
}

// CancelEdit discards the Draft.
func (s *Synchronizer) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Submitting {
		return ErrBusy
	}
	s.draft = Draft{}
	s.state = Idle
	return nil
}

// Submit sends the current Draft as an update when it has an edit target and
// as a create otherwise.
func (s *Synchronizer) Submit(ctx context.Context) (*patient.Patient, error) {
	d := s.Draft()
	if d.EditTarget != nil {
		return s.SubmitUpdate(ctx, *d.EditTarget, d)
	}
	return s.SubmitCreate(ctx, d)
}

// SubmitCreate validates d locally, creates the record and refreshes the
// cache. On failure d is kept as the Draft and the state returns to Editing.
// A failed follow-up refresh does not fail the call; it is reported by Err.
func (s *Synchronizer) SubmitCreate(ctx context.Context, d Draft) (*patient.Patient, error) {
	d.EditTarget = nil
	in, err := s.beginSubmit(d)
	if err != nil {
		return nil, err
	}
	p, err := s.api.Create(ctx, in)
	return s.finishSubmit(ctx, "create", p, err)
}

// SubmitUpdate is SubmitCreate for an existing record.
func (s *Synchronizer) SubmitUpdate(ctx context.Context, id int64, d Draft) (*patient.Patient, error) {
	d.EditTarget = &id
	in, err := s.beginSubmit(d)
	if err != nil {
		return nil, err
	}
	p, err := s.api.Update(ctx, id, in)
	return s.finishSubmit(ctx, "update", p, err)
}

func (s *Synchronizer) beginSubmit(d Draft) (patient.Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return patient.Input{}, ErrBusy
	}
	s.draft = d
	in := d.Input()
	if _, err := in.Validate(); err != nil {
		s.state = Editing
		s.err = err
		return patient.Input{}, err
	}
	s.busy = true
	s.state = Submitting
	return in, nil
}

func (s *Synchronizer) finishSubmit(ctx context.Context, op string, p *patient.Patient, err error) (*patient.Patient, error) {
	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.state = Editing
		s.err = err
		s.mu.Unlock()
		logger.Warnf("%s failed, draft kept: %v", op, err)
		return nil, err
	}
	s.state = Idle
	s.draft = Draft{}
	s.err = nil
	s.floor = s.issued + 1
	s.mu.Unlock()

	s.refreshAfterMutation(ctx)
	return p, nil
}

// Remove deletes id on the server and then refreshes. The cache is not
// touched until the server confirms.
func (s *Synchronizer) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.mu.Unlock()

	err := s.api.Delete(ctx, id)

	s.mu.Lock()
	s.busy = false
	if err != nil {
		s.err = err
		s.mu.Unlock()
		return err
	}
	s.err = nil
	s.floor = s.issued + 1
	s.mu.Unlock()

	s.refreshAfterMutation(ctx)
	return nil
}

// Refresh fetches the list and replaces the cache. Concurrent calls share one
// request. On failure the previous cache is kept and the error is surfaced.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do(listKey, func() (interface{}, error) {
		return nil, s.fetch(ctx)
	})
	return err
}

// refreshAfterMutation must observe the mutation, so it never joins a list
// request that was already in flight.
func (s *Synchronizer) refreshAfterMutation(ctx context.Context) {
	s.group.Forget(listKey)
	if err := s.Refresh(ctx); err != nil {
		logger.Warnf("refresh after mutation failed, keeping cached list: %v", err)
	}
}

func (s *Synchronizer) fetch(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	ticket := s.issued
	s.mu.Unlock()

	list, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket < s.applied || ticket < s.floor {
		// issued before a newer cached response or a confirmed mutation
		return err
	}
	if err != nil {
		s.err = err
		return err
	}
	s.cache = list
	s.applied = ticket
	s.err = nil
	return nil
}
