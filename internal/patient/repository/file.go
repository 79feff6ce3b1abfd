package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

// fileDocument is the on-disk layout of the flat-file store. NextID is
// persisted so ids of deleted records are never handed out again.
type fileDocument struct {
	NextID   int64              `json:"nextId"`
	Patients []*patient.Patient `json:"patients"`
}

// legacyRow is a record from the older bare-array file format, where ids are
// millisecond timestamps and ages were stored as form strings.
type legacyRow struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Age       patient.Age `json:"age"`
	Village   string      `json:"village"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`
}

// FileRepo stores every record in a single JSON file. Each mutation reads the
// whole file, applies the change and replaces the file atomically, so a crash
// leaves either the old or the new document on disk. The mutex serialises
// writers inside one process only; run one server per file.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

// NewFileRepo opens (creating if needed) the data file at path and checks it
// decodes, so a damaged or unconvertible file stops startup.
func NewFileRepo(path string) (*FileRepo, error) {
	r := &FileRepo{path: path}
	if err := r.ensure(); err != nil {
		return nil, err
	}
	if _, err := r.read(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) ensure() error {
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	return r.write(&fileDocument{NextID: 1, Patients: []*patient.Patient{}})
}

func (r *FileRepo) read() (*fileDocument, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return &fileDocument{NextID: 1}, nil
	}
	if b[0] == '[' {
		return decodeLegacy(b)
	}
	var doc fileDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	for _, p := range doc.Patients {
		if p.ID >= doc.NextID {
			doc.NextID = p.ID + 1
		}
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return &doc, nil
}

func decodeLegacy(b []byte) (*fileDocument, error) {
	var rows []legacyRow
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode legacy patients file: %w", err)
	}
	doc := &fileDocument{NextID: 1, Patients: make([]*patient.Patient, 0, len(rows))}
	for _, row := range rows {
		age, ok := row.Age.Value()
		if !ok || age < 0 || age > patient.MaxAge {
			return nil, fmt.Errorf("legacy patient %d: age %q is not a whole number; correct it in the data file", row.ID, row.Age.String())
		}
		p := &patient.Patient{ID: row.ID, Name: row.Name, Age: age, Village: row.Village}
		if row.CreatedAt != nil {
			p.CreatedAt = *row.CreatedAt
			p.UpdatedAt = *row.CreatedAt
		}
		doc.Patients = append(doc.Patients, p)
		if row.ID >= doc.NextID {
			doc.NextID = row.ID + 1
		}
	}
	return doc, nil
}

func (r *FileRepo) write(doc *fileDocument) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(r.path, b, 0o644)
}

func (r *FileRepo) Create(_ context.Context, f patient.Fields) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	p := &patient.Patient{ID: doc.NextID, CreatedAt: now()}
	f.Apply(p)
	p.UpdatedAt = p.CreatedAt
	doc.NextID++
	doc.Patients = append(doc.Patients, p)
	if err := r.write(doc); err != nil {
		return nil, err
	}
	return clone(p), nil
}

func (r *FileRepo) List(_ context.Context) ([]*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	out := doc.Patients
	if out == nil {
		out = []*patient.Patient{}
	}
	patient.SortNewestFirst(out)
	return out, nil
}

func (r *FileRepo) Update(_ context.Context, id int64, f patient.Fields) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.read()
	if err != nil {
		return nil, err
	}
	for _, p := range doc.Patients {
		if p.ID != id {
			continue
		}
		f.Apply(p)
		p.UpdatedAt = now()
		if err := r.write(doc); err != nil {
			return nil, err
		}
		return clone(p), nil
	}
	return nil, ErrNotFound
}

func (r *FileRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.read()
	if err != nil {
		return err
	}
	kept := make([]*patient.Patient, 0, len(doc.Patients))
	for _, p := range doc.Patients {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(doc.Patients) {
		return ErrNotFound
	}
	doc.Patients = kept
	return r.write(doc)
}

// Ping verifies the data file is still readable and well-formed.
func (r *FileRepo) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.read()
	return err
}

func (r *FileRepo) Close() error { return nil }
