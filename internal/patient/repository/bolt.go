package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

var patientsBucket = []byte("patients")

// BoltRepo is an embedded, transactional Record Store. Ids come from the
// bucket sequence, which bbolt persists and never rewinds.
type BoltRepo struct {
	db *bolt.DB
}

// NewBoltRepo wraps an open database and makes sure the bucket exists.
func NewBoltRepo(db *bolt.DB) (*BoltRepo, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(patientsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bolt bucket: %w", err)
	}
	return &BoltRepo{db: db}, nil
}

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func (r *BoltRepo) Create(_ context.Context, f patient.Fields) (*patient.Patient, error) {
	var p *patient.Patient
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(patientsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		p = &patient.Patient{ID: int64(seq), CreatedAt: now()}
		f.Apply(p)
		p.UpdatedAt = p.CreatedAt
		buf, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put(itob(p.ID), buf)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *BoltRepo) List(_ context.Context) ([]*patient.Patient, error) {
	out := []*patient.Patient{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(patientsBucket).ForEach(func(_, v []byte) error {
			var p patient.Patient
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			out = append(out, &p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	patient.SortNewestFirst(out)
	return out, nil
}

func (r *BoltRepo) Update(_ context.Context, id int64, f patient.Fields) (*patient.Patient, error) {
	var p patient.Patient
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(patientsBucket)
		v := b.Get(itob(id))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &p); err != nil {
			return err
		}
		f.Apply(&p)
		p.UpdatedAt = now()
		buf, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		return b.Put(itob(id), buf)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BoltRepo) Delete(_ context.Context, id int64) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(patientsBucket)
		if b.Get(itob(id)) == nil {
			return ErrNotFound
		}
		return b.Delete(itob(id))
	})
}

func (r *BoltRepo) Ping(context.Context) error {
	return r.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(patientsBucket) == nil {
			return fmt.Errorf("bolt bucket %q missing", patientsBucket)
		}
		return nil
	})
}

func (r *BoltRepo) Close() error { return r.db.Close() }
