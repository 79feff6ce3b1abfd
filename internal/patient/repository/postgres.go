package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itakarlapalli/subcentre/internal/patient"
)

const createPatientsTable = `
CREATE TABLE IF NOT EXISTS patients (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT        NOT NULL,
	age        INTEGER     NOT NULL CHECK (age >= 0),
	village    TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

const patientColumns = `id, name, age, village, created_at, updated_at`

// PostgresRepo is the relational Record Store. Ids come from the BIGSERIAL
// sequence; sequences are never rolled back, so ids are not reused even when
// an insert transaction aborts.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo makes sure the patients table exists.
func NewPostgresRepo(ctx context.Context, pool *pgxpool.Pool) (*PostgresRepo, error) {
	if _, err := pool.Exec(ctx, createPatientsTable); err != nil {
		return nil, fmt.Errorf("create patients table: %w", err)
	}
	return &PostgresRepo{pool: pool}, nil
}

func scanPatient(row pgx.Row) (*patient.Patient, error) {
	var p patient.Patient
	if err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Village, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (r *PostgresRepo) Create(ctx context.Context, f patient.Fields) (*patient.Patient, error) {
	var p *patient.Patient
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		ts := now()
		row := tx.QueryRow(ctx,
			`INSERT INTO patients (name, age, village, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $4) RETURNING `+patientColumns,
			f.Name, f.Age, f.Village, ts)
		var err error
		p, err = scanPatient(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]*patient.Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*patient.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, id int64, f patient.Fields) (*patient.Patient, error) {
	var p *patient.Patient
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE patients SET name = $2, age = $3, village = $4, updated_at = $5
			 WHERE id = $1 RETURNING `+patientColumns,
			id, f.Name, f.Age, f.Village, now())
		var err error
		p, err = scanPatient(row)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresRepo) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func (r *PostgresRepo) Close() error {
	r.pool.Close()
	return nil
}
