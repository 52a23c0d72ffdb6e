package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/inferlab/epbox/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RunStore struct {
	db *pgxpool.Pool
}

func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) Create(ctx context.Context, r *domain.Run) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO runs (id, label, count, lambda_mean, lambda_variance, log_evidence, sweeps, converged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		r.ID, r.Label, r.Count, r.LambdaMean, r.LambdaVariance, r.LogEvidence, r.Sweeps, r.Converged,
	).Scan(&r.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *RunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	r := &domain.Run{}
	err := s.db.QueryRow(ctx,
		`SELECT id, label, count, lambda_mean, lambda_variance, log_evidence, sweeps, converged, created_at
		 FROM runs WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Label, &r.Count, &r.LambdaMean, &r.LambdaVariance, &r.LogEvidence, &r.Sweeps, &r.Converged, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *RunStore) List(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, label, count, lambda_mean, lambda_variance, log_evidence, sweeps, converged, created_at
		 FROM runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var r domain.Run
		if err := rows.Scan(&r.ID, &r.Label, &r.Count, &r.LambdaMean, &r.LambdaVariance, &r.LogEvidence, &r.Sweeps, &r.Converged, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
