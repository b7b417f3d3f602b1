package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/boardlive/internal/domain"
)

type BoardRepo struct {
	pool *pgxpool.Pool
}

func NewBoardRepo(pool *pgxpool.Pool) *BoardRepo {
	return &BoardRepo{pool: pool}
}

func (r *BoardRepo) Create(ctx context.Context, b *domain.Board) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO boards (id, tenant_id, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.TenantID, b.Name, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Create: %w", err)
	}

	return nil
}

func (r *BoardRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Board, error) {
	var b domain.Board

	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, name, created_at, updated_at
		 FROM boards WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	).Scan(&b.ID, &b.TenantID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("boardRepo.GetByID: %w", err)
	}

	return &b, nil
}

func (r *BoardRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, name, created_at, updated_at
		 FROM boards WHERE tenant_id = $1
		 ORDER BY created_at
		 LIMIT 1000`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("boardRepo.List: %w", err)
	}
	defer rows.Close()

	var boards []*domain.Board
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(&b.ID, &b.TenantID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("boardRepo.List: scan: %w", err)
		}
		boards = append(boards, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("boardRepo.List: rows: %w", err)
	}

	return boards, nil
}

func (r *BoardRepo) Rename(ctx context.Context, tenantID, id uuid.UUID, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE boards SET name = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3`,
		name, tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("boardRepo.Rename: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Rename: %w", domain.ErrNotFound)
	}

	return nil
}
