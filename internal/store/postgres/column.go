package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/boardlive/internal/domain"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type ColumnRepo struct {
	pool *pgxpool.Pool
}

func NewColumnRepo(pool *pgxpool.Pool) *ColumnRepo {
	return &ColumnRepo{pool: pool}
}

// Create inserts c. A second column at the same board position is a
// conflict.
func (r *ColumnRepo) Create(ctx context.Context, c *domain.Column) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO columns (id, tenant_id, board_id, name, position, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.TenantID, c.BoardID, c.Name, c.Position, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("columnRepo.Create: %w", domain.ErrConflict)
		}
		return fmt.Errorf("columnRepo.Create: %w", err)
	}

	return nil
}

func (r *ColumnRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Column, error) {
	var c domain.Column

	err := r.pool.QueryRow(ctx,
		`SELECT id, tenant_id, board_id, name, position, created_at
		 FROM columns WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	).Scan(&c.ID, &c.TenantID, &c.BoardID, &c.Name, &c.Position, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("columnRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("columnRepo.GetByID: %w", err)
	}

	return &c, nil
}

func (r *ColumnRepo) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]*domain.Column, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, board_id, name, position, created_at
		 FROM columns WHERE tenant_id = $1 AND board_id = $2
		 ORDER BY position`,
		tenantID, boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("columnRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	var columns []*domain.Column
	for rows.Next() {
		var c domain.Column
		if err := rows.Scan(&c.ID, &c.TenantID, &c.BoardID, &c.Name, &c.Position, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("columnRepo.ListByBoard: scan: %w", err)
		}
		columns = append(columns, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("columnRepo.ListByBoard: rows: %w", err)
	}

	return columns, nil
}

// Delete removes the column and its tasks in one transaction.
func (r *ColumnRepo) Delete(ctx context.Context, tenantID, boardID, id uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM tasks WHERE tenant_id = $1 AND board_id = $2 AND column_id = $3`,
			tenantID, boardID, id,
		); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM columns WHERE tenant_id = $1 AND board_id = $2 AND id = $3`,
			tenantID, boardID, id,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("columnRepo.Delete: %w", err)
	}

	return nil
}
