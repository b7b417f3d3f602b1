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

const taskColumns = `id, tenant_id, board_id, column_id, title, description, position, priority,
		        assigned_to, created_at, updated_at`

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, tenant_id, board_id, column_id, title, description, position, priority, assigned_to, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.TenantID, t.BoardID, t.ColumnID, t.Title, t.Description,
		t.Position, t.Priority, t.AssignedTo,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Task, error) {
	var t domain.Task

	err := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	).Scan(
		&t.ID, &t.TenantID, &t.BoardID, &t.ColumnID, &t.Title, &t.Description,
		&t.Position, &t.Priority, &t.AssignedTo,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return &t, nil
}

func (r *TaskRepo) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks WHERE tenant_id = $1 AND board_id = $2
		 ORDER BY column_id, position, created_at
		 LIMIT 1000`,
		tenantID, boardID,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListByBoard: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.ListByBoard")
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET title = $1, description = $2, priority = $3, assigned_to = $4, updated_at = now()
		 WHERE tenant_id = $5 AND id = $6`,
		t.Title, t.Description, t.Priority, t.AssignedTo,
		t.TenantID, t.ID,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

// Move places the task at position in columnID. The target column must
// belong to the task's board.
func (r *TaskRepo) Move(ctx context.Context, tenantID, id, columnID uuid.UUID, position int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET column_id = $1, position = $2, updated_at = now()
		 WHERE tenant_id = $3 AND id = $4
		   AND EXISTS (
		       SELECT 1 FROM columns c
		       WHERE c.id = $1 AND c.tenant_id = $3 AND c.board_id = tasks.board_id
		   )`,
		columnID, position, tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Move: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Move: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.TenantID, &t.BoardID, &t.ColumnID, &t.Title, &t.Description,
			&t.Position, &t.Priority, &t.AssignedTo,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
