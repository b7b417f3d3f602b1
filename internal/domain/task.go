package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	BoardID     uuid.UUID
	ColumnID    uuid.UUID
	Title       string
	Description string
	Position    int
	Priority    int
	AssignedTo  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Snapshot returns the wire representation carried by task events.
func (t *Task) Snapshot() TaskSnapshot {
	s := TaskSnapshot{
		ID:          t.ID.String(),
		ColumnID:    t.ColumnID.String(),
		Title:       t.Title,
		Description: t.Description,
		Position:    t.Position,
		Priority:    t.Priority,
	}
	if t.AssignedTo != nil {
		s.AssignedTo = t.AssignedTo.String()
	}
	return s
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Task, error)
	ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Move(ctx context.Context, tenantID, id, columnID uuid.UUID, position int) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
