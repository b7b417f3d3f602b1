package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Board struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBoard creates a Board with validated required fields.
func NewBoard(tenantID uuid.UUID, name string) (*Board, error) {
	if tenantID == uuid.Nil {
		return nil, errors.New("board: tenant ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("board: name is required")
	}
	now := time.Now()
	return &Board{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type Column struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	BoardID   uuid.UUID
	Name      string
	Position  int
	CreatedAt time.Time
}

type BoardRepository interface {
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Board, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*Board, error)
	Rename(ctx context.Context, tenantID, id uuid.UUID, name string) error
}

type ColumnRepository interface {
	Create(ctx context.Context, c *Column) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Column, error)
	ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]*Column, error)
	// Delete removes the column and every task in it.
	Delete(ctx context.Context, tenantID, boardID, id uuid.UUID) error
}
