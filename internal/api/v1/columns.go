package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/boardlive/internal/domain"
)

type CreateColumnInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Name     string `json:"name" minLength:"1" maxLength:"100" doc:"Column name"`
		Position *int   `json:"position,omitempty" minimum:"0" doc:"Zero-based position; appended when omitted"`
	}
}

type CreateColumnOutput struct {
	Body *domain.Column
}

type DeleteColumnInput struct {
	BoardID  uuid.UUID `path:"boardID" doc:"Board ID"`
	ColumnID uuid.UUID `path:"columnID" doc:"Column ID"`
}

func RegisterColumnRoutes(api huma.API, store DataStore, events EventPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "create-column",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/columns",
		Summary:     "Add a column to a board",
		Tags:        []string{"Columns"},
	}, func(ctx context.Context, input *CreateColumnInput) (*CreateColumnOutput, error) {
		tenantID, err := writerTenant(ctx)
		if err != nil {
			return nil, err
		}

		name := strings.TrimSpace(input.Body.Name)
		if name == "" {
			return nil, huma.Error400BadRequest("column: name is required")
		}

		b, err := loadBoard(ctx, store, tenantID, input.BoardID)
		if err != nil {
			return nil, err
		}

		var position int
		if input.Body.Position != nil {
			position = *input.Body.Position
		} else {
			existing, err := store.Columns().ListByBoard(ctx, tenantID, b.ID)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to list columns", err)
			}
			position = len(existing)
		}

		c := &domain.Column{
			ID:        uuid.New(),
			TenantID:  tenantID,
			BoardID:   b.ID,
			Name:      name,
			Position:  position,
			CreatedAt: time.Now(),
		}
		if err := store.Columns().Create(ctx, c); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("a column already occupies that position")
			}
			return nil, huma.Error500InternalServerError("failed to create column", err)
		}

		announce(ctx, events, b.ID, domain.ColumnCreated{
			ColumnID: c.ID.String(),
			Name:     c.Name,
			Position: c.Position,
		})

		return &CreateColumnOutput{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-column",
		Method:      http.MethodDelete,
		Path:        "/boards/{boardID}/columns/{columnID}",
		Summary:     "Delete a column and its tasks",
		Tags:        []string{"Columns"},
	}, func(ctx context.Context, input *DeleteColumnInput) (*struct{}, error) {
		tenantID, err := writerTenant(ctx)
		if err != nil {
			return nil, err
		}

		if err := store.Columns().Delete(ctx, tenantID, input.BoardID, input.ColumnID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("column not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete column", err)
		}

		announce(ctx, events, input.BoardID, domain.ColumnDeleted{ColumnID: input.ColumnID.String()})

		return nil, nil
	})
}
