package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/boardlive/internal/domain"
)

type CreateTaskInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		ColumnID    uuid.UUID  `json:"column_id" doc:"Column the task starts in"`
		Title       string     `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description string     `json:"description,omitempty" doc:"Task description"`
		Priority    int        `json:"priority,omitempty" doc:"Task priority (0=default)"`
		AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" doc:"Assigned user ID"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *domain.Task
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Title       string     `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Description string     `json:"description,omitempty" doc:"Task description"`
		Priority    *int       `json:"priority,omitempty" doc:"Task priority"`
		AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" doc:"Assigned user ID"`
	}
}

type UpdateTaskOutput struct {
	Body *domain.Task
}

type MoveTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		ColumnID uuid.UUID `json:"column_id" doc:"Target column"`
		Position int       `json:"position" minimum:"0" doc:"Zero-based position in the target column"`
	}
}

type MoveTaskOutput struct {
	Body *domain.Task
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

func RegisterTaskRoutes(api huma.API, store DataStore, events EventPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/tasks",
		Summary:     "Create a task on a board",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		tenantID, err := writerTenant(ctx)
		if err != nil {
			return nil, err
		}

		if _, err := loadBoard(ctx, store, tenantID, input.BoardID); err != nil {
			return nil, err
		}
		column, err := loadColumn(ctx, store, tenantID, input.BoardID, input.Body.ColumnID)
		if err != nil {
			return nil, err
		}

		existing, err := store.Tasks().ListByBoard(ctx, tenantID, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}
		position := 0
		for _, t := range existing {
			if t.ColumnID == column.ID {
				position++
			}
		}

		now := time.Now()
		t := &domain.Task{
			ID:          uuid.New(),
			TenantID:    tenantID,
			BoardID:     input.BoardID,
			ColumnID:    column.ID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Position:    position,
			Priority:    input.Body.Priority,
			AssignedTo:  input.Body.AssignedTo,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		announce(ctx, events, t.BoardID, domain.TaskCreated{Task: t.Snapshot()})

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		tenantID, err := tenantFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := loadTask(ctx, store, tenantID, input.ID)
		if err != nil {
			return nil, err
		}

		return &GetTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		tenantID, err := writerTenant(ctx)
		if err != nil {
			return nil, err
		}

		existing, err := loadTask(ctx, store, tenantID, input.ID)
		if err != nil {
			return nil, err
		}

		if input.Body.Title != "" {
			existing.Title = input.Body.Title
		}
		if input.Body.Description != "" {
			existing.Description = input.Body.Description
		}
		if input.Body.Priority != nil {
			existing.Priority = *input.Body.Priority
		}
		if input.Body.AssignedTo != nil {
			existing.AssignedTo = input.Body.AssignedTo
		}
		existing.UpdatedAt = time.Now()

		if err := store.Tasks().Update(ctx, existing); err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		announce(ctx, events, existing.BoardID, domain.TaskUpdated{Task: existing.Snapshot()})

		return &UpdateTaskOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/move",
		Summary:     "Move a task to a column and position",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *MoveTaskInput) (*MoveTaskOutput, error) {
		tenantID, err := writerTenant(ctx)
		if err != nil {
			return nil, err
		}

		existing, err := loadTask(ctx, store, tenantID, input.ID)
		if err != nil {
			return nil, err
		}
		if _, err := loadColumn(ctx, store, tenantID, existing.BoardID, input.Body.ColumnID); err != nil {
			return nil, err
		}

		from := existing.ColumnID
		if err := store.Tasks().Move(ctx, tenantID, existing.ID, input.Body.ColumnID, input.Body.Position); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to move task", err)
		}
		existing.ColumnID = input.Body.ColumnID
		existing.Position = input.Body.Position
		existing.UpdatedAt = time.Now()

		announce(ctx, events, existing.BoardID, domain.TaskMoved{
			TaskID:   existing.ID.String(),
			From:     from.String(),
			To:       existing.ColumnID.String(),
			Position: existing.Position,
		})

		return &MoveTaskOutput{Body: existing}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		tenantID, err := writerTenant(ctx)
		if err != nil {
			return nil, err
		}

		existing, err := loadTask(ctx, store, tenantID, input.ID)
		if err != nil {
			return nil, err
		}

		if err := store.Tasks().Delete(ctx, tenantID, existing.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		announce(ctx, events, existing.BoardID, domain.TaskDeleted{
			TaskID:   existing.ID.String(),
			ColumnID: existing.ColumnID.String(),
		})

		return nil, nil
	})
}
