package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/boardlive/internal/domain"
)

type CreateBoardInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"200" doc:"Board name"`
	}
}

type CreateBoardOutput struct {
	Body *domain.Board
}

type ListBoardsOutput struct {
	Body []*domain.Board
}

type GetBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

// BoardView is a full board snapshot. Clients load it once, then apply live
// events from /ws/boards/{boardID}.
type BoardView struct {
	Board   *domain.Board    `json:"board"`
	Columns []*domain.Column `json:"columns"`
	Tasks   []*domain.Task   `json:"tasks"`
}

type GetBoardOutput struct {
	Body *BoardView
}

type RenameBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Name string `json:"name" minLength:"1" maxLength:"200" doc:"New board name"`
	}
}

type RenameBoardOutput struct {
	Body *domain.Board
}

func RegisterBoardRoutes(api huma.API, store DataStore, events EventPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "create-board",
		Method:      http.MethodPost,
		Path:        "/boards",
		Summary:     "Create a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *CreateBoardInput) (*CreateBoardOutput, error) {
		tenantID, err := writerTenant(ctx)
		if err != nil {
			return nil, err
		}

		b, err := domain.NewBoard(tenantID, input.Body.Name)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		// Nobody can be watching a board that did not exist, so there is
		// nothing to announce.
		if err := store.Boards().Create(ctx, b); err != nil {
			return nil, huma.Error500InternalServerError("failed to create board", err)
		}

		return &CreateBoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/boards",
		Summary:     "List boards",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, _ *struct{}) (*ListBoardsOutput, error) {
		tenantID, err := tenantFrom(ctx)
		if err != nil {
			return nil, err
		}

		boards, err := store.Boards().List(ctx, tenantID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list boards", err)
		}
		if boards == nil {
			boards = []*domain.Board{}
		}

		return &ListBoardsOutput{Body: boards}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}",
		Summary:     "Get a board with its columns and tasks",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *GetBoardInput) (*GetBoardOutput, error) {
		tenantID, err := tenantFrom(ctx)
		if err != nil {
			return nil, err
		}

		b, err := loadBoard(ctx, store, tenantID, input.BoardID)
		if err != nil {
			return nil, err
		}

		columns, err := store.Columns().ListByBoard(ctx, tenantID, b.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list columns", err)
		}
		tasks, err := store.Tasks().ListByBoard(ctx, tenantID, b.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		view := &BoardView{
			Board:   b,
			Columns: make([]*domain.Column, 0, len(columns)),
			Tasks:   make([]*domain.Task, 0, len(tasks)),
		}
		view.Columns = append(view.Columns, columns...)
		view.Tasks = append(view.Tasks, tasks...)

		return &GetBoardOutput{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rename-board",
		Method:      http.MethodPatch,
		Path:        "/boards/{boardID}",
		Summary:     "Rename a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *RenameBoardInput) (*RenameBoardOutput, error) {
		tenantID, err := writerTenant(ctx)
		if err != nil {
			return nil, err
		}

		name := strings.TrimSpace(input.Body.Name)
		if name == "" {
			return nil, huma.Error400BadRequest("board: name is required")
		}

		b, err := loadBoard(ctx, store, tenantID, input.BoardID)
		if err != nil {
			return nil, err
		}

		if err := store.Boards().Rename(ctx, tenantID, b.ID, name); err != nil {
			return nil, huma.Error500InternalServerError("failed to rename board", err)
		}
		b.Name = name

		announce(ctx, events, b.ID, domain.BoardRenamed{Name: name})

		return &RenameBoardOutput{Body: b}, nil
	})
}
