package v1_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/boardlive/internal/domain"
	"github.com/gosuda/boardlive/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject tenant/user/role into context for DoCtx
// ---------------------------------------------------------------------------

func tenantCtx(tenantID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyTenantID, tenantID)
	return ctx
}

func roleCtx(tenantID uuid.UUID, role string) context.Context {
	ctx := tenantCtx(tenantID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUserRole, role)
	return ctx
}

func memberCtx(tenantID uuid.UUID) context.Context {
	return roleCtx(tenantID, middleware.RoleMember)
}

func viewerCtx(tenantID uuid.UUID) context.Context {
	return roleCtx(tenantID, middleware.RoleViewer)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	boards  domain.BoardRepository
	columns domain.ColumnRepository
	tasks   domain.TaskRepository
}

func (m *mockDataStore) Boards() domain.BoardRepository   { return m.boards }
func (m *mockDataStore) Columns() domain.ColumnRepository { return m.columns }
func (m *mockDataStore) Tasks() domain.TaskRepository     { return m.tasks }

// ---------------------------------------------------------------------------
// Mock BoardRepository
// ---------------------------------------------------------------------------

type mockBoardRepo struct {
	createFunc  func(ctx context.Context, b *domain.Board) error
	getByIDFunc func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Board, error)
	listFunc    func(ctx context.Context, tenantID uuid.UUID) ([]*domain.Board, error)
	renameFunc  func(ctx context.Context, tenantID, id uuid.UUID, name string) error
}

func (m *mockBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	return m.createFunc(ctx, b)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Board, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockBoardRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*domain.Board, error) {
	return m.listFunc(ctx, tenantID)
}

func (m *mockBoardRepo) Rename(ctx context.Context, tenantID, id uuid.UUID, name string) error {
	return m.renameFunc(ctx, tenantID, id, name)
}

// boardsWith returns a repo whose GetByID knows exactly one board.
func boardsWith(b *domain.Board) *mockBoardRepo {
	return &mockBoardRepo{
		getByIDFunc: func(_ context.Context, tenantID, id uuid.UUID) (*domain.Board, error) {
			if tenantID != b.TenantID || id != b.ID {
				return nil, domain.ErrNotFound
			}
			cp := *b
			return &cp, nil
		},
	}
}

// ---------------------------------------------------------------------------
// Mock ColumnRepository
// ---------------------------------------------------------------------------

type mockColumnRepo struct {
	createFunc      func(ctx context.Context, c *domain.Column) error
	getByIDFunc     func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Column, error)
	listByBoardFunc func(ctx context.Context, tenantID, boardID uuid.UUID) ([]*domain.Column, error)
	deleteFunc      func(ctx context.Context, tenantID, boardID, id uuid.UUID) error
}

func (m *mockColumnRepo) Create(ctx context.Context, c *domain.Column) error {
	return m.createFunc(ctx, c)
}

func (m *mockColumnRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Column, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockColumnRepo) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]*domain.Column, error) {
	return m.listByBoardFunc(ctx, tenantID, boardID)
}

func (m *mockColumnRepo) Delete(ctx context.Context, tenantID, boardID, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, boardID, id)
}

// columnsWith returns a repo whose GetByID knows the given columns.
func columnsWith(cols ...*domain.Column) *mockColumnRepo {
	return &mockColumnRepo{
		getByIDFunc: func(_ context.Context, tenantID, id uuid.UUID) (*domain.Column, error) {
			for _, c := range cols {
				if c.TenantID == tenantID && c.ID == id {
					cp := *c
					return &cp, nil
				}
			}
			return nil, domain.ErrNotFound
		},
	}
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc      func(ctx context.Context, t *domain.Task) error
	getByIDFunc     func(ctx context.Context, tenantID, id uuid.UUID) (*domain.Task, error)
	listByBoardFunc func(ctx context.Context, tenantID, boardID uuid.UUID) ([]*domain.Task, error)
	updateFunc      func(ctx context.Context, t *domain.Task) error
	moveFunc        func(ctx context.Context, tenantID, id, columnID uuid.UUID, position int) error
	deleteFunc      func(ctx context.Context, tenantID, id uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, tenantID, id)
}

func (m *mockTaskRepo) ListByBoard(ctx context.Context, tenantID, boardID uuid.UUID) ([]*domain.Task, error) {
	return m.listByBoardFunc(ctx, tenantID, boardID)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) Move(ctx context.Context, tenantID, id, columnID uuid.UUID, position int) error {
	return m.moveFunc(ctx, tenantID, id, columnID, position)
}

func (m *mockTaskRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteFunc(ctx, tenantID, id)
}

// ---------------------------------------------------------------------------
// Mock EventPublisher
// ---------------------------------------------------------------------------

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.KanbanEvent
	ctxErr []error // ctx.Err() seen by each Publish
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, e domain.KanbanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	m.ctxErr = append(m.ctxErr, ctx.Err())
	return m.err
}

func (m *mockPublisher) published() []domain.KanbanEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.KanbanEvent(nil), m.events...)
}
