package v1

import (
	"context"

	"github.com/gosuda/boardlive/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Boards() domain.BoardRepository
	Columns() domain.ColumnRepository
	Tasks() domain.TaskRepository
}

// EventPublisher announces committed board changes to every server process.
// *realtime.Service satisfies this interface.
type EventPublisher interface {
	Publish(ctx context.Context, e domain.KanbanEvent) error
}
