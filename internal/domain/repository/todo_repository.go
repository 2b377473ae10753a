package repository

import (
	"context"

	"github.com/oksasatya/go-todo-session/internal/domain/entity"
)

// TodoRepository defines the item store.
type TodoRepository interface {
	Create(ctx context.Context, t *entity.Todo) error
	GetByID(ctx context.Context, id string) (*entity.Todo, error)
	// ListByUsername returns at most limit todos of username after skipping skip,
	// oldest first. limit <= 0 returns everything after skip.
	ListByUsername(ctx context.Context, username string, skip, limit int) ([]entity.Todo, error)
	UpdateText(ctx context.Context, id, text string) error
	Delete(ctx context.Context, id string) error
}
