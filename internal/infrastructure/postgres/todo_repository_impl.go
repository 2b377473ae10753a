package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/oksasatya/go-todo-session/internal/domain/entity"
	"github.com/oksasatya/go-todo-session/internal/domain/repository"
)

const (
	qInsertTodo = `INSERT INTO todos (id, todo, username)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	qSelectTodo = `SELECT id, todo, username, created_at, updated_at
		FROM todos
		WHERE id = $1`

	// LIMIT NULL means no limit
	qListTodos = `SELECT id, todo, username, created_at, updated_at
		FROM todos
		WHERE username = $1
		ORDER BY created_at, id
		OFFSET $2
		LIMIT NULLIF($3::bigint, 0)`

	qUpdateTodo = `UPDATE todos SET todo = $2, updated_at = now() WHERE id = $1`

	qDeleteTodo = `DELETE FROM todos WHERE id = $1`
)

type TodoRepository struct {
	db DBTX
}

func NewTodoRepository(db DBTX) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, t *entity.Todo) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, qInsertTodo, t.ID, t.Todo, t.Username)
	return mapError(row.Scan(&t.CreatedAt, &t.UpdatedAt))
}

func (r *TodoRepository) GetByID(ctx context.Context, id string) (*entity.Todo, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	t := &entity.Todo{}
	err := r.db.QueryRowContext(ctx, qSelectTodo, id).
		Scan(&t.ID, &t.Todo, &t.Username, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *TodoRepository) ListByUsername(ctx context.Context, username string, skip, limit int) ([]entity.Todo, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}
	rows, err := r.db.QueryContext(ctx, qListTodos, username, skip, limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]entity.Todo, 0)
	for rows.Next() {
		var t entity.Todo
		if err := rows.Scan(&t.ID, &t.Todo, &t.Username, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *TodoRepository) UpdateText(ctx context.Context, id, text string) error {
	return r.execOne(ctx, qUpdateTodo, id, text)
}

func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, qDeleteTodo, id)
}

// execOne runs a statement keyed by id and reports ErrNotFound when no row changed.
func (r *TodoRepository) execOne(ctx context.Context, query, id string, args ...any) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.TodoRepository = (*TodoRepository)(nil)
