// Package memory holds map-backed repositories with the same contracts as the
// Postgres ones. Tests and local tooling use them.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-todo-session/internal/domain/entity"
	"github.com/oksasatya/go-todo-session/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User
	// Err, when set, is returned by every call.
	Err error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: map[string]entity.User{}}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
		if existing.Username == u.Username {
			return fmt.Errorf("%w: users_username_key", repository.ErrDuplicate)
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Username == username })
}

func (r *UserRepository) find(match func(entity.User) bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if match(u) {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

type TodoRepository struct {
	mu    sync.RWMutex
	todos map[string]entity.Todo
	seq   int64
	// Err, when set, is returned by every call.
	Err error
	// Writes counts successful Create, UpdateText and Delete calls.
	Writes int
}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{todos: map[string]entity.Todo{}}
}

func (r *TodoRepository) Create(_ context.Context, t *entity.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	// strictly increasing timestamps keep listing order stable
	r.seq++
	now := time.Unix(0, 0).UTC().Add(time.Duration(r.seq) * time.Millisecond)
	t.CreatedAt, t.UpdatedAt = now, now
	r.todos[t.ID] = *t
	r.Writes++
	return nil
}

func (r *TodoRepository) GetByID(_ context.Context, id string) (*entity.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	t, ok := r.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TodoRepository) ListByUsername(_ context.Context, username string, skip, limit int) ([]entity.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	all := make([]entity.Todo, 0)
	for _, t := range r.todos {
		if t.Username == username {
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) {
		return []entity.Todo{}, nil
	}
	all = all[skip:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *TodoRepository) UpdateText(_ context.Context, id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	t, ok := r.todos[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Todo = text
	t.UpdatedAt = time.Now().UTC()
	r.todos[id] = t
	r.Writes++
	return nil
}

func (r *TodoRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.todos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.todos, id)
	r.Writes++
	return nil
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.TodoRepository = (*TodoRepository)(nil)
)
