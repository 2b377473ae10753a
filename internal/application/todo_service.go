package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-todo-session/internal/domain/entity"
	repo "github.com/oksasatya/go-todo-session/internal/domain/repository"
)

const (
	// PageSize is the fixed number of todos returned by one read.
	PageSize = 5

	minTodoLen = 3
	maxTodoLen = 200
	maxSearch  = 50
)

// TodoIndexer keeps a full-text copy of todos. Implemented over Elasticsearch.
type TodoIndexer interface {
	Index(ctx context.Context, t *entity.Todo) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, username, q string, size int) ([]entity.Todo, error)
}

// ObjectUploader stores an object and returns its URL. Implemented over GCS.
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type TodoService struct {
	Todos    repo.TodoRepository
	Index    TodoIndexer
	Exports  ObjectUploader
	Logger   *logrus.Logger
	PageSize int
}

func NewTodoService(todos repo.TodoRepository, index TodoIndexer, exports ObjectUploader, logger *logrus.Logger) *TodoService {
	return &TodoService{Todos: todos, Index: index, Exports: exports, Logger: logger, PageSize: PageSize}
}

// Page is one read-item result. Message distinguishes an empty collection
// from reading past its end.
type Page struct {
	Todos   []entity.Todo
	Message string
}

// ParseTodoText checks, in order, that the value is present, is a string and
// has 3 to 200 characters.
func ParseTodoText(raw any) (string, error) {
	if raw == nil {
		return "", ValidationError("todo", "missing todo text")
	}
	text, ok := raw.(string)
	if !ok {
		return "", ValidationError("todo", "todo is not a text")
	}
	if text == "" {
		return "", ValidationError("todo", "missing todo text")
	}
	if n := utf8.RuneCountInString(text); n < minTodoLen || n > maxTodoLen {
		return "", ValidationError("todo", "todo length should be 3-200")
	}
	return text, nil
}

// ParseSkip reads the read-item offset. Absent means 0.
func ParseSkip(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ValidationError("skip", "skip must be a non-negative integer")
	}
	return n, nil
}

func (s *TodoService) Create(ctx context.Context, username string, raw any) (*entity.Todo, error) {
	text, err := ParseTodoText(raw)
	if err != nil {
		return nil, err
	}
	t := &entity.Todo{Todo: text, Username: username}
	if err := s.Todos.Create(ctx, t); err != nil {
		return nil, StoreError("database error", err)
	}
	s.index(ctx, t)
	return t, nil
}

func (s *TodoService) ReadPage(ctx context.Context, username string, skip int) (Page, error) {
	size := s.PageSize
	if size <= 0 {
		size = PageSize
	}
	todos, err := s.Todos.ListByUsername(ctx, username, skip, size)
	if err != nil {
		return Page{}, StoreError("database error", err)
	}
	if len(todos) == 0 {
		msg := "no todos found"
		if skip > 0 {
			msg = "no more todos"
		}
		return Page{Todos: todos, Message: msg}, nil
	}
	return Page{Todos: todos, Message: "read success"}, nil
}

// Edit replaces the text of a todo owned by username and returns the record
// as it was before the update. Lookup and ownership are checked before the
// new text is validated.
func (s *TodoService) Edit(ctx context.Context, username, id string, newData any) (*entity.Todo, error) {
	if id == "" {
		return nil, BadRequestError("missing todo id")
	}
	prev, err := s.owned(ctx, username, id, "not authorized to edit the todo")
	if err != nil {
		return nil, err
	}
	text, err := ParseTodoText(newData)
	if err != nil {
		return nil, err
	}
	if err := s.Todos.UpdateText(ctx, id, text); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError("todo not found")
		}
		return nil, StoreError("database error", err)
	}

	updated := *prev
	updated.Todo = text
	updated.UpdatedAt = time.Now().UTC()
	s.index(ctx, &updated)
	return prev, nil
}

// Delete removes a todo owned by username and returns the deleted record.
func (s *TodoService) Delete(ctx context.Context, username, id string) (*entity.Todo, error) {
	if id == "" {
		return nil, BadRequestError("missing todo id")
	}
	t, err := s.owned(ctx, username, id, "not allowed to delete, authorization failed")
	if err != nil {
		return nil, err
	}
	if err := s.Todos.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NotFoundError("todo not found")
		}
		return nil, StoreError("database error", err)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			s.warn(err, id, "search index remove failed")
		}
	}
	return t, nil
}

func (s *TodoService) owned(ctx context.Context, username, id, forbidden string) (*entity.Todo, error) {
	t, err := s.Todos.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NotFoundError("todo not found")
	}
	if err != nil {
		return nil, StoreError("database error", err)
	}
	if !t.OwnedBy(username) {
		return nil, ForbiddenError(forbidden)
	}
	return t, nil
}

// Search runs a full-text query over the caller's own todos.
func (s *TodoService) Search(ctx context.Context, username, q string, size int) ([]entity.Todo, error) {
	if s.Index == nil {
		return nil, UnavailableError("search unavailable")
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ValidationError("q", "missing search query")
	}
	if size <= 0 || size > maxSearch {
		size = 10
	}
	todos, err := s.Index.Search(ctx, username, q, size)
	if err != nil {
		return nil, StoreError("search failed", err)
	}
	return todos, nil
}

// Export uploads every todo of username as one JSON document and returns its URL.
func (s *TodoService) Export(ctx context.Context, username string) (string, error) {
	if s.Exports == nil {
		return "", UnavailableError("export unavailable")
	}
	todos, err := s.Todos.ListByUsername(ctx, username, 0, 0)
	if err != nil {
		return "", StoreError("database error", err)
	}
	b, err := json.Marshal(map[string]any{
		"username":    username,
		"exported_at": time.Now().UTC().Format(time.RFC3339Nano),
		"todos":       todos,
	})
	if err != nil {
		return "", StoreError("export failed", err)
	}
	objectPath := "exports/" + exportDir(username) + "/" + uuid.NewString() + ".json"
	objectURL, err := s.Exports.Upload(ctx, objectPath, "application/json", bytes.NewReader(b))
	if err != nil {
		return "", StoreError("export failed", err)
	}
	return objectURL, nil
}

// exportDir is username as a single path segment: slashes are escaped and
// dot-only names cannot act as relative segments.
func exportDir(username string) string {
	dir := url.PathEscape(username)
	if strings.Trim(dir, ".") == "" {
		dir = strings.ReplaceAll(dir, ".", "%2E")
	}
	return dir
}

func (s *TodoService) index(ctx context.Context, t *entity.Todo) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, t); err != nil {
		s.warn(err, t.ID, "search index failed")
	}
}

func (s *TodoService) warn(err error, id, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("todo_id", id).Warn(msg)
	}
}
